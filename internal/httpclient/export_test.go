package httpclient

const MaxBody = maxBody
