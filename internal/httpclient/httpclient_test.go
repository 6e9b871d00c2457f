package httpclient_test

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsprackett/usagetray/internal/httpclient"
)

func hostPort(t *testing.T, srv *httptest.Server) (string, int) {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return u.Hostname(), port
}

func trusting(t *testing.T, srv *httptest.Server, timeouts httpclient.Timeouts) *httpclient.Client {
	t.Helper()
	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	c, err := httpclient.New(httpclient.Options{RootCAs: pool, Timeouts: timeouts})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestGet_SendsHeadersAndReturnsBody(t *testing.T) {
	var got http.Header
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		assert.Equal(t, "/api/oauth/usage", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(strings.Repeat("x", 10000)))
	}))
	defer srv.Close()

	c := trusting(t, srv, httpclient.Timeouts{})
	host, port := hostPort(t, srv)

	h := http.Header{}
	h.Set("Accept", "application/json")
	resp := c.Get(context.Background(), host, port, "/api/oauth/usage", h)

	require.Equal(t, httpclient.CodeNone, resp.Code, "err: %v", resp.Err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Body, 10000)
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, httpclient.UserAgent, got.Get("User-Agent"))
}

func TestGet_BodyLimit(t *testing.T) {
	for _, tc := range []struct {
		name string
		size int
		code httpclient.ErrorCode
	}{
		{"at limit", httpclient.MaxBody, httpclient.CodeNone},
		{"one over", httpclient.MaxBody + 1, httpclient.CodeTooLarge},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(strings.Repeat("{", tc.size)))
			}))
			defer srv.Close()

			c := trusting(t, srv, httpclient.Timeouts{})
			host, port := hostPort(t, srv)

			resp := c.Get(context.Background(), host, port, "/", nil)
			require.Equal(t, tc.code, resp.Code, "err: %v", resp.Err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			if tc.code == httpclient.CodeNone {
				assert.Len(t, resp.Body, tc.size)
			} else {
				assert.Nil(t, resp.Body)
				assert.Error(t, resp.Err)
			}
		})
	}
}

func TestGet_NonOKStatusStillReturnsBody(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := trusting(t, srv, httpclient.Timeouts{})
	host, port := hostPort(t, srv)

	resp := c.Get(context.Background(), host, port, "/", nil)
	require.Equal(t, httpclient.CodeNone, resp.Code)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGet_UntrustedCertificateFails(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	defer c.Close()
	host, port := hostPort(t, srv)

	resp := c.Get(context.Background(), host, port, "/", nil)
	assert.Equal(t, httpclient.CodeTLS, resp.Code)
	assert.Nil(t, resp.Body)
}

func TestGet_ReceiveTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := trusting(t, srv, httpclient.Timeouts{
		Resolve: time.Second,
		Connect: time.Second,
		Send:    time.Second,
		Receive: 100 * time.Millisecond,
	})
	host, port := hostPort(t, srv)

	resp := c.Get(context.Background(), host, port, "/", nil)
	assert.Equal(t, httpclient.CodeTimeout, resp.Code)
	assert.Nil(t, resp.Body)
}

func TestGet_CannotConnect(t *testing.T) {
	// Grab a free port and close it so nothing is listening.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	c, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	defer c.Close()

	resp := c.Get(context.Background(), "127.0.0.1", port, "/", nil)
	assert.Equal(t, httpclient.CodeCannotConnect, resp.Code)
}

func TestGet_AfterClose(t *testing.T) {
	c, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)

	c.Close()
	c.Close()

	resp := c.Get(context.Background(), "127.0.0.1", 443, "/", nil)
	assert.Equal(t, httpclient.CodeClosed, resp.Code)
}

func TestClose_NilSafe(t *testing.T) {
	var c *httpclient.Client
	assert.NotPanics(t, c.Close)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want httpclient.ErrorCode
	}{
		{"nil", nil, httpclient.CodeNone},
		{"dns", &net.DNSError{Err: "no such host", Name: "x.invalid", IsNotFound: true}, httpclient.CodeNameNotResolved},
		{"deadline", context.DeadlineExceeded, httpclient.CodeTimeout},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, httpclient.CodeCannotConnect},
		{"unknown authority", x509.UnknownAuthorityError{}, httpclient.CodeTLS},
		{"other", errors.New("boom"), httpclient.CodeNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, httpclient.Classify(tc.err))
		})
	}
}
