// Package httpclient issues the one HTTPS GET per poll cycle. It owns a
// reusable transport with fixed per-phase timeouts and reports transport
// failures as numeric codes instead of Go errors.
package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ErrorCode classifies a transport failure. CodeNone means the exchange
// completed and a status code is available.
type ErrorCode int

const (
	CodeNone ErrorCode = iota
	CodeTimeout
	CodeCannotConnect
	CodeNameNotResolved
	CodeTLS
	CodeNetwork
	CodeClosed
	CodeTooLarge
)

const UserAgent = "ClaudeUsage/1.0"

// maxBody caps how much of a response is buffered. A longer body fails with
// CodeTooLarge rather than being cut short.
const maxBody = 1 << 20

// Timeouts bounds each phase of a request.
type Timeouts struct {
	Resolve time.Duration
	Connect time.Duration // TCP connect plus TLS handshake
	Send    time.Duration
	Receive time.Duration
}

// DefaultTimeouts fail a hung network within about 45 seconds.
var DefaultTimeouts = Timeouts{
	Resolve: 10 * time.Second,
	Connect: 10 * time.Second,
	Send:    10 * time.Second,
	Receive: 15 * time.Second,
}

func (t Timeouts) total() time.Duration {
	return t.Resolve + t.Connect + t.Send + t.Receive
}

type Options struct {
	Timeouts Timeouts
	// RootCAs replaces the system trust store. Certificate verification
	// cannot be disabled.
	RootCAs *x509.CertPool
	// Resolver defaults to net.DefaultResolver.
	Resolver *net.Resolver
}

// Response is the outcome of Get. Body is only set when Code is CodeNone;
// StatusCode is also kept for CodeTooLarge.
type Response struct {
	StatusCode int
	Body       []byte
	Code       ErrorCode
	Err        error
}

// Client wraps a pooled HTTPS transport. The zero value is not usable; use
// New.
type Client struct {
	mu       sync.Mutex
	http     *http.Client
	tr       *http.Transport
	timeouts Timeouts
}

// New builds the client context once at startup.
func New(opts Options) (*Client, error) {
	t := opts.Timeouts
	if t == (Timeouts{}) {
		t = DefaultTimeouts
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	d := &dialer{timeouts: t, resolver: resolver}
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           d.DialContext,
		TLSClientConfig:       &tls.Config{RootCAs: opts.RootCAs, MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   t.Connect,
		ResponseHeaderTimeout: t.Receive,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          2,
		ForceAttemptHTTP2:     true,
	}
	return &Client{
		http:     &http.Client{Transport: tr, Timeout: t.total()},
		tr:       tr,
		timeouts: t,
	}, nil
}

// Get performs a blocking GET of https://host:port/path with the given extra
// headers.
func (c *Client) Get(ctx context.Context, host string, port int, path string, headers http.Header) Response {
	c.mu.Lock()
	hc := c.http
	c.mu.Unlock()
	if hc == nil {
		return Response{Code: CodeClosed, Err: errors.New("http client is shut down")}
	}

	url := "https://" + net.JoinHostPort(host, strconv.Itoa(port)) + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{Code: CodeNetwork, Err: fmt.Errorf("build request: %w", err)}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return Response{Code: Classify(err), Err: err}
	}
	defer resp.Body.Close()

	// io.ReadAll grows its buffer geometrically; the limit bounds memory.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return Response{Code: Classify(err), Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBody {
		return Response{
			StatusCode: resp.StatusCode,
			Code:       CodeTooLarge,
			Err:        fmt.Errorf("response body exceeds %d bytes", maxBody),
		}
	}
	return Response{StatusCode: resp.StatusCode, Body: body}
}

// Close releases pooled connections. It is safe to call more than once and
// on a nil client.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tr != nil {
		c.tr.CloseIdleConnections()
	}
	c.http = nil
	c.tr = nil
}

// Classify maps a transport error to an ErrorCode.
func Classify(err error) ErrorCode {
	if err == nil {
		return CodeNone
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		// A resolver that gives up on time is still a resolution failure.
		return CodeNameNotResolved
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return CodeTLS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return CodeCannotConnect
	}
	return CodeNetwork
}
