package httpclient

import (
	"context"
	"errors"
	"net"
	"time"
)

// dialer splits name resolution and TCP connect into separately bounded
// phases and wraps connections so every write and read carries a deadline.
type dialer struct {
	timeouts Timeouts
	resolver *net.Resolver
}

func (d *dialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, d.timeouts.Resolve)
	ips, err := d.resolver.LookupIPAddr(rctx, host)
	cancel()
	if err != nil {
		var dnsErr *net.DNSError
		if !errors.As(err, &dnsErr) {
			err = &net.DNSError{Err: err.Error(), Name: host, IsTimeout: errors.Is(err, context.DeadlineExceeded)}
		}
		return nil, err
	}
	if len(ips) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}

	nd := net.Dialer{Timeout: d.timeouts.Connect}
	var lastErr error
	for _, ip := range ips {
		conn, err := nd.DialContext(ctx, network, net.JoinHostPort(ip.String(), port))
		if err == nil {
			return &deadlineConn{Conn: conn, send: d.timeouts.Send, recv: d.timeouts.Receive}, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

type deadlineConn struct {
	net.Conn
	send time.Duration
	recv time.Duration
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.send)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.recv)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}
