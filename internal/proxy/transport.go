package proxy

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	xproxy "golang.org/x/net/proxy"

	"github.com/nao1215/kgscrape/internal/model"
)

// NewTransport builds an *http.Transport that egresses through c.
// A nil c yields a direct transport that ignores proxy environment variables.
//
// Design decision: insecureTLS is an explicit parameter rather than a
// default. Free proxies frequently intercept TLS, so scraping through them
// needs verification off, but the choice stays visible at every call site.
func NewTransport(c *model.ProxyCandidate, insecureTLS bool) (*http.Transport, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}

	t := &http.Transport{
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if insecureTLS {
		t.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // opt-in via config, see Config.InsecureTLS
		}
	}

	if c == nil {
		return t, nil
	}

	switch c.EffectiveScheme() {
	case model.ProxySchemeHTTP:
		t.Proxy = http.ProxyURL(c.URL())
	case model.ProxySchemeSOCKS5:
		socks, err := xproxy.FromURL(c.URL(), dialer)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		t.DialContext = contextDialer(socks)
		// HTTP/2 over a custom dialer needs its own TLS setup; HTTP/1.1 is fine.
		t.ForceAttemptHTTP2 = false
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, c.Scheme)
	}
	return t, nil
}

// contextDialer adapts a proxy.Dialer to DialContext. The x/net SOCKS5
// dialer already implements ContextDialer; others are wrapped so a
// cancelled context at least stops the caller from waiting.
func contextDialer(d xproxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(xproxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		ch := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			ch <- dialResult{conn, err}
		}()
		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			go func() {
				if r := <-ch; r.conn != nil {
					r.conn.Close()
				}
			}()
			return nil, ctx.Err()
		}
	}
}
