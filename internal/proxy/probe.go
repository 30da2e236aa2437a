package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nao1215/kgscrape/internal/model"
)

const (
	// DefaultProbeURL echoes the caller's IP and is cheap to hit.
	DefaultProbeURL = "https://httpbin.org/ip"

	// DefaultProbeTimeout bounds one probe.
	DefaultProbeTimeout = 5 * time.Second
)

// Prober checks that a proxy can reach the internet before it is used for
// a real request.
type Prober struct {
	url         string
	timeout     time.Duration
	insecureTLS bool
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeURL sets the echo endpoint.
func WithProbeURL(u string) ProberOption {
	return func(p *Prober) {
		if u != "" {
			p.url = u
		}
	}
}

// WithProbeTimeout sets the probe timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeInsecureTLS skips certificate verification for the probe.
func WithProbeInsecureTLS(insecure bool) ProberOption {
	return func(p *Prober) {
		p.insecureTLS = insecure
	}
}

// NewProber creates a Prober.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		url:     DefaultProbeURL,
		timeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe issues a GET to the echo endpoint through c. Any transport error or
// non-2xx status fails the probe.
func (p *Prober) Probe(ctx context.Context, c model.ProxyCandidate) error {
	transport, err := NewTransport(&c, p.insecureTLS)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	defer transport.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}

	client := &http.Client{Transport: transport}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProbeFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrProbeFailed, resp.StatusCode)
	}
	return nil
}
