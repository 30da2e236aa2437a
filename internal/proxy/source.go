package proxy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nao1215/kgscrape/internal/model"
	"github.com/nao1215/kgscrape/internal/tor"
)

// maxListBodySize caps how much of a proxy list is read.
const maxListBodySize = 1 << 20

// addressPattern matches IPv4 "IP:PORT" tokens anywhere in a list body,
// so plain, CSV and "ip:port:country" formats all parse.
var addressPattern = regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}:\d{2,5}\b`)

// Source produces proxy candidates.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Load returns the candidates offered by the source.
	Load(ctx context.Context) ([]model.ProxyCandidate, error)
}

// ListSource downloads a plain-text proxy list over HTTP.
type ListSource struct {
	url    string
	client *http.Client
}

// NewListSource returns a source for the list at rawURL.
// A nil client gets one with a 10 second timeout.
func NewListSource(rawURL string, client *http.Client) *ListSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ListSource{url: rawURL, client: client}
}

// Name returns the list URL.
func (s *ListSource) Name() string {
	return s.url
}

// Load fetches the list and extracts every IP:PORT token in order.
func (s *ListSource) Load(ctx context.Context) ([]model.ProxyCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch proxy list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrSourceStatus, resp.StatusCode)
	}

	return ParseList(io.LimitReader(resp.Body, maxListBodySize))
}

// ParseList extracts IP:PORT tokens from r in order of appearance.
func ParseList(r io.Reader) ([]model.ProxyCandidate, error) {
	var out []model.ProxyCandidate
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, addr := range addressPattern.FindAllString(scanner.Text(), -1) {
			out = append(out, model.NewProxyCandidate(addr))
		}
	}
	if err := scanner.Err(); err != nil {
		return out, fmt.Errorf("failed to read proxy list: %w", err)
	}
	return out, nil
}

// StaticSource serves fixed candidates, typically from the config file or
// the --proxy flag.
type StaticSource struct {
	candidates []model.ProxyCandidate
}

// NewStaticSource parses entries with ParseCandidate. Invalid entries are
// reported together; the valid ones are kept.
func NewStaticSource(entries []string) (*StaticSource, error) {
	s := &StaticSource{}
	var bad []string
	for _, e := range entries {
		c, err := ParseCandidate(e)
		if err != nil {
			bad = append(bad, e)
			continue
		}
		s.candidates = append(s.candidates, c)
	}
	if len(bad) > 0 {
		return s, fmt.Errorf("%w: %s", ErrInvalidCandidate, strings.Join(bad, ", "))
	}
	return s, nil
}

// Name returns "static".
func (s *StaticSource) Name() string {
	return "static"
}

// Load returns a copy of the configured candidates.
func (s *StaticSource) Load(_ context.Context) ([]model.ProxyCandidate, error) {
	out := make([]model.ProxyCandidate, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}

// TorSource offers an embedded Tor daemon's SOCKS listener.
type TorSource struct {
	daemon *tor.EmbeddedTor
}

// NewTorSource wraps a started daemon.
func NewTorSource(daemon *tor.EmbeddedTor) *TorSource {
	return &TorSource{daemon: daemon}
}

// Name returns "tor".
func (s *TorSource) Name() string {
	return "tor"
}

// Load verifies the SOCKS listener and returns it as a single candidate.
func (s *TorSource) Load(ctx context.Context) ([]model.ProxyCandidate, error) {
	c, err := s.daemon.Candidate(ctx)
	if err != nil {
		return nil, err
	}
	return []model.ProxyCandidate{c}, nil
}

// ParseCandidate parses "host:port", "http://host:port" or
// "socks5://[user:pass@]host:port".
func ParseCandidate(s string) (model.ProxyCandidate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.ProxyCandidate{}, ErrInvalidCandidate
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return model.ProxyCandidate{}, fmt.Errorf("%w: %w", ErrInvalidCandidate, err)
	}

	var scheme model.ProxyScheme
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		scheme = model.ProxySchemeHTTP
	case "socks5", "socks5h":
		scheme = model.ProxySchemeSOCKS5
	default:
		return model.ProxyCandidate{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	if err := tor.ValidateAddress(u.Host); err != nil {
		return model.ProxyCandidate{}, fmt.Errorf("%w: %q", ErrInvalidCandidate, u.Host)
	}

	return model.ProxyCandidate{Address: u.Host, Scheme: scheme, User: u.User}, nil
}
