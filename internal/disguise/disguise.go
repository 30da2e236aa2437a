package disguise

import (
	"net/http"
	"slices"

	"github.com/nao1215/kgscrape/internal/random"
)

// DefaultUserAgents is the built-in User-Agent catalog.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
}

// DefaultReferers is the built-in referer catalog.
var DefaultReferers = []string{
	"https://www.google.com/",
	"https://www.bing.com/",
	"https://duckduckgo.com/",
}

// template holds the headers shared by every disguise.
// Accept-Encoding is limited to codings the strategies can decode.
var template = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// Disguise is an immutable set of request headers.
type Disguise struct {
	userAgent string
	referer   string
	header    http.Header
}

// UserAgent returns the chosen User-Agent.
func (d Disguise) UserAgent() string {
	return d.userAgent
}

// Referer returns the chosen referer, or "" when none was set.
func (d Disguise) Referer() string {
	return d.referer
}

// Header returns a copy of the full header set.
func (d Disguise) Header() http.Header {
	return d.header.Clone()
}

// IsZero reports whether d was never generated.
func (d Disguise) IsZero() bool {
	return d.header == nil
}

// Apply sets the disguise headers on req, replacing existing values.
// Headers the caller set that the disguise does not know are left alone.
func (d Disguise) Apply(req *http.Request) {
	for k, v := range d.header {
		req.Header[k] = slices.Clone(v)
	}
}

// Generator produces disguises from fixed catalogs.
// The catalogs are copied at construction and never modified, so a
// Generator is safe for concurrent use as long as its random source is.
type Generator struct {
	rnd        *random.Source
	userAgents []string
	referers   []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithUserAgents replaces the User-Agent catalog. An empty list is ignored.
func WithUserAgents(agents []string) Option {
	return func(g *Generator) {
		if len(agents) > 0 {
			g.userAgents = slices.Clone(agents)
		}
	}
}

// WithReferers replaces the referer catalog. An empty, non-nil list
// disables the Referer header.
func WithReferers(referers []string) Option {
	return func(g *Generator) {
		if referers != nil {
			g.referers = slices.Clone(referers)
		}
	}
}

// NewGenerator creates a Generator drawing from rnd.
// A nil rnd gets a clock-seeded source.
func NewGenerator(rnd *random.Source, opts ...Option) *Generator {
	if rnd == nil {
		rnd = random.New(0)
	}
	g := &Generator{
		rnd:        rnd,
		userAgents: slices.Clone(DefaultUserAgents),
		referers:   slices.Clone(DefaultReferers),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns a new Disguise.
func (g *Generator) Next() Disguise {
	header := make(http.Header, len(template)+2)
	for k, v := range template {
		header.Set(k, v)
	}

	d := Disguise{
		userAgent: g.userAgents[g.rnd.IntN(len(g.userAgents))],
		header:    header,
	}
	header.Set("User-Agent", d.userAgent)

	if len(g.referers) > 0 {
		d.referer = g.referers[g.rnd.IntN(len(g.referers))]
		header.Set("Referer", d.referer)
	}
	return d
}
