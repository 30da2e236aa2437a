package strategy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/go-shiori/go-readability"

	"github.com/nao1215/kgscrape/internal/model"
)

// profile is the per-category tuning of an HTMLStrategy.
type profile struct {
	name        string
	timeout     time.Duration
	maxText     int
	selectors   []string
	readability bool
}

// profiles holds the built-in tuning for every category.
// Listing pages are heavy and slow, so real estate gets the longest timeout.
var profiles = map[model.SiteCategory]profile{
	model.CategoryRealEstate: {
		name:    "real_estate",
		timeout: 20 * time.Second,
		maxText: 10000,
		selectors: []string{
			"[data-testid=price]",
			".ds-summary-row",
			".summary-container",
			"[data-testid=bed-bath-item]",
			"address",
		},
	},
	model.CategoryProfessional: {
		name:    "professional",
		timeout: 15 * time.Second,
		maxText: 8000,
		selectors: []string{
			".top-card-layout",
			".pv-top-card",
			"section.summary",
			".experience",
			".profile-section",
		},
	},
	model.CategoryProduct: {
		name:    "product",
		timeout: 15 * time.Second,
		maxText: 10000,
		selectors: []string{
			"#productTitle",
			"#feature-bullets",
			"#productDescription",
			".product-description",
			"[itemprop=description]",
		},
	},
	model.CategoryGeneric: {
		name:        "generic",
		timeout:     10 * time.Second,
		maxText:     8000,
		readability: true,
	},
}

// HTMLStrategy fetches a page over HTTP and extracts its main text.
type HTMLStrategy struct {
	category    model.SiteCategory
	profile     profile
	maxBodySize int64
	logger      *slog.Logger
}

// HTMLOption configures an HTMLStrategy.
type HTMLOption func(*HTMLStrategy)

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) HTMLOption {
	return func(s *HTMLStrategy) {
		if d > 0 {
			s.profile.timeout = d
		}
	}
}

// WithMaxBodySize caps the bytes read from a response.
func WithMaxBodySize(n int64) HTMLOption {
	return func(s *HTMLStrategy) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// WithHTMLLogger sets the logger.
func WithHTMLLogger(logger *slog.Logger) HTMLOption {
	return func(s *HTMLStrategy) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTMLStrategy returns the HTML strategy tuned for category.
// Unknown categories get the generic tuning.
func NewHTMLStrategy(category model.SiteCategory, opts ...HTMLOption) *HTMLStrategy {
	p, ok := profiles[category]
	if !ok {
		category = model.CategoryGeneric
		p = profiles[model.CategoryGeneric]
	}
	s := &HTMLStrategy{
		category:    category,
		profile:     p,
		maxBodySize: model.MaxDocumentSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the strategy name, e.g. "real_estate".
func (s *HTMLStrategy) Name() string {
	return s.profile.name
}

// Category returns the served category.
func (s *HTMLStrategy) Category() model.SiteCategory {
	return s.category
}

// Timeout returns the per-attempt timeout.
func (s *HTMLStrategy) Timeout() time.Duration {
	return s.profile.timeout
}

// Acquire performs a bounded GET and extracts the page text.
func (s *HTMLStrategy) Acquire(ctx context.Context, r Request) (*model.RawDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, s.profile.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	r.Disguise.Apply(req)

	client := &http.Client{
		Transport:     withSiteSettings(r.Transport, r.Cookie, r.Headers),
		CheckRedirect: limitRedirects,
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := readBody(resp, s.maxBodySize)
	if err != nil {
		return nil, err
	}

	doc := &model.RawDocument{
		URL:         r.URL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Category:    s.category,
		Strategy:    s.profile.name,
		Proxy:       r.Proxy,
	}
	doc.ComputeHash()

	if !doc.IsHTML() {
		if strings.HasPrefix(strings.ToLower(doc.ContentType), "text/") {
			doc.Text = truncateRunes(normalizeSpace(string(body)), s.profile.maxText)
		}
		return doc, nil
	}

	s.parse(doc)
	return doc, nil
}

// parse fills Title, SiteName and Text. Failures leave the fields empty.
func (s *HTMLStrategy) parse(doc *model.RawDocument) {
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(doc.Body)); err == nil {
		doc.Title = og.Title
		doc.SiteName = og.SiteName
	}

	var extra []string
	if s.profile.readability {
		if text := readableText(doc.Body, doc.FinalURL); text != "" {
			extra = append(extra, text)
		}
	}

	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		s.logger.Debug("failed to parse HTML", "url", doc.URL, "error", err)
		return
	}
	if doc.Title == "" {
		doc.Title = normalizeSpace(gq.Find("title").First().Text())
	}

	doc.Text = s.ExtractText(gq, extra...)
}

// ExtractText runs ExtractText with this strategy's selectors and budget.
func (s *HTMLStrategy) ExtractText(doc *goquery.Document, extra ...string) string {
	return ExtractText(doc, s.profile.selectors, s.profile.maxText, extra...)
}

// readableText runs the readability algorithm and returns the article text,
// or "" when no article is found.
func readableText(body []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return ""
	}
	return article.TextContent
}
