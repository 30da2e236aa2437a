package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/nao1215/kgscrape/internal/model"
)

// DefaultMaxPages is the default size of the discovered work list.
const DefaultMaxPages = 10

// assetExtensions are skipped during discovery; they carry no page text.
var assetExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true, ".avif": true,
	".pdf": true, ".css": true, ".js": true, ".json": true, ".xml": true,
	".zip": true, ".gz": true, ".tar": true, ".rar": true, ".7z": true,
	".mp3": true, ".mp4": true, ".webm": true, ".mov": true, ".avi": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
}

// Fetcher acquires one page. *fetch.Engine satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, maxAttempts int) (*model.RawDocument, error)
}

// Spider discovers same-host pages linked from a start page.
type Spider struct {
	fetcher        Fetcher
	maxPages       int
	maxAttempts    int
	ignorePatterns []string
	followPatterns []string
	logger         *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the size of the work list, the start URL included.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		if maxPages > 0 {
			s.maxPages = maxPages
		}
	}
}

// WithMaxAttempts sets the attempt budget for fetching the start page.
func WithMaxAttempts(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithIgnorePatterns sets URL path patterns to skip.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns restricts discovery to paths matching at least one
// pattern. An empty slice allows every path.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider fetching through f.
//
// Design decision: The spider does not own an HTTP client. Going through
// the fetch engine means the start page gets the same disguise, proxy
// rotation and retry budget as every other page of the run.
func NewSpider(f Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     f,
		maxPages:    DefaultMaxPages,
		maxAttempts: 3,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discovery is the result of Discover.
type Discovery struct {
	// URLs is the work list: the start URL first, then discovered links.
	URLs []string

	// Start is the fetched start page, nil when the fetch failed.
	Start *model.RawDocument
}

// Discover fetches startURL and returns up to maxPages URLs to process.
// When the start page cannot be fetched, the returned Discovery still lists
// the start URL and the fetch error is returned alongside it.
func (s *Spider) Discover(ctx context.Context, startURL string) (*Discovery, error) {
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q", startURL)
	}

	result := &Discovery{URLs: []string{startURL}}
	doc, err := s.fetcher.Fetch(ctx, startURL, s.maxAttempts)
	if err != nil {
		return result, err
	}
	result.Start = doc

	if s.maxPages <= 1 || !doc.IsHTML() {
		return result, nil
	}

	base := doc.FinalURL
	if base == "" {
		base = startURL
	}
	parser, err := NewParser(base)
	if err != nil {
		return result, nil //nolint:nilerr // the start page itself is still usable
	}
	parsed, err := parser.Parse(bytes.NewReader(doc.Body))
	if err != nil {
		s.logger.Debug("failed to parse start page links", "url", startURL, "error", err)
		return result, nil
	}

	seen := map[string]bool{normalizeURL(startURL): true, normalizeURL(base): true}
	for _, link := range parsed.InternalLinks {
		if len(result.URLs) >= s.maxPages {
			break
		}
		if !isHTTP(link) || !isSameHost(start.Host, link) || isAsset(link) || !s.shouldCrawl(link) {
			continue
		}
		key := normalizeURL(link)
		if seen[key] {
			continue
		}
		seen[key] = true
		result.URLs = append(result.URLs, key)
	}

	s.logger.Debug("discovered pages", "start", startURL, "count", len(result.URLs))
	return result, nil
}

// normalizeURL normalizes a URL for deduplication: the fragment is dropped,
// scheme and host are lowercased and an empty path becomes "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// isSameHost reports whether targetURL is on baseHost. A leading "www."
// is ignored on both sides.
func isSameHost(baseHost, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	trim := func(h string) string {
		return strings.TrimPrefix(strings.ToLower(h), "www.")
	}
	return trim(u.Host) == trim(baseHost)
}

func isHTTP(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

func isAsset(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return assetExtensions[strings.ToLower(path.Ext(u.Path))]
}

// shouldCrawl applies the ignore and follow patterns:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise, crawl it
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	p := u.Path
	if p == "" {
		p = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, p) {
			return false
		}
	}
	if len(s.followPatterns) == 0 {
		return true
	}
	for _, pattern := range s.followPatterns {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing "/*" to match a whole subtree
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users/edit"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, p string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(p, prefix+"/") || p == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") && strings.HasSuffix(p, strings.TrimPrefix(pattern, "*")) {
		return true
	}

	if matched, err := filepath.Match(pattern, p); err == nil && matched {
		return true
	}

	// Patterns without a slash also match the last path segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(p)); err == nil && matched {
			return true
		}
	}
	return false
}
