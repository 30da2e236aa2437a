package model

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// MaxDocumentSize caps the bytes read from a single response body.
// 5MB is far more than any listing or profile page needs and keeps a
// misbehaving server from exhausting memory.
const MaxDocumentSize = 5 * 1024 * 1024

// Scraping method prefixes used in KnowledgeRecord.ExtractionMethod.
const (
	MethodPrefixProxy  = "proxy_"
	MethodPrefixDirect = "direct_"
)

// Fragment is a pre-built knowledge graph fragment.
// Strategies backed by an authoritative data source (a property API, for
// example) return a Fragment instead of free text; the extractors are then
// skipped and the fragment is copied into the record as is.
type Fragment struct {
	Entities      []Entity
	Relationships []Relationship

	// Method overrides the extraction method, e.g. "zillow_api_zillow-com1".
	Method string
}

// RawDocument is a fetched page plus its high-signal text.
// It is owned by the fetch attempt that produced it and is handed to the
// extractors once; nothing else retains it.
type RawDocument struct {
	// URL is the requested URL.
	URL string

	// FinalURL is the URL after redirects. Equal to URL when not redirected.
	FinalURL string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// ContentType is the response Content-Type header.
	ContentType string

	// Body is the raw response body, capped at MaxDocumentSize.
	Body []byte

	// Text is the high-signal text chosen by the acquisition strategy.
	Text string

	// Title is the OpenGraph title, falling back to <title>.
	Title string

	// SiteName is the OpenGraph site name if present.
	SiteName string

	// Category is the category the URL was classified as.
	Category SiteCategory

	// Strategy is the name of the acquisition strategy that produced the document.
	Strategy string

	// Proxy is the egress used, nil for a direct connection.
	Proxy *ProxyCandidate

	// ContentHash is the hex SHA3-256 of Body.
	ContentHash string

	// Fragment is set by authoritative strategies; nil otherwise.
	Fragment *Fragment
}

// ComputeHash calculates and sets the SHA3-256 hash of the document body.
// An empty body produces an empty hash.
func (d *RawDocument) ComputeHash() {
	if len(d.Body) == 0 {
		d.ContentHash = ""
		return
	}
	sum := sha3.Sum256(d.Body)
	d.ContentHash = hex.EncodeToString(sum[:])
}

// ProxyAssisted reports whether the document was fetched through a proxy.
func (d *RawDocument) ProxyAssisted() bool {
	return d.Proxy != nil
}

// ScrapingMethod returns "proxy_<strategy>" or "direct_<strategy>".
func (d *RawDocument) ScrapingMethod() string {
	if d.ProxyAssisted() {
		return MethodPrefixProxy + d.Strategy
	}
	return MethodPrefixDirect + d.Strategy
}

// IsHTML reports whether the content type indicates HTML.
// A missing content type is treated as HTML because many listing sites omit it.
func (d *RawDocument) IsHTML() bool {
	ct := strings.ToLower(d.ContentType)
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
