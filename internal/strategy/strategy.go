package strategy

import (
	"context"
	"errors"
	"net/http"

	"github.com/nao1215/kgscrape/internal/disguise"
	"github.com/nao1215/kgscrape/internal/model"
)

var (
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected HTTP status")

	// ErrNoProperties is returned when the property API answers without listings.
	ErrNoProperties = errors.New("no properties found in API response")

	// ErrMissingAPIKey is returned when the API strategy is built without a key.
	ErrMissingAPIKey = errors.New("RapidAPI key is not configured")
)

// Request carries everything one acquisition attempt needs.
type Request struct {
	// URL is the page to acquire.
	URL string

	// Disguise supplies browser-like headers.
	Disguise disguise.Disguise

	// Proxy is the egress for this attempt, nil for direct.
	Proxy *model.ProxyCandidate

	// Transport dials through Proxy. Nil means http.DefaultTransport.
	Transport http.RoundTripper

	// Cookie and Headers are per-site settings from the config file.
	// They are applied after the disguise and win over it.
	Cookie  string
	Headers map[string]string
}

// Strategy acquires one URL.
type Strategy interface {
	// Name is the strategy identifier used in extraction methods.
	Name() string

	// Category is the site category the strategy serves.
	Category() model.SiteCategory

	// Acquire fetches req.URL and returns the parsed document. Transport
	// and status failures are errors; parse anomalies yield empty text.
	Acquire(ctx context.Context, req Request) (*model.RawDocument, error)
}
