package strategy

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/kgscrape/internal/model"
)

// Registry maps each site category to exactly one strategy.
type Registry struct {
	mu         sync.RWMutex
	strategies map[model.SiteCategory]Strategy
}

// registryOptions configures NewRegistry.
type registryOptions struct {
	rapidAPIKey string
	apiBaseURL  string
	maxBodySize int64
	timeout     time.Duration
	logger      *slog.Logger
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*registryOptions)

// WithRapidAPIKey enables the property API for real-estate URLs.
func WithRapidAPIKey(key string) RegistryOption {
	return func(o *registryOptions) {
		o.rapidAPIKey = key
	}
}

// WithRegistryAPIBaseURL overrides the property API base URL.
func WithRegistryAPIBaseURL(u string) RegistryOption {
	return func(o *registryOptions) {
		o.apiBaseURL = u
	}
}

// WithRegistryMaxBodySize caps response bodies for every HTML strategy.
func WithRegistryMaxBodySize(n int64) RegistryOption {
	return func(o *registryOptions) {
		o.maxBodySize = n
	}
}

// WithRegistryTimeout overrides every HTML strategy's timeout.
func WithRegistryTimeout(d time.Duration) RegistryOption {
	return func(o *registryOptions) {
		o.timeout = d
	}
}

// WithRegistryLogger sets the logger shared by the strategies.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewRegistry registers an HTMLStrategy for every category. With a RapidAPI
// key, real estate is served by ZillowAPIStrategy wrapping the HTML one;
// without it real estate stays on HTML and an Info line says so.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	htmlOpts := []HTMLOption{
		WithMaxBodySize(o.maxBodySize),
		WithTimeout(o.timeout),
		WithHTMLLogger(o.logger),
	}

	r := &Registry{strategies: make(map[model.SiteCategory]Strategy, len(model.AllCategories))}
	for _, c := range model.AllCategories {
		r.strategies[c] = NewHTMLStrategy(c, htmlOpts...)
	}

	api, err := NewZillowAPIStrategy(o.rapidAPIKey, r.strategies[model.CategoryRealEstate],
		WithAPIBaseURL(o.apiBaseURL), WithZillowLogger(o.logger))
	if err != nil {
		o.logger.Info("property API disabled, real estate uses HTML strategy", "reason", err)
		return r
	}
	r.strategies[model.CategoryRealEstate] = api
	return r
}

// Register replaces the strategy for s.Category().
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Category()] = s
}

// Lookup returns the strategy registered for c, or the generic one when c
// has none.
func (r *Registry) Lookup(c model.SiteCategory) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.strategies[c]; ok {
		return s
	}
	return r.strategies[model.CategoryGeneric]
}
