package proxy

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/kgscrape/internal/model"
)

const (
	// PerSourceLimit is the most candidates taken from one source.
	PerSourceLimit = 5

	// MaxPoolSize is the most candidates kept in a pool.
	MaxPoolSize = 15
)

// Pool hands out proxy candidates round-robin.
// The candidate list is fixed after construction; only the cursor moves,
// under mu, so Next is safe for concurrent use.
type Pool struct {
	candidates []model.ProxyCandidate

	mu     sync.Mutex
	cursor int
}

// NewPool returns a pool over candidates, deduplicated and truncated to
// MaxPoolSize.
func NewPool(candidates []model.ProxyCandidate) *Pool {
	return &Pool{candidates: dedupe(candidates, MaxPoolSize)}
}

// Next returns the next candidate, wrapping around at the end.
// It returns false on every call when the pool is empty.
func (p *Pool) Next() (model.ProxyCandidate, bool) {
	if p == nil || len(p.candidates) == 0 {
		return model.ProxyCandidate{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.candidates[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.candidates)
	return c, true
}

// Len returns the number of candidates.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.candidates)
}

// Candidates returns a copy of the candidates in rotation order.
func (p *Pool) Candidates() []model.ProxyCandidate {
	if p == nil {
		return nil
	}
	out := make([]model.ProxyCandidate, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// loadOptions configures Load.
type loadOptions struct {
	logger         *slog.Logger
	perSourceLimit int
	maxSize        int
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithLogger sets the logger used to report failing sources.
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPerSourceLimit overrides PerSourceLimit.
func WithPerSourceLimit(n int) LoadOption {
	return func(o *loadOptions) {
		if n > 0 {
			o.perSourceLimit = n
		}
	}
}

// WithMaxSize overrides MaxPoolSize.
func WithMaxSize(n int) LoadOption {
	return func(o *loadOptions) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// Load queries every source concurrently and builds a pool.
//
// Candidates keep source order: everything from sources[0] (up to the
// per-source limit) comes before sources[1], and so on. Failing sources
// are logged at Warn and contribute nothing. Load never fails; an empty
// pool means direct connections.
func Load(ctx context.Context, sources []Source, opts ...LoadOption) *Pool {
	o := loadOptions{
		logger:         slog.Default(),
		perSourceLimit: PerSourceLimit,
		maxSize:        MaxPoolSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	results := make([][]model.ProxyCandidate, len(sources))

	// Errors are handled per source, so the group never cancels.
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			candidates, err := src.Load(ctx)
			if err != nil {
				o.logger.Warn("proxy source failed", "source", src.Name(), "error", err)
				return nil
			}
			if len(candidates) > o.perSourceLimit {
				candidates = candidates[:o.perSourceLimit]
			}
			o.logger.Debug("proxy source loaded", "source", src.Name(), "count", len(candidates))
			results[i] = candidates
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	var all []model.ProxyCandidate
	for _, r := range results {
		all = append(all, r...)
	}

	pool := &Pool{candidates: dedupe(all, o.maxSize)}
	if pool.Len() == 0 {
		o.logger.Warn("proxy pool is empty, using direct connections")
	} else {
		o.logger.Info("proxy pool loaded", "size", pool.Len())
	}
	return pool
}

func dedupe(candidates []model.ProxyCandidate, limit int) []model.ProxyCandidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]model.ProxyCandidate, 0, min(len(candidates), limit))
	for _, c := range candidates {
		if len(out) >= limit {
			break
		}
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		out = append(out, c)
	}
	return out
}
