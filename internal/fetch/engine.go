package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/kgscrape/internal/classifier"
	"github.com/nao1215/kgscrape/internal/config"
	"github.com/nao1215/kgscrape/internal/disguise"
	"github.com/nao1215/kgscrape/internal/model"
	"github.com/nao1215/kgscrape/internal/proxy"
	"github.com/nao1215/kgscrape/internal/random"
	"github.com/nao1215/kgscrape/internal/strategy"
)

// probedAttempts is the number of leading attempts whose proxy is probed
// before the target request.
const probedAttempts = 2

// Prober checks that a proxy candidate can reach the outside world.
type Prober interface {
	Probe(ctx context.Context, c model.ProxyCandidate) error
}

// Sleeper waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// SiteSettings returns the cookie and headers configured for a host.
type SiteSettings func(host string) config.SiteConfig

// Engine runs the bounded retry loop for one URL at a time. An Engine is
// safe for concurrent use: the pool cursor and the random source carry their
// own locks and everything else is read-only after NewEngine.
type Engine struct {
	pool        *proxy.Pool
	prober      Prober
	disguises   *disguise.Generator
	classifier  *classifier.Classifier
	registry    *strategy.Registry
	rnd         *random.Source
	sleep       Sleeper
	backoffMin  time.Duration
	backoffMax  time.Duration
	insecureTLS bool
	direct      http.RoundTripper
	site        SiteSettings
	observer    Observer
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPool sets the proxy pool. Without one every attempt is direct.
func WithPool(p *proxy.Pool) Option {
	return func(e *Engine) {
		e.pool = p
	}
}

// WithProber replaces the proxy prober.
func WithProber(p Prober) Option {
	return func(e *Engine) {
		if p != nil {
			e.prober = p
		}
	}
}

// WithDisguises replaces the disguise generator.
func WithDisguises(g *disguise.Generator) Option {
	return func(e *Engine) {
		if g != nil {
			e.disguises = g
		}
	}
}

// WithClassifier replaces the URL classifier.
func WithClassifier(c *classifier.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithRegistry replaces the strategy registry.
func WithRegistry(r *strategy.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithRandom sets the random source used for backoff jitter. The default
// disguise generator shares it.
func WithRandom(r *random.Source) Option {
	return func(e *Engine) {
		if r != nil {
			e.rnd = r
		}
	}
}

// WithSleeper replaces the backoff sleep, e.g. with a recorder in tests.
func WithSleeper(s Sleeper) Option {
	return func(e *Engine) {
		if s != nil {
			e.sleep = s
		}
	}
}

// WithBackoff sets the jittered backoff range [lo, hi).
func WithBackoff(lo, hi time.Duration) Option {
	return func(e *Engine) {
		e.backoffMin = lo
		e.backoffMax = hi
	}
}

// WithInsecureTLS controls certificate verification for target requests.
func WithInsecureTLS(insecure bool) Option {
	return func(e *Engine) {
		e.insecureTLS = insecure
	}
}

// WithSiteSettings sets the per-host cookie/header lookup.
func WithSiteSettings(fn SiteSettings) Option {
	return func(e *Engine) {
		e.site = fn
	}
}

// WithObserver registers a hook called after every attempt.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine. Defaults: empty pool, default prober,
// classifier and registry, clock-seeded randomness, 3-8 s backoff and
// certificate verification disabled.
//
// Design decision: InsecureTLS defaults to true because free proxies often
// terminate TLS themselves. The engine logs a warning at construction so the
// setting never goes unnoticed; --strict-tls turns it off.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		pool:        proxy.NewPool(nil),
		classifier:  classifier.New(),
		sleep:       SleepContext,
		backoffMin:  config.DefaultBackoffMin,
		backoffMax:  config.DefaultBackoffMax,
		insecureTLS: true,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rnd == nil {
		e.rnd = random.New(0)
	}
	if e.disguises == nil {
		e.disguises = disguise.NewGenerator(e.rnd)
	}
	if e.prober == nil {
		e.prober = proxy.NewProber(proxy.WithProbeInsecureTLS(e.insecureTLS))
	}
	if e.registry == nil {
		e.registry = strategy.NewRegistry(strategy.WithRegistryLogger(e.logger))
	}
	if e.pool == nil {
		e.pool = proxy.NewPool(nil)
	}

	direct, err := proxy.NewTransport(nil, e.insecureTLS)
	if err != nil {
		return nil, fmt.Errorf("failed to build direct transport: %w", err)
	}
	e.direct = direct

	if e.insecureTLS {
		e.logger.Warn("TLS certificate verification is disabled for target requests; use --strict-tls to enable it")
	}
	return e, nil
}

// Classify returns the category the engine would use for rawURL.
func (e *Engine) Classify(rawURL string) model.SiteCategory {
	return e.classifier.Classify(rawURL)
}

// PoolSize returns the number of proxy candidates in rotation.
func (e *Engine) PoolSize() int {
	return e.pool.Len()
}

// Fetch acquires rawURL with up to maxAttempts attempts (at least one).
// It returns the first successful document or a *TerminalFailure.
func (e *Engine) Fetch(ctx context.Context, rawURL string, maxAttempts int) (*model.RawDocument, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	category := e.classifier.Classify(rawURL)
	s := e.registry.Lookup(category)
	site := e.siteConfig(rawURL)

	var lastErr error
	for i := range maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, &TerminalFailure{URL: rawURL, Attempts: i, Err: err}
		}

		if i > 0 {
			delay := e.rnd.Between(e.backoffMin, e.backoffMax)
			e.logger.Debug("backing off before retry", "url", rawURL, "attempt", i, "delay", delay)
			if err := e.sleep(ctx, delay); err != nil {
				return nil, &TerminalFailure{URL: rawURL, Attempts: i, Err: err}
			}
		}

		d := e.disguises.Next()
		var candidate *model.ProxyCandidate
		if c, ok := e.pool.Next(); ok {
			candidate = &c
		}

		start := time.Now()
		doc, err := e.attempt(ctx, rawURL, i, s, d, candidate, site)
		e.notify(FetchAttempt{
			URL:       rawURL,
			Attempt:   i,
			Proxy:     candidate,
			UserAgent: d.UserAgent(),
			Category:  category,
			Strategy:  s.Name(),
			Err:       err,
			Elapsed:   time.Since(start),
		})
		if err == nil {
			return doc, nil
		}

		lastErr = err
		e.logger.Debug("fetch attempt failed",
			"url", rawURL,
			"attempt", i+1,
			"of", maxAttempts,
			"proxy", proxyLabel(candidate),
			"strategy", s.Name(),
			"error", err,
		)
	}

	return nil, &TerminalFailure{URL: rawURL, Attempts: maxAttempts, Err: lastErr}
}

// attempt runs one probe-then-dispatch cycle.
func (e *Engine) attempt(
	ctx context.Context,
	rawURL string,
	index int,
	s strategy.Strategy,
	d disguise.Disguise,
	candidate *model.ProxyCandidate,
	site config.SiteConfig,
) (*model.RawDocument, error) {
	req := strategy.Request{
		URL:       rawURL,
		Disguise:  d,
		Proxy:     candidate,
		Transport: e.direct,
		Cookie:    site.Cookie,
		Headers:   site.Headers,
	}

	if candidate != nil {
		if index < probedAttempts {
			if err := e.prober.Probe(ctx, *candidate); err != nil {
				return nil, err
			}
		}

		transport, err := proxy.NewTransport(candidate, e.insecureTLS)
		if err != nil {
			return nil, err
		}
		defer transport.CloseIdleConnections()
		req.Transport = transport
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Acquire(ctx, req)
}

func (e *Engine) notify(a FetchAttempt) {
	if e.observer != nil {
		e.observer(a)
	}
}

func (e *Engine) siteConfig(rawURL string) config.SiteConfig {
	if e.site == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return config.SiteConfig{}
	}
	return e.site(u.Hostname())
}

func proxyLabel(c *model.ProxyCandidate) string {
	if c == nil {
		return "direct"
	}
	return c.String()
}

// SleepContext sleeps for d unless ctx ends first. It is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
