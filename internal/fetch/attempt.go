package fetch

import (
	"errors"
	"time"

	"github.com/nao1215/kgscrape/internal/model"
	"github.com/nao1215/kgscrape/internal/proxy"
)

// Attempt outcomes reported by FetchAttempt.Outcome.
const (
	OutcomeSuccess     = "success"
	OutcomeProbeFailed = "probe_failed"
	OutcomeError       = "error"
)

// FetchAttempt describes one finished attempt. It is handed to the
// Observer and then dropped.
type FetchAttempt struct {
	URL       string
	Attempt   int
	Proxy     *model.ProxyCandidate
	UserAgent string
	Category  model.SiteCategory
	Strategy  string
	Err       error
	Elapsed   time.Duration
}

// Outcome classifies the attempt for metrics labels.
func (a FetchAttempt) Outcome() string {
	switch {
	case a.Err == nil:
		return OutcomeSuccess
	case errors.Is(a.Err, proxy.ErrProbeFailed):
		return OutcomeProbeFailed
	default:
		return OutcomeError
	}
}

// ProxyLabel returns the proxy key, or "direct".
func (a FetchAttempt) ProxyLabel() string {
	return proxyLabel(a.Proxy)
}

// Observer receives every finished attempt. It is called synchronously from
// the fetching goroutine and must be safe for concurrent use when the engine
// is shared.
type Observer func(FetchAttempt)
