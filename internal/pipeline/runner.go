package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/kgscrape/internal/config"
	"github.com/nao1215/kgscrape/internal/fetch"
	"github.com/nao1215/kgscrape/internal/model"
	"github.com/nao1215/kgscrape/internal/random"
)

// Runner processes a list of jobs and folds the records into a RunSummary.
//
// Design decision: The runner keeps a fresh pipeline per job (through the
// factory) so no step state leaks between URLs, and it never returns an
// error: every URL ends up as a record, failed or not.
type Runner struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	delayMin        time.Duration
	delayMax        time.Duration
	rnd             *random.Source
	sleep           fetch.Sleeper
	onRecord        func(*model.KnowledgeRecord)
	newID           func() string
	logger          *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency sets how many URLs are processed at once. Each URL's own
// retry loop stays sequential.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithPoliteness sets the randomized delay [lo, hi) between URLs.
func WithPoliteness(lo, hi time.Duration) RunnerOption {
	return func(r *Runner) {
		r.delayMin = lo
		r.delayMax = hi
	}
}

// WithRandom sets the random source for politeness delays.
func WithRandom(rnd *random.Source) RunnerOption {
	return func(r *Runner) {
		if rnd != nil {
			r.rnd = rnd
		}
	}
}

// WithSleeper replaces the politeness sleep.
func WithSleeper(s fetch.Sleeper) RunnerOption {
	return func(r *Runner) {
		if s != nil {
			r.sleep = s
		}
	}
}

// WithRecordHook registers a callback for every finished record. It may be
// called from several goroutines at once.
func WithRecordHook(fn func(*model.KnowledgeRecord)) RunnerOption {
	return func(r *Runner) {
		r.onRecord = fn
	}
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(fn func() string) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner. The factory is called once per job.
func NewRunner(pipelineFactory func() *Pipeline, opts ...RunnerOption) *Runner {
	r := &Runner{
		pipelineFactory: pipelineFactory,
		concurrency:     config.DefaultConcurrency,
		delayMin:        config.DefaultPolitenessMin,
		delayMax:        config.DefaultPolitenessMax,
		sleep:           fetch.SleepContext,
		newID:           uuid.NewString,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rnd == nil {
		r.rnd = random.New(0)
	}
	return r
}

// Run processes jobs and returns the run summary. Records keep the order of
// jobs. When ctx ends, unprocessed jobs become error records.
func (r *Runner) Run(ctx context.Context, startURL string, jobs []*Job) *model.RunSummary {
	started := time.Now().UTC()
	r.logger.Info("starting run",
		"start_url", startURL,
		"urls", len(jobs),
		"concurrency", r.concurrency,
	)

	if r.concurrency <= 1 {
		r.runSequential(ctx, jobs)
	} else {
		r.runConcurrent(ctx, jobs)
	}

	records := make([]*model.KnowledgeRecord, len(jobs))
	for i, job := range jobs {
		records[i] = job.Record
	}

	summary := model.NewRunSummary(r.newID(), startURL, started, time.Now().UTC(), records)
	r.logger.Info("run complete",
		"run_id", summary.RunID,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"elapsed", summary.Duration(),
	)
	return summary
}

func (r *Runner) runSequential(ctx context.Context, jobs []*Job) {
	for i, job := range jobs {
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				job.Fail(err)
				r.emit(job)
				continue
			}
		}
		r.process(ctx, job, i, len(jobs))
	}
}

// runConcurrent staggers job starts by the politeness delay and runs up to
// r.concurrency jobs at once.
func (r *Runner) runConcurrent(ctx context.Context, jobs []*Job) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, job := range jobs {
		if i > 0 {
			if err := r.pause(gctx); err != nil {
				job.Fail(err)
				r.emit(job)
				continue
			}
		}
		g.Go(func() error {
			r.process(gctx, job, i, len(jobs))
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors; failures live in records
}

func (r *Runner) process(ctx context.Context, job *Job, index, total int) {
	r.logger.Info("processing url", "url", job.URL, "index", index+1, "total", total)
	r.pipelineFactory().Execute(ctx, job)
	if job.Record.Error {
		r.logger.Warn("url failed", "url", job.URL, "message", job.Record.Message)
	}
	r.emit(job)
}

func (r *Runner) pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.sleep(ctx, r.rnd.Between(r.delayMin, r.delayMax))
}

func (r *Runner) emit(job *Job) {
	if r.onRecord != nil {
		r.onRecord(job.Record)
	}
}
