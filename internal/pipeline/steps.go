package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/kgscrape/internal/extract"
	"github.com/nao1215/kgscrape/internal/model"
	"github.com/nao1215/kgscrape/internal/relate"
)

// Fetcher classifies and acquires URLs. *fetch.Engine satisfies it.
type Fetcher interface {
	Classify(rawURL string) model.SiteCategory
	Fetch(ctx context.Context, rawURL string, maxAttempts int) (*model.RawDocument, error)
}

// FetchStep classifies the job's URL and fetches it unless the document
// was attached beforehand.
type FetchStep struct {
	fetcher     Fetcher
	maxAttempts int
	logger      *slog.Logger
}

// NewFetchStep creates a FetchStep with the given per-URL attempt budget.
func NewFetchStep(f Fetcher, maxAttempts int, logger *slog.Logger) *FetchStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchStep{fetcher: f, maxAttempts: maxAttempts, logger: logger}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, job *Job) error {
	job.Category = s.fetcher.Classify(job.URL)

	if job.FetchErr != nil {
		return job.FetchErr
	}
	if job.Document != nil {
		s.logger.Debug("using prefetched document", "url", job.URL)
		return nil
	}

	doc, err := s.fetcher.Fetch(ctx, job.URL, s.maxAttempts)
	if err != nil {
		return err
	}
	job.Document = doc
	return nil
}

// ExtractStep fills job.Entities. Documents carrying an authoritative
// fragment bypass the heuristics and contribute the fragment as is.
type ExtractStep struct {
	extractor *extract.Extractor
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(e *extract.Extractor) *ExtractStep {
	if e == nil {
		e = extract.New()
	}
	return &ExtractStep{extractor: e}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extract step.
func (s *ExtractStep) Do(_ context.Context, job *Job) error {
	if job.Document == nil {
		return ErrNoDocument
	}
	if f := job.Document.Fragment; f != nil {
		job.Entities = f.Entities
		job.Relationships = f.Relationships
		return nil
	}
	job.Entities = s.extractor.Extract(job.Document.Text, job.Category)
	return nil
}

// RelateStep fills job.Relationships from the page text.
type RelateStep struct {
	builder *relate.Builder
}

// NewRelateStep creates a RelateStep.
func NewRelateStep(b *relate.Builder) *RelateStep {
	if b == nil {
		b = relate.New()
	}
	return &RelateStep{builder: b}
}

// Name returns the step name.
func (s *RelateStep) Name() string {
	return "relate"
}

// Do executes the relate step.
func (s *RelateStep) Do(_ context.Context, job *Job) error {
	if job.Document == nil {
		return ErrNoDocument
	}
	if job.Document.Fragment != nil {
		return nil
	}
	job.Relationships = s.builder.Build(job.Entities, job.Document.Text)
	return nil
}

// NewDefault returns the standard fetch, extract, relate pipeline.
func NewDefault(f Fetcher, maxAttempts int, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewFetchStep(f, maxAttempts, logger),
		NewExtractStep(nil),
		NewRelateStep(nil),
	)
	return p
}
