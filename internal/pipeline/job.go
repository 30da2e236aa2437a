package pipeline

import (
	"github.com/nao1215/kgscrape/internal/crawler"
	"github.com/nao1215/kgscrape/internal/model"
)

// Job carries one URL through the pipeline.
type Job struct {
	// URL is the page to process.
	URL string

	// Category is set by FetchStep from the URL classifier.
	Category model.SiteCategory

	// Document is the fetched page. It may be set before the pipeline runs
	// when the page was already fetched during link discovery.
	Document *model.RawDocument

	// FetchErr is a fetch failure that happened before the pipeline ran.
	FetchErr error

	// Entities and Relationships are filled by ExtractStep and RelateStep.
	Entities      []model.Entity
	Relationships []model.Relationship

	// Record is the final result. Once set, remaining steps are skipped.
	Record *model.KnowledgeRecord
}

// NewJob creates a job for url.
func NewJob(url string) *Job {
	return &Job{URL: url}
}

// Fail turns the job into an error record carrying err's message.
func (j *Job) Fail(err error) {
	j.Entities = nil
	j.Relationships = nil
	j.Record = model.NewErrorRecord(j.URL, j.Category, err.Error())
}

// Done reports whether the job already has a record.
func (j *Job) Done() bool {
	return j.Record != nil
}

// finish builds the success record when no step failed.
func (j *Job) finish() {
	if j.Record != nil {
		return
	}
	if j.Document == nil {
		j.Record = model.NewErrorRecord(j.URL, j.Category, ErrNoDocument.Error())
		return
	}
	j.Record = model.NewKnowledgeRecord(j.Document, j.Entities, j.Relationships)
}

// DiscoveryJobs turns a discovery result into jobs. The start page document
// (or its fetch error) is attached to the first job so it is not fetched
// twice.
func DiscoveryJobs(d *crawler.Discovery, discoverErr error) []*Job {
	if d == nil {
		return nil
	}
	jobs := make([]*Job, len(d.URLs))
	for i, u := range d.URLs {
		jobs[i] = NewJob(u)
	}
	if len(jobs) > 0 {
		jobs[0].Document = d.Start
		if d.Start == nil {
			jobs[0].FetchErr = discoverErr
		}
	}
	return jobs
}

// URLJobs creates one job per URL.
func URLJobs(urls ...string) []*Job {
	jobs := make([]*Job, len(urls))
	for i, u := range urls {
		jobs[i] = NewJob(u)
	}
	return jobs
}
