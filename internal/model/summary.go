package model

import (
	"sort"
	"time"
)

// RunSummary aggregates every KnowledgeRecord produced by one invocation.
// It is built once at the end of a run and never mutated afterwards.
//
// Design decision: We keep the records inside the summary rather than
// returning them separately because every consumer (JSON writer, Markdown
// writer, database) needs both, and a single value keeps them consistent.
type RunSummary struct {
	// RunID uniquely identifies the run in the history database.
	RunID string `json:"run_id"`

	// StartURL is the URL the run was started from.
	StartURL string `json:"start_url"`

	// StartedAt and FinishedAt bound the run's wall time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// TotalEntities is the entity count summed over successful records.
	TotalEntities int `json:"total_entities"`

	// TotalRelationships is the relationship count summed over successful records.
	TotalRelationships int `json:"total_relationships"`

	// Successful is the number of records without an error.
	Successful int `json:"successful"`

	// Failed is the number of error records.
	Failed int `json:"failed"`

	// ProxyAssisted is the number of records fetched through a proxy.
	ProxyAssisted int `json:"proxy_assisted"`

	// Records holds every per-URL record in processing order.
	Records []*KnowledgeRecord `json:"data"`
}

// NewRunSummary folds records into a RunSummary. It performs no I/O.
// Error records contribute to Failed only; their (empty) entity and
// relationship lists are not counted.
func NewRunSummary(runID, startURL string, startedAt, finishedAt time.Time, records []*KnowledgeRecord) *RunSummary {
	s := &RunSummary{
		RunID:      runID,
		StartURL:   startURL,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Records:    make([]*KnowledgeRecord, 0, len(records)),
	}

	for _, r := range records {
		if r == nil {
			continue
		}
		s.Records = append(s.Records, r)

		if r.Error {
			s.Failed++
			continue
		}
		s.Successful++
		s.TotalEntities += len(r.Entities)
		s.TotalRelationships += len(r.Relationships)
		if r.ProxyAssisted() {
			s.ProxyAssisted++
		}
	}

	return s
}

// Duration returns how long the run took.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// RelationTypeCount is one row of RelationTypeCounts.
type RelationTypeCount struct {
	Type  RelationType
	Count int
}

// RelationTypeCounts counts relationships by type across successful records,
// sorted by descending count and then by type name.
func (s *RunSummary) RelationTypeCounts() []RelationTypeCount {
	counts := make(map[RelationType]int)
	for _, r := range s.Records {
		if r.Error {
			continue
		}
		for _, rel := range r.Relationships {
			counts[rel.RelationType]++
		}
	}

	result := make([]RelationTypeCount, 0, len(counts))
	for t, c := range counts {
		result = append(result, RelationTypeCount{Type: t, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Type < result[j].Type
	})
	return result
}
