package model

import (
	"testing"
	"time"
)

// TestNewRunSummary tests folding records into a summary.
func TestNewRunSummary(t *testing.T) {
	t.Parallel()

	proxy := NewProxyCandidate("10.0.0.1:3128")
	records := []*KnowledgeRecord{
		NewKnowledgeRecord(
			&RawDocument{URL: "https://a.example", Strategy: "generic_html", Proxy: &proxy},
			[]Entity{{Name: "Alpha"}, {Name: "Beta"}},
			[]Relationship{{RelationType: RelationUses}},
		),
		NewKnowledgeRecord(
			&RawDocument{URL: "https://b.example", Strategy: "generic_html"},
			[]Entity{{Name: "Gamma"}},
			[]Relationship{{RelationType: RelationUses}, {RelationType: RelationPartOf}},
		),
		NewErrorRecord("https://c.example", CategoryGeneric, "timeout"),
		nil,
	}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	s := NewRunSummary("run-1", "https://a.example", start, end, records)

	if s.TotalEntities != 3 {
		t.Errorf("expected 3 entities, got %d", s.TotalEntities)
	}
	if s.TotalRelationships != 3 {
		t.Errorf("expected 3 relationships, got %d", s.TotalRelationships)
	}
	if s.Successful != 2 {
		t.Errorf("expected 2 successes, got %d", s.Successful)
	}
	if s.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", s.Failed)
	}
	if s.ProxyAssisted != 1 {
		t.Errorf("expected 1 proxy assisted, got %d", s.ProxyAssisted)
	}
	if len(s.Records) != 3 {
		t.Errorf("expected nil records to be skipped, got %d records", len(s.Records))
	}
	if s.Duration() != 90*time.Second {
		t.Errorf("expected 90s duration, got %v", s.Duration())
	}

	t.Run("relation type counts are sorted by count", func(t *testing.T) {
		t.Parallel()
		counts := s.RelationTypeCounts()
		if len(counts) != 2 {
			t.Fatalf("expected 2 relation types, got %d", len(counts))
		}
		if counts[0].Type != RelationUses || counts[0].Count != 2 {
			t.Errorf("expected USES=2 first, got %v", counts[0])
		}
	})
}

// TestNewRunSummaryEmpty verifies an empty run still yields a summary.
func TestNewRunSummaryEmpty(t *testing.T) {
	t.Parallel()

	s := NewRunSummary("run-2", "", time.Time{}, time.Time{}, nil)
	if s.Records == nil {
		t.Error("expected non-nil records slice")
	}
	if s.Successful != 0 || s.Failed != 0 {
		t.Error("expected zero counters")
	}
}
