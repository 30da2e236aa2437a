package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/kgscrape/internal/model"
)

// createTestSummary creates a run with one success, one API record and one failure.
func createTestSummary() *model.RunSummary {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	generic := model.NewKnowledgeRecord(
		&model.RawDocument{URL: "https://example.com/", Strategy: "generic", Title: "Example Home"},
		[]model.Entity{
			{Name: "Acme Corp", Description: "Organization"},
			{Name: "Central Park", Description: "Named entity mentioned in content"},
		},
		[]model.Relationship{{
			Entity1:      model.EntityRef{Name: "Acme Corp"},
			Entity2:      model.EntityRef{Name: "Central Park"},
			RelationType: model.RelationLocatedAt,
			Description:  "Acme Corp and Central Park appear together: Acme Corp is located near Central Park",
		}},
	)

	api := model.NewKnowledgeRecord(
		&model.RawDocument{
			URL:      "https://www.zillow.com/homes/Austin-TX/",
			Strategy: "zillow_api",
			Category: model.CategoryRealEstate,
			Fragment: &model.Fragment{Method: "zillow_api_zillow-com1"},
		},
		[]model.Entity{{Name: "9 Oak Ave Austin TX", Description: "Property"}, {Name: "$300,000", Description: "Property price"}},
		[]model.Relationship{
			{Entity1: model.EntityRef{Name: "9 Oak Ave Austin TX"}, Entity2: model.EntityRef{Name: "$300,000"}, RelationType: model.RelationPricedAt},
			{Entity1: model.EntityRef{Name: "9 Oak Ave Austin TX"}, Entity2: model.EntityRef{Name: "$310,000"}, RelationType: model.RelationPricedAt},
		},
	)

	failed := model.NewErrorRecord("https://example.com/blocked", model.CategoryGeneric, "failed to fetch after 3 attempt(s): status 403")

	return model.NewRunSummary("run-1", "https://example.com/", started, started.Add(90*time.Second),
		[]*model.KnowledgeRecord{generic, api, failed})
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"KNOWLEDGE GRAPH SCRAPE",
			"run-1",
			"3 (2 ok, 1 failed, 0 via proxy)",
			"Relationships:  3",
			"Duration:       1m30s",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("writes relationship types and failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PRICED_AT        2") {
			t.Error("expected PRICED_AT count")
		}
		if !strings.Contains(output, "[FAIL] https://example.com/blocked") {
			t.Error("expected failed record")
		}
		if !strings.Contains(output, "status 403") {
			t.Error("expected failure message")
		}
		if strings.Contains(output, "* Acme Corp") {
			t.Error("entities should only be listed in verbose mode")
		}
	})

	t.Run("verbose mode lists entities and relationships", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "* Acme Corp (Organization)") {
			t.Error("expected entity line")
		}
		if !strings.Contains(output, "Acme Corp -[LOCATED_AT]-> Central Park") {
			t.Error("expected relationship line")
		}
	})

	t.Run("hides records without entities unless showEmpty", func(t *testing.T) {
		t.Parallel()

		empty := model.NewKnowledgeRecord(&model.RawDocument{URL: "https://example.com/empty", Strategy: "generic"}, nil, nil)
		s := model.NewRunSummary("run-2", empty.SourceURL, time.Now(), time.Now(), []*model.KnowledgeRecord{empty})

		var hidden, shown bytes.Buffer
		_, _ = NewSimpleWriter(&hidden).Write(s)
		_, _ = NewSimpleWriter(&shown, WithShowEmpty(true)).Write(s)

		if strings.Contains(hidden.String(), "[ OK ] https://example.com/empty") {
			t.Error("empty record should be hidden by default")
		}
		if !strings.Contains(shown.String(), "[ OK ] https://example.com/empty") {
			t.Error("empty record should be shown with showEmpty")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes the record array by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var records []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
			t.Fatalf("output is not a JSON array: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("len = %d, want 3", len(records))
		}
		for _, key := range []string{"entities", "relationships", "error", "extraction_method", "source_url"} {
			if _, ok := records[0][key]; !ok {
				t.Errorf("record is missing %q", key)
			}
		}
		if records[1]["extraction_method"] != "zillow_api_zillow-com1" || records[1]["authoritative"] != true {
			t.Errorf("api record = %v", records[1])
		}
		if records[2]["error"] != true || records[2]["message"] == "" {
			t.Errorf("error record = %v", records[2])
		}
	})

	t.Run("empty run writes an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := model.NewRunSummary("run-0", "https://example.com/", time.Now(), time.Now(), nil)
		if _, err := NewJSONWriter(&buf).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("output = %q, want []", buf.String())
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _ = NewJSONWriter(&buf).Write(createTestSummary())
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected compact JSON on a single line")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _ = NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSummary())
		if !strings.Contains(buf.String(), "\n  {") {
			t.Error("expected indented JSON")
		}
	})

	t.Run("custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, _ = NewJSONWriter(&buf, WithIndent(">", "\t")).Write(createTestSummary())
		if !strings.Contains(buf.String(), "\n>\t{") {
			t.Errorf("expected custom indentation, got %q", buf.String()[:40])
		}
	})

	t.Run("summary mode", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithSummary()).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var s model.RunSummary
		if err := json.Unmarshal(buf.Bytes(), &s); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if s.RunID != "run-1" || s.Successful != 2 || s.Failed != 1 || len(s.Records) != 3 {
			t.Errorf("summary = %+v", s)
		}
		if s.Records[1].Category != model.CategoryRealEstate {
			t.Errorf("category = %v", s.Records[1].Category)
		}
	})

	t.Run("single record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteRecord(createTestSummary().Records[0]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var r model.KnowledgeRecord
		if err := json.Unmarshal(buf.Bytes(), &r); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if r.SourceURL != "https://example.com/" {
			t.Errorf("SourceURL = %q", r.SourceURL)
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "1.2.3").Write(createTestSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Version       string         `json:"version"`
		Summary       map[string]any `json:"summary"`
		RelationTypes map[string]int `json:"relation_types"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Version != "1.2.3" {
		t.Errorf("Version = %q", out.Version)
	}
	if out.Summary["run_id"] != "run-1" {
		t.Errorf("summary = %v", out.Summary)
	}
	if out.RelationTypes["PRICED_AT"] != 2 || out.RelationTypes["LOCATED_AT"] != 1 {
		t.Errorf("RelationTypes = %v", out.RelationTypes)
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := mw.Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("n = %d, want %d", n, text.Len()+js.Len())
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(createTestSummary())
		if err != nil || n != 0 {
			t.Errorf("Write() = %d, %v", n, err)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, s *model.RunSummary, opts ...MarkdownWriterOption) string {
		t.Helper()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, opts...).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.String()
	}

	t.Run("writes run table", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestSummary())
		for _, want := range []string{"# Knowledge Graph Scrape Report", "`run-1`", "1m30s", "Proxy-assisted"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("includes relation type pie chart", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestSummary())
		if !strings.Contains(output, "```mermaid") || !strings.Contains(output, "pie") {
			t.Error("expected mermaid pie chart")
		}
		if !strings.Contains(output, "PRICED_AT") {
			t.Error("expected relation type label")
		}
	})

	t.Run("writes record sections", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestSummary())
		if !strings.Contains(output, "### Example Home") {
			t.Error("expected record heading from title")
		}
		if !strings.Contains(output, "Source: structured API") {
			t.Error("expected authoritative marker")
		}
		if !strings.Contains(output, "<details>") {
			t.Error("expected relationship details")
		}
	})

	t.Run("lists failures with warning", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestSummary())
		if !strings.Contains(output, "## Failures") || !strings.Contains(output, "https://example.com/blocked") {
			t.Error("expected failures table")
		}
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected WARNING alert")
		}
	})

	t.Run("all failed", func(t *testing.T) {
		t.Parallel()

		failed := model.NewErrorRecord("https://example.com/", model.CategoryGeneric, "boom")
		s := model.NewRunSummary("run-x", failed.SourceURL, time.Now(), time.Now(), []*model.KnowledgeRecord{failed})
		output := write(t, s)
		if !strings.Contains(output, "[!CAUTION]") {
			t.Error("expected CAUTION alert")
		}
		if !strings.Contains(output, "No successful records.") {
			t.Error("expected empty records note")
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("no chart expected without relationships")
		}
	})

	t.Run("all successful", func(t *testing.T) {
		t.Parallel()

		s := createTestSummary()
		s = model.NewRunSummary(s.RunID, s.StartURL, s.StartedAt, s.FinishedAt, s.Records[:2])
		if output := write(t, s); !strings.Contains(output, "[!TIP]") {
			t.Error("expected TIP alert")
		}
	})

	t.Run("limits entity rows", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestSummary(), WithMaxEntities(1))
		if !strings.Contains(output, "1 more entities omitted") {
			t.Error("expected omitted entities note")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		if output := write(t, createTestSummary()); !strings.Contains(output, "github.com/nao1215/kgscrape") {
			t.Error("expected footer link")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"ab", 5, "ab"},
		{"日本語のテキストです", 6, "日本語..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}
