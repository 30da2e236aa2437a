package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/kgscrape/internal/model"
)

// SimpleWriter outputs human-readable text for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors so the output can be piped to files or other tools.
type SimpleWriter struct {
	baseWriter

	// showEmpty lists successful records that produced no entities.
	showEmpty bool

	// verbose lists every entity and relationship.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to list records without entities.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeRelationTypes(&sb, summary)
	w.writeRecords(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the run totals.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      KNOWLEDGE GRAPH SCRAPE\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run ID:         %s\n", s.RunID)
	fmt.Fprintf(sb, "Start URL:      %s\n", s.StartURL)
	fmt.Fprintf(sb, "Started:        %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %s\n", s.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "URLs:           %d (%d ok, %d failed, %d via proxy)\n",
		len(s.Records), s.Successful, s.Failed, s.ProxyAssisted)
	fmt.Fprintf(sb, "Entities:       %d\n", s.TotalEntities)
	fmt.Fprintf(sb, "Relationships:  %d\n", s.TotalRelationships)
	sb.WriteString("\n")
}

// writeRelationTypes writes relationship counts per type.
func (w *SimpleWriter) writeRelationTypes(sb *strings.Builder, s *model.RunSummary) {
	counts := s.RelationTypeCounts()
	if len(counts) == 0 {
		return
	}

	section(sb, "RELATIONSHIP TYPES")
	for _, c := range counts {
		fmt.Fprintf(sb, "  %-16s %d\n", c.Type, c.Count)
	}
	sb.WriteString("\n")
}

// writeRecords writes one block per record.
func (w *SimpleWriter) writeRecords(sb *strings.Builder, s *model.RunSummary) {
	if len(s.Records) == 0 {
		return
	}

	section(sb, "RECORDS")
	for _, r := range s.Records {
		if r.Error {
			fmt.Fprintf(sb, "[FAIL] %s\n", r.SourceURL)
			fmt.Fprintf(sb, "       %s\n\n", r.Message)
			continue
		}
		if len(r.Entities) == 0 && !w.showEmpty {
			continue
		}

		fmt.Fprintf(sb, "[ OK ] %s\n", r.SourceURL)
		fmt.Fprintf(sb, "       %s, %d entities, %d relationships\n",
			r.ExtractionMethod, len(r.Entities), len(r.Relationships))

		if !w.verbose {
			sb.WriteString("\n")
			continue
		}
		for _, e := range r.Entities {
			fmt.Fprintf(sb, "       * %s (%s)\n", e.Name, e.Description)
		}
		for _, rel := range r.Relationships {
			fmt.Fprintf(sb, "       - %s -[%s]-> %s\n", rel.Entity1.Name, rel.RelationType, rel.Entity2.Name)
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by kgscrape\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
