package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/kgscrape/internal/model"
)

// JSONWriter outputs runs in JSON format.
// By default it writes the record array, which is the shape the graph
// importer reads. WithSummary switches to the whole RunSummary.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because the record shape is plain structs and every
// consumer of the output is another JSON reader.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// summary writes the RunSummary instead of only its records.
	summary bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithSummary writes the whole RunSummary instead of the record array.
func WithSummary() JSONWriterOption {
	return func(w *JSONWriter) {
		w.summary = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run in JSON format.
func (w *JSONWriter) Write(summary *model.RunSummary) (int, error) {
	if w.summary {
		return w.writeJSON(summary)
	}
	records := summary.Records
	if records == nil {
		records = []*model.KnowledgeRecord{}
	}
	return w.writeJSON(records)
}

// WriteRecord outputs a single record. The scrape command uses it to
// print records as they finish.
func (w *JSONWriter) WriteRecord(record *model.KnowledgeRecord) (int, error) {
	return w.writeJSON(record)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a summary with the version of the tool that produced it.
//
// Design decision: We wrap the summary rather than adding a version field
// to RunSummary because the history database stores summaries and the
// version is an output concern.
type JSONReport struct {
	// Version is the kgscrape version that generated this report.
	Version string `json:"version"`

	// Summary is the run summary including every record.
	Summary *model.RunSummary `json:"summary"`

	// RelationTypes counts relationships per type.
	RelationTypes map[model.RelationType]int `json:"relation_types"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(summary *model.RunSummary, version string) *JSONReport {
	counts := make(map[model.RelationType]int)
	for _, c := range summary.RelationTypeCounts() {
		counts[c.Type] = c.Count
	}
	return &JSONReport{
		Version:       version,
		Summary:       summary,
		RelationTypes: counts,
	}
}

// FullJSONWriter outputs summaries with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the kgscrape version string.
	version string
}

// NewFullJSONWriter creates a writer for complete summaries with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the summary wrapped with metadata.
func (w *FullJSONWriter) Write(summary *model.RunSummary) (int, error) {
	return w.writeJSON(NewJSONReport(summary, w.version))
}
