package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/kgscrape/internal/model"
)

// MarkdownWriter outputs runs in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter

	// maxEntities limits the entity table of each record.
	maxEntities int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMaxEntities limits how many entities are listed per record.
// Zero or less lists all of them.
func WithMaxEntities(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.maxEntities = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:  newBaseWriter(output),
		maxEntities: 10,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeRelationTypes(md, summary)
	w.writeRecords(md, summary)
	w.writeFailures(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the run table and a status alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.RunSummary) {
	md.H1("Knowledge Graph Scrape Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + s.RunID + "`"},
			{"Start URL", s.StartURL},
			{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", s.Duration().Round(time.Second).String()},
			{"URLs", strconv.Itoa(len(s.Records))},
			{"Successful", strconv.Itoa(s.Successful)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Proxy-assisted", strconv.Itoa(s.ProxyAssisted)},
			{"Entities", strconv.Itoa(s.TotalEntities)},
			{"Relationships", strconv.Itoa(s.TotalRelationships)},
		},
	})
	md.PlainText("")

	switch {
	case len(s.Records) == 0:
		md.Note("No URLs were processed.")
	case s.Successful == 0:
		md.Cautionf("All %d URL(s) failed. Check proxy settings or try again later.", s.Failed)
	case s.Failed > 0:
		md.Warningf("%d of %d URL(s) failed and produced error records.", s.Failed, len(s.Records))
	default:
		md.Tip("Every URL was scraped successfully.")
	}
	md.PlainText("")
}

// writeRelationTypes writes a mermaid pie chart of relation types.
func (w *MarkdownWriter) writeRelationTypes(md *markdown.Markdown, s *model.RunSummary) {
	counts := s.RelationTypeCounts()
	if len(counts) == 0 {
		return
	}

	md.H2("Relationship Types")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Relationship Type Distribution"),
		piechart.WithShowData(true),
	)
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		chart.LabelAndIntValue(string(c.Type), uint64(c.Count)) //nolint:gosec // counts are non-negative
		rows = append(rows, []string{string(c.Type), strconv.Itoa(c.Count)})
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRecords writes one section per successful record.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, s *model.RunSummary) {
	md.H2("Records")
	md.PlainText("")

	if s.Successful == 0 {
		md.PlainText("No successful records.")
		md.PlainText("")
		return
	}

	for _, r := range s.Records {
		if r.Error {
			continue
		}

		heading := r.SourceURL
		if r.Title != "" {
			heading = truncateString(r.Title, 80)
		}
		md.PlainText("### " + heading)
		md.PlainText("")

		meta := []string{
			"URL: " + r.SourceURL,
			"Category: " + r.Category.String(),
			"Method: `" + r.ExtractionMethod + "`",
		}
		if r.Authoritative {
			meta = append(meta, "Source: structured API")
		}
		md.BulletList(meta...)
		md.PlainText("")

		w.writeEntities(md, r)
		w.writeRelationships(md, r)
	}
}

func (w *MarkdownWriter) writeEntities(md *markdown.Markdown, r *model.KnowledgeRecord) {
	if len(r.Entities) == 0 {
		md.PlainText("No entities found.")
		md.PlainText("")
		return
	}

	entities := r.Entities
	if w.maxEntities > 0 && len(entities) > w.maxEntities {
		entities = entities[:w.maxEntities]
	}
	rows := make([][]string, len(entities))
	for i, e := range entities {
		rows[i] = []string{e.Name, truncateString(e.Description, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Entity", "Description"},
		Rows:   rows,
	})
	if hidden := len(r.Entities) - len(entities); hidden > 0 {
		md.PlainTextf("*%d more entities omitted.*", hidden)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeRelationships(md *markdown.Markdown, r *model.KnowledgeRecord) {
	if len(r.Relationships) == 0 {
		return
	}

	rows := make([][]string, len(r.Relationships))
	for i, rel := range r.Relationships {
		rows[i] = []string{rel.Entity1.Name, string(rel.RelationType), rel.Entity2.Name}
	}
	md.Table(markdown.TableSet{
		Header: []string{"From", "Type", "To"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, rel := range r.Relationships {
		if rel.Description != "" {
			md.Details(rel.Entity1.Name+" → "+rel.Entity2.Name, rel.Description)
		}
	}
	md.PlainText("")
}

// writeFailures lists error records.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, s *model.RunSummary) {
	if s.Failed == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, 0, s.Failed)
	for _, r := range s.Records {
		if r.Error {
			rows = append(rows, []string{r.SourceURL, truncateString(r.Message, 80)})
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [kgscrape](https://github.com/nao1215/kgscrape)*")
}
