// Package report renders run results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: The record array (or the whole summary) as JSON
//   - FullJSONWriter: The summary wrapped with the tool version
//   - MarkdownWriter: A shareable Markdown report with a relation-type chart
//
// Design decision: We separate report writing from the data structures
// (which are in the model package). This allows adding new output formats
// without modifying the records themselves.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
