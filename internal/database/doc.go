// Package database provides SQLite-based run history for kgscrape.
//
// The HistoryDB stores:
//   - one row per run, holding the complete RunSummary as JSON
//   - one row per KnowledgeRecord, with the columns needed for lookups
//     (source URL, category, content hash, entity and relationship counts)
//
// Design decision: We use SQLite (via modernc.org/sqlite) because the
// history is a single local file, the driver is CGO-free so the binary
// cross-compiles, and WAL mode lets `kgscrape history` read while a scrape
// is writing.
package database
