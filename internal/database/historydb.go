package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/kgscrape/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "kgscrape.db"

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// HistoryDB stores run summaries and their records.
//
// Design decision: Summaries are stored whole as JSON so GetRun returns
// exactly what the run produced, while the records table duplicates the
// few columns we query on.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per scrape invocation
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		start_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		successful INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		total_entities INTEGER NOT NULL,
		total_relationships INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per knowledge record
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		source_url TEXT NOT NULL,
		category TEXT NOT NULL,
		extraction_method TEXT NOT NULL,
		error INTEGER NOT NULL,
		message TEXT,
		content_hash TEXT,
		entity_count INTEGER NOT NULL,
		relationship_count INTEGER NOT NULL,
		extracted_at TEXT NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_url ON records(source_url);
	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores summary and each of its records in one transaction.
// Saving a run ID twice returns ErrDuplicateRun.
func (h *HistoryDB) SaveRun(ctx context.Context, summary *model.RunSummary) error {
	if summary == nil || summary.RunID == "" {
		return ErrInvalidRun
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after Commit

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, summary.RunID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check run: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRun, summary.RunID)
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, start_url, started_at, finished_at, successful, failed,
		total_entities, total_relationships, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		summary.RunID,
		summary.StartURL,
		formatTime(summary.StartedAt),
		formatTime(summary.FinishedAt),
		summary.Successful,
		summary.Failed,
		summary.TotalEntities,
		summary.TotalRelationships,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO records (run_id, position, source_url, category, extraction_method, error,
		message, content_hash, entity_count, relationship_count, extracted_at, record_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range summary.Records {
		recordJSON, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to serialize record %s: %w", r.SourceURL, err)
		}
		_, err = stmt.ExecContext(ctx,
			summary.RunID,
			i,
			r.SourceURL,
			r.Category.String(),
			r.ExtractionMethod,
			r.Error,
			r.Message,
			r.ContentHash,
			len(r.Entities),
			len(r.Relationships),
			formatTime(r.ExtractedAt),
			string(recordJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.SourceURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunMetadata contains summary information about a stored run.
// This is used for listing history without loading the full summary.
type RunMetadata struct {
	RunID              string
	StartURL           string
	StartedAt          time.Time
	FinishedAt         time.Time
	Successful         int
	Failed             int
	TotalEntities      int
	TotalRelationships int
}

// Duration returns how long the run took.
func (m RunMetadata) Duration() time.Duration {
	return m.FinishedAt.Sub(m.StartedAt)
}

// ListRuns returns stored runs, newest first. limit <= 0 means no limit.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT run_id, start_url, started_at, finished_at, successful, failed,
		total_entities, total_relationships
	FROM runs
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var started, finished string
		if err := rows.Scan(
			&meta.RunID,
			&meta.StartURL,
			&started,
			&finished,
			&meta.Successful,
			&meta.Failed,
			&meta.TotalEntities,
			&meta.TotalRelationships,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun returns the stored summary for runID, or nil when there is none.
func (h *HistoryDB) GetRun(ctx context.Context, runID string) (*model.RunSummary, error) {
	var summaryJSON string
	err := h.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE run_id = ?`, runID).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var summary model.RunSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &summary, nil
}

// LatestRecordForURL returns the most recent successful record for url,
// or nil when the URL was never scraped successfully. The scrape command
// compares content hashes against it to report unchanged pages.
func (h *HistoryDB) LatestRecordForURL(ctx context.Context, url string) (*model.KnowledgeRecord, error) {
	query := `
	SELECT record_json FROM records
	WHERE source_url = ? AND error = 0
	ORDER BY extracted_at DESC, id DESC
	LIMIT 1
	`

	var recordJSON string
	err := h.db.QueryRowContext(ctx, query, url).Scan(&recordJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var record model.KnowledgeRecord
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return &record, nil
}

// CountRecords returns how many records are stored for runID.
func (h *HistoryDB) CountRecords(ctx context.Context, runID string) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats we may read back.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05", // SQLite default datetime format
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp tries each known format and returns zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
