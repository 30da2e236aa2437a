package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/kgscrape/internal/config"
	"github.com/nao1215/kgscrape/internal/cypher"
	"github.com/nao1215/kgscrape/internal/database"
	"github.com/nao1215/kgscrape/internal/model"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [records.json...]",
		Short: "Convert knowledge records into Cypher statements",
		Long: `Export reads knowledge records and prints Cypher statements that build
the graph in Neo4j: one MERGE per distinct entity name and one relationship
per extracted link. Error records are skipped.

Input is either JSON files written by "scrape --output" or "scrape --summary",
or a run stored in the history database.

Examples:
  # Convert a records file
  kgscrape export records.json > graph.cypher

  # Convert several files and wipe the graph first
  kgscrape export --clear a.json b.json -o graph.cypher

  # Convert a stored run
  kgscrape export --run 5f1c2a9e-...`,
		Args: cobra.ArbitraryArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Write Cypher to this file instead of stdout")
	cmd.Flags().Bool("clear", false,
		"Start with a statement that deletes every existing node")
	cmd.Flags().String("run", "",
		"Export a run from the history database instead of files")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	runID, err := cmd.Flags().GetString("run")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	clearExisting, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	var records []*model.KnowledgeRecord
	switch {
	case runID != "" && len(args) > 0:
		return errors.New("--run cannot be combined with input files")
	case runID != "":
		records, err = loadRunRecords(cmd.Context(), dbDir, runID)
	case len(args) > 0:
		records, err = cypher.ReadRecords(args)
	default:
		return errors.New("no input (specify record files or --run)")
	}
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := createOutputFile(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	stats, err := cypher.NewGenerator(cypher.WithClearExisting(clearExisting)).Write(out, records)
	if err != nil {
		return fmt.Errorf("failed to write cypher: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d nodes and %d relationships from %d records (%d error records skipped)\n",
		stats.Nodes, stats.Edges, stats.Records, stats.Skipped)
	return nil
}

// loadRunRecords reads the records of a stored run.
func loadRunRecords(ctx context.Context, dbDir, runID string) ([]*model.KnowledgeRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openHistory(dbDir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	summary, err := db.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if summary == nil {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return summary.Records, nil
}

// openHistory opens an existing history database without creating one.
func openHistory(dbDir string) (*database.HistoryDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(dbDir, opts)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			return nil, fmt.Errorf("no history database in %s (run scrape first)", dbDir)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
