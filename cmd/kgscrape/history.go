package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/kgscrape/internal/config"
)

// defaultHistoryLimit is the number of runs listed when --limit is not given.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List stored runs or show one of them",
		Long: `History reads the run database that scrape writes to.

Without arguments it lists the most recent runs. With a run ID it prints
that run's report in the same formats as scrape.

Examples:
  # List the last 20 runs
  kgscrape history

  # Show one run as Markdown
  kgscrape history -m 5f1c2a9e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Number of runs to list (0: all)")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run as JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run as Markdown")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 0 {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		return listRuns(ctx, cmd.OutOrStdout(), dbDir, limit)
	}

	jsonFormat, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownFormat, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose = false
	}

	db, err := openHistory(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", args[0], err)
	}
	if summary == nil {
		return fmt.Errorf("run not found: %s", args[0])
	}

	_, err = selectReportWriter(jsonFormat, markdownFormat, verbose, cmd.OutOrStdout()).Write(summary)
	return err
}

// listRuns prints a table of stored runs, newest first.
func listRuns(ctx context.Context, w io.Writer, dbDir string, limit int) error {
	db, err := openHistory(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs stored yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tDURATION\tOK\tFAILED\tENTITIES\tRELATIONSHIPS\tSTART URL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Millisecond),
			r.Successful,
			r.Failed,
			r.TotalEntities,
			r.TotalRelationships,
			r.StartURL,
		)
	}
	return tw.Flush()
}
