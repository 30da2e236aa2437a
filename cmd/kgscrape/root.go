package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for kgscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kgscrape",
		Short: "Extract a knowledge graph from web pages",
		Long: `kgscrape fetches web pages and turns them into knowledge records:
named entities plus typed relationships between entities that appear in the
same sentence. No language model is involved; extraction is pattern based
and tuned per site category (real estate, professional, product, generic).

Requests rotate through public proxies and browser-like headers and are
retried with a jittered backoff. Every URL ends up as a record, failed or not.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
