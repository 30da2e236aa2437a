package main

import (
	"strings"
	"testing"

	"github.com/nao1215/kgscrape/internal/database"
)

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "history", "--db-dir", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "no history database") {
			t.Errorf("error = %v, want no history database", err)
		}
	})

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := database.Open(dir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}

		out, _, err := executeRoot(t, "history", "--db-dir", dir)
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		if !strings.Contains(out, "No runs stored yet.") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := database.Open(dir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}

		_, _, err = executeRoot(t, "history", "--db-dir", dir, "no-such-run")
		if err == nil || !strings.Contains(err.Error(), "run not found") {
			t.Errorf("error = %v, want run not found", err)
		}
	})

	t.Run("json and markdown are exclusive", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeRoot(t, "history", "--db-dir", t.TempDir(), "-j", "-m", "abc")
		if err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})
}
