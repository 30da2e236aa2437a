package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/kgscrape/internal/config"
	"github.com/nao1215/kgscrape/internal/model"
)

// parseScrapeFlags builds a Config the way runScrapeCmd does.
func parseScrapeFlags(t *testing.T, argv ...string) (*config.Config, error) {
	t.Helper()

	cmd := NewScrapeCmd()
	if err := cmd.ParseFlags(argv); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	return buildConfig(cmd, cmd.Flags().Args())
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := parseScrapeFlags(t, "https://example.com")
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.StartURL != "https://example.com" {
			t.Errorf("StartURL = %q", cfg.StartURL)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, config.DefaultMaxPages)
		}
		if cfg.ExtractType != config.ExtractSingle {
			t.Errorf("ExtractType = %q, want single", cfg.ExtractType)
		}
		if cfg.MaxAttempts != config.DefaultMaxAttempts {
			t.Errorf("MaxAttempts = %d, want %d", cfg.MaxAttempts, config.DefaultMaxAttempts)
		}
		if !cfg.UseProxies || !cfg.InsecureTLS || !cfg.SaveToDB {
			t.Errorf("UseProxies=%v InsecureTLS=%v SaveToDB=%v, want all true",
				cfg.UseProxies, cfg.InsecureTLS, cfg.SaveToDB)
		}
		if !slices.Equal(cfg.ProxySources, config.DefaultProxySources) {
			t.Errorf("ProxySources = %v, want built-in lists", cfg.ProxySources)
		}
		if cfg.PolitenessMin != config.DefaultPolitenessMin || cfg.PolitenessMax != config.DefaultPolitenessMax {
			t.Errorf("politeness = [%v, %v]", cfg.PolitenessMin, cfg.PolitenessMax)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("flags", func(t *testing.T) {
		t.Parallel()

		cfg, err := parseScrapeFlags(t,
			"-p", "20", "-x", "discover", "-a", "5", "--concurrency", "2",
			"--no-proxy", "--strict-tls", "--no-db", "--seed", "42",
			"--proxy", "10.0.0.1:8080", "--proxy", "socks5://127.0.0.1:9050",
			"--proxy-source", "http://lists.example/a.txt",
			"--delay-min", "1s", "--delay-max", "2s",
			"-o", "out.json", "--summary", "summary.json", "-m",
			"https://example.com/start",
		)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.MaxPages != 20 || cfg.MaxAttempts != 5 || cfg.Concurrency != 2 {
			t.Errorf("MaxPages=%d MaxAttempts=%d Concurrency=%d", cfg.MaxPages, cfg.MaxAttempts, cfg.Concurrency)
		}
		if cfg.ExtractType != config.ExtractDiscover {
			t.Errorf("ExtractType = %q, want discover", cfg.ExtractType)
		}
		if cfg.UseProxies || cfg.InsecureTLS || cfg.SaveToDB {
			t.Errorf("UseProxies=%v InsecureTLS=%v SaveToDB=%v, want all false",
				cfg.UseProxies, cfg.InsecureTLS, cfg.SaveToDB)
		}
		if cfg.Seed != 42 {
			t.Errorf("Seed = %d, want 42", cfg.Seed)
		}
		if want := []string{"10.0.0.1:8080", "socks5://127.0.0.1:9050"}; !slices.Equal(cfg.StaticProxies, want) {
			t.Errorf("StaticProxies = %v, want %v", cfg.StaticProxies, want)
		}
		if want := []string{"http://lists.example/a.txt"}; !slices.Equal(cfg.ProxySources, want) {
			t.Errorf("ProxySources = %v, want %v", cfg.ProxySources, want)
		}
		if cfg.PolitenessMin != time.Second || cfg.PolitenessMax != 2*time.Second {
			t.Errorf("politeness = [%v, %v]", cfg.PolitenessMin, cfg.PolitenessMax)
		}
		if cfg.OutputFile != "out.json" || cfg.SummaryFile != "summary.json" || !cfg.MarkdownReport {
			t.Errorf("OutputFile=%q SummaryFile=%q MarkdownReport=%v", cfg.OutputFile, cfg.SummaryFile, cfg.MarkdownReport)
		}
	})

	t.Run("invalid extract type", func(t *testing.T) {
		t.Parallel()

		_, err := parseScrapeFlags(t, "-x", "crawl", "https://example.com")
		if !errors.Is(err, config.ErrInvalidExtractType) {
			t.Errorf("buildConfig() error = %v, want ErrInvalidExtractType", err)
		}
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "kgscrape.yaml")
		content := `proxies:
  sources:
    - http://lists.example/file.txt
  static:
    - 1.2.3.4:80
  probeURL: http://probe.example/ip
userAgents:
  - TestAgent/1.0
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := parseScrapeFlags(t, "-c", path, "--proxy", "5.6.7.8:80", "https://example.com")
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if want := []string{"1.2.3.4:80", "5.6.7.8:80"}; !slices.Equal(cfg.StaticProxies, want) {
			t.Errorf("StaticProxies = %v, want %v", cfg.StaticProxies, want)
		}
		if want := []string{"http://lists.example/file.txt"}; !slices.Equal(cfg.ProxySources, want) {
			t.Errorf("ProxySources = %v, want %v", cfg.ProxySources, want)
		}
		if cfg.ProbeURL != "http://probe.example/ip" {
			t.Errorf("ProbeURL = %q", cfg.ProbeURL)
		}
		if len(cfg.File.UserAgents) != 1 {
			t.Errorf("File.UserAgents = %v", cfg.File.UserAgents)
		}
	})

	t.Run("proxy-source flag overrides config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "kgscrape.yaml")
		content := "proxies:\n  sources:\n    - http://lists.example/file.txt\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := parseScrapeFlags(t, "-c", path, "--proxy-source", "http://lists.example/flag.txt", "https://example.com")
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if want := []string{"http://lists.example/flag.txt"}; !slices.Equal(cfg.ProxySources, want) {
			t.Errorf("ProxySources = %v, want %v", cfg.ProxySources, want)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		_, err := parseScrapeFlags(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "https://example.com")
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("buildConfig() error = %v, want configuration file not found", err)
		}
	})
}

func TestBuildConfigEnvironment(t *testing.T) {
	t.Setenv("START_URL", "https://env.example.com")
	t.Setenv("MAX_PAGES", "7")
	t.Setenv("EXTRACT_TYPE", "discover")
	t.Setenv("RAPIDAPI_KEY", "test-key")
	t.Setenv("KGSCRAPE_MAX_ATTEMPTS", "4")
	t.Setenv("KGSCRAPE_NO_DB", "true")

	cfg, err := parseScrapeFlags(t)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.StartURL != "https://env.example.com" {
		t.Errorf("StartURL = %q", cfg.StartURL)
	}
	if cfg.MaxPages != 7 {
		t.Errorf("MaxPages = %d, want 7", cfg.MaxPages)
	}
	if cfg.ExtractType != config.ExtractDiscover {
		t.Errorf("ExtractType = %q, want discover", cfg.ExtractType)
	}
	if cfg.RapidAPIKey != "test-key" {
		t.Errorf("RapidAPIKey = %q", cfg.RapidAPIKey)
	}
	if cfg.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", cfg.MaxAttempts)
	}
	if cfg.SaveToDB {
		t.Error("SaveToDB = true, want false from KGSCRAPE_NO_DB")
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	t.Setenv("START_URL", "https://alias.example.com")
	t.Setenv("KGSCRAPE_START_URL", "https://prefixed.example.com")
	t.Setenv("KGSCRAPE_MAX_PAGES", "9")

	t.Run("prefixed variable wins over alias", func(t *testing.T) {
		cfg, err := parseScrapeFlags(t)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.StartURL != "https://prefixed.example.com" {
			t.Errorf("StartURL = %q", cfg.StartURL)
		}
		if cfg.MaxPages != 9 {
			t.Errorf("MaxPages = %d, want 9", cfg.MaxPages)
		}
	})

	t.Run("flags and arguments win over environment", func(t *testing.T) {
		cfg, err := parseScrapeFlags(t, "-p", "2", "https://arg.example.com")
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.StartURL != "https://arg.example.com" {
			t.Errorf("StartURL = %q", cfg.StartURL)
		}
		if cfg.MaxPages != 2 {
			t.Errorf("MaxPages = %d, want 2", cfg.MaxPages)
		}
	})
}

const testPage = `<!DOCTYPE html>
<html>
<body>
<main>
<p>Acme Corp is located near Central Park in the city.</p>
%s
</main>
</body>
</html>`

// newTestSite serves a start page linking to /a and /b, plus a 404 at /gone.
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		links := ""
		if r.URL.Path == "/" {
			links = `<a href="/a">A</a> <a href="/b">B</a>`
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, testPage, links)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// executeRoot runs the root command with argv and returns stdout and stderr.
func executeRoot(t *testing.T, argv ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(argv)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readRecords(t *testing.T, path string) []model.KnowledgeRecord {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read records: %v", err)
	}
	var records []model.KnowledgeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("records file is not a JSON array: %v", err)
	}
	return records
}

func TestScrapeSinglePage(t *testing.T) {
	srv := newTestSite(t)
	dir := t.TempDir()
	recordsPath := filepath.Join(dir, "out", "records.json")
	summaryPath := filepath.Join(dir, "summary.json")
	metricsPath := filepath.Join(dir, "kgscrape.prom")
	dbDir := filepath.Join(dir, "db")

	stdout, stderr, err := executeRoot(t, "scrape",
		"--no-proxy", "-a", "1", "--seed", "1",
		"-o", recordsPath, "--summary", summaryPath,
		"--metrics-file", metricsPath, "--db-dir", dbDir,
		srv.URL+"/")
	if err != nil {
		t.Fatalf("scrape error = %v\nstderr: %s", err, stderr)
	}

	records := readRecords(t, recordsPath)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Error {
		t.Fatalf("record is an error record: %s", r.Message)
	}
	if r.SourceURL != srv.URL+"/" {
		t.Errorf("SourceURL = %q", r.SourceURL)
	}
	if !strings.HasPrefix(r.ExtractionMethod, "direct_") {
		t.Errorf("ExtractionMethod = %q, want direct_ prefix", r.ExtractionMethod)
	}
	var names []string
	for _, e := range r.Entities {
		names = append(names, e.Name)
	}
	if !slices.Contains(names, "Acme Corp") {
		t.Errorf("entities = %v, want Acme Corp", names)
	}

	if !strings.Contains(stdout, "KNOWLEDGE GRAPH SCRAPE") {
		t.Errorf("stdout missing report header:\n%s", stdout)
	}
	if !strings.Contains(stderr, "[1/1] ok") {
		t.Errorf("stderr missing progress line:\n%s", stderr)
	}

	metricsData, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	if !strings.Contains(string(metricsData), "kgscrape_records_total") {
		t.Errorf("metrics file missing kgscrape_records_total:\n%s", metricsData)
	}

	summaryData, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}
	var wrapped struct {
		Version string            `json:"version"`
		Summary *model.RunSummary `json:"summary"`
	}
	if err := json.Unmarshal(summaryData, &wrapped); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if wrapped.Summary == nil || wrapped.Summary.Successful != 1 || wrapped.Summary.RunID == "" {
		t.Fatalf("summary = %+v", wrapped.Summary)
	}
	runID := wrapped.Summary.RunID

	t.Run("history lists the run", func(t *testing.T) {
		out, _, err := executeRoot(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		if !strings.Contains(out, runID) || !strings.Contains(out, srv.URL) {
			t.Errorf("history output missing run:\n%s", out)
		}
	})

	t.Run("history shows the run", func(t *testing.T) {
		out, _, err := executeRoot(t, "history", "--db-dir", dbDir, "-m", runID)
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		if !strings.Contains(out, "Acme Corp") {
			t.Errorf("markdown report missing entity:\n%s", out)
		}
	})

	t.Run("export the stored run", func(t *testing.T) {
		out, _, err := executeRoot(t, "export", "--db-dir", dbDir, "--run", runID)
		if err != nil {
			t.Fatalf("export error = %v", err)
		}
		if !strings.Contains(out, `MERGE (e:Entity {name: "Acme Corp"})`) {
			t.Errorf("cypher missing entity:\n%s", out)
		}
	})

	t.Run("export the records file", func(t *testing.T) {
		out, _, err := executeRoot(t, "export", recordsPath)
		if err != nil {
			t.Fatalf("export error = %v", err)
		}
		if !strings.Contains(out, `MERGE (e:Entity {name: "Acme Corp"})`) {
			t.Errorf("cypher missing entity:\n%s", out)
		}
	})
}

func TestScrapeDiscover(t *testing.T) {
	srv := newTestSite(t)
	recordsPath := filepath.Join(t.TempDir(), "records.json")

	_, stderr, err := executeRoot(t, "scrape",
		"--no-proxy", "--no-db", "-a", "1", "--seed", "1",
		"-x", "discover", "-p", "3",
		"--delay-min", "0s", "--delay-max", "0s",
		"-o", recordsPath, "--json",
		srv.URL+"/")
	if err != nil {
		t.Fatalf("scrape error = %v\nstderr: %s", err, stderr)
	}

	records := readRecords(t, recordsPath)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	want := []string{srv.URL + "/", srv.URL + "/a", srv.URL + "/b"}
	for i, r := range records {
		if r.SourceURL != want[i] {
			t.Errorf("records[%d].SourceURL = %q, want %q", i, r.SourceURL, want[i])
		}
		if r.Error {
			t.Errorf("records[%d] is an error record: %s", i, r.Message)
		}
	}
}

func TestScrapeFailedURLStillSucceeds(t *testing.T) {
	srv := newTestSite(t)
	recordsPath := filepath.Join(t.TempDir(), "records.json")

	_, stderr, err := executeRoot(t, "scrape",
		"--no-proxy", "--no-db", "-a", "1", "-o", recordsPath, srv.URL+"/gone")
	if err != nil {
		t.Fatalf("scrape error = %v, want nil for a failed URL", err)
	}

	records := readRecords(t, recordsPath)
	if len(records) != 1 || !records[0].Error {
		t.Fatalf("records = %+v, want one error record", records)
	}
	if records[0].ExtractionMethod != model.MethodFailed {
		t.Errorf("ExtractionMethod = %q, want %q", records[0].ExtractionMethod, model.MethodFailed)
	}
	if len(records[0].Entities) != 0 || len(records[0].Relationships) != 0 {
		t.Error("error record carries entities or relationships")
	}
	if !strings.Contains(stderr, "[1/1] FAIL") {
		t.Errorf("stderr missing failure line:\n%s", stderr)
	}
}

func TestScrapeErrors(t *testing.T) {
	t.Run("missing start URL", func(t *testing.T) {
		t.Setenv("START_URL", "")
		t.Setenv("KGSCRAPE_START_URL", "")

		_, _, err := executeRoot(t, "scrape", "--no-proxy", "--no-db")
		if !errors.Is(err, config.ErrNoStartURL) {
			t.Errorf("error = %v, want ErrNoStartURL", err)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		_, _, err := executeRoot(t, "scrape", "--no-proxy", "--no-db", "-j", "-m", "https://example.com")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("error = %v, want ErrConflictingReportFormats", err)
		}
	})

	t.Run("unwritable output file", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}

		_, _, err := executeRoot(t, "scrape", "--no-proxy", "--no-db",
			"-o", filepath.Join(blocker, "records.json"), "https://example.com")
		if err == nil {
			t.Fatal("expected error for unwritable output path")
		}
	})
}
