package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/kgscrape/internal/classifier"
	"github.com/nao1215/kgscrape/internal/config"
	"github.com/nao1215/kgscrape/internal/crawler"
	"github.com/nao1215/kgscrape/internal/database"
	"github.com/nao1215/kgscrape/internal/disguise"
	"github.com/nao1215/kgscrape/internal/fetch"
	"github.com/nao1215/kgscrape/internal/log"
	"github.com/nao1215/kgscrape/internal/metrics"
	"github.com/nao1215/kgscrape/internal/model"
	"github.com/nao1215/kgscrape/internal/pipeline"
	"github.com/nao1215/kgscrape/internal/proxy"
	"github.com/nao1215/kgscrape/internal/random"
	"github.com/nao1215/kgscrape/internal/report"
	"github.com/nao1215/kgscrape/internal/strategy"
	"github.com/nao1215/kgscrape/internal/tor"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Fetch pages and extract knowledge records",
		Long: `Scrape fetches a start URL (and, in discover mode, the same-host pages it
links to) and turns every page into a knowledge record.

Every URL produces exactly one record. A URL that could not be fetched
within the attempt budget becomes an error record; the run continues.

The start URL may also come from START_URL or KGSCRAPE_START_URL. Every
flag can be set through KGSCRAPE_<FLAG>, e.g. KGSCRAPE_MAX_PAGES=20.
A RapidAPI key (RAPIDAPI_KEY) enables the property API for real-estate URLs.

Examples:
  # Extract one page, direct connection
  kgscrape scrape --no-proxy https://example.com/about

  # Follow links from the start page, up to 20 pages
  kgscrape scrape -x discover -p 20 https://example.com

  # Write records for the graph importer and a Markdown report
  kgscrape scrape -o out/records.json -m https://example.com

  # Route requests through an embedded Tor daemon as well as public proxies
  kgscrape scrape --tor https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScrapeCmd,
	}

	// Run scope
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of URLs to process in discover mode")
	cmd.Flags().StringP("extract-type", "x", string(config.DefaultExtractType),
		"Extraction mode: single or discover")
	cmd.Flags().IntP("max-attempts", "a", config.DefaultMaxAttempts,
		"Fetch attempts per URL")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of URLs processed at once")
	cmd.Flags().Duration("backoff-min", config.DefaultBackoffMin,
		"Lower bound of the sleep before a retry")
	cmd.Flags().Duration("backoff-max", config.DefaultBackoffMax,
		"Upper bound of the sleep before a retry")
	cmd.Flags().Duration("delay-min", config.DefaultPolitenessMin,
		"Lower bound of the delay between two URLs")
	cmd.Flags().Duration("delay-max", config.DefaultPolitenessMax,
		"Upper bound of the delay between two URLs")
	cmd.Flags().Uint64("seed", 0,
		"Seed for backoff, delays and disguise selection (0: time based)")

	// Connection
	cmd.Flags().StringSlice("proxy-source", nil,
		"Proxy list URL (repeatable; replaces the built-in lists)")
	cmd.Flags().StringSlice("proxy", nil,
		"Static proxy host:port or socks5://host:port (repeatable)")
	cmd.Flags().Bool("no-proxy", false,
		"Disable the proxy pool and connect directly")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and add it to the proxy pool")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().Bool("strict-tls", false,
		"Verify TLS certificates of target sites")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .kgscrape in current or home directory)")

	// Output
	cmd.Flags().StringP("output", "o", "",
		"Write the JSON array of records to this file")
	cmd.Flags().String("summary", "",
		"Write the JSON run summary to this file")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics in textfile-collector format to this file")

	// History
	cmd.Flags().Bool("no-db", false,
		"Do not store the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogJSON)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScrape(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from flags, environment and the config file.
// The config file is applied first so that flags override it.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}

	cfg := config.NewConfig()

	cfg.ConfigFilePath = v.GetString("config")
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.StartURL = v.GetString("start-url")
	if len(args) > 0 {
		cfg.StartURL = args[0]
	}

	cfg.MaxPages = v.GetInt("max-pages")
	cfg.ExtractType, err = config.ParseExtractType(v.GetString("extract-type"))
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	cfg.MaxAttempts = v.GetInt("max-attempts")
	cfg.Concurrency = v.GetInt("concurrency")
	cfg.BackoffMin = v.GetDuration("backoff-min")
	cfg.BackoffMax = v.GetDuration("backoff-max")
	cfg.PolitenessMin = v.GetDuration("delay-min")
	cfg.PolitenessMax = v.GetDuration("delay-max")
	cfg.Seed = v.GetUint64("seed")

	if sources := v.GetStringSlice("proxy-source"); len(sources) > 0 {
		cfg.ProxySources = sources
	}
	cfg.StaticProxies = append(cfg.StaticProxies, v.GetStringSlice("proxy")...)
	cfg.UseProxies = !v.GetBool("no-proxy")
	cfg.UseTor = v.GetBool("tor")
	cfg.TorStartupTimeout = v.GetDuration("tor-timeout")
	cfg.InsecureTLS = !v.GetBool("strict-tls")
	cfg.RapidAPIKey = v.GetString("rapidapi-key")

	cfg.OutputFile = v.GetString("output")
	cfg.SummaryFile = v.GetString("summary")
	cfg.JSONReport = v.GetBool("json")
	cfg.MarkdownReport = v.GetBool("markdown")
	cfg.MetricsFile = v.GetString("metrics-file")

	cfg.SaveToDB = !v.GetBool("no-db")
	if dir := v.GetString("db-dir"); dir != "" {
		cfg.DBDir = dir
	}

	cfg.Verbose = v.GetBool("verbose")
	cfg.LogJSON = v.GetBool("log-json")

	return cfg, nil
}

// runScrape executes one run. Fetch failures end up as error records;
// only output files that cannot be written make it fail.
func runScrape(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	outputs, err := openOutputs(cfg)
	if err != nil {
		return err
	}
	defer outputs.Close()

	rnd := random.New(cfg.Seed)
	m := metrics.New()

	daemon := startTor(ctx, cfg, logger, stderr)
	if daemon != nil {
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := daemon.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
	}

	pool, err := buildPool(ctx, cfg, daemon, logger)
	if err != nil {
		return err
	}
	if cfg.UseProxies {
		fmt.Fprintf(stderr, "Proxy pool: %d candidates\n", pool.Len())
	}

	engine, err := buildEngine(cfg, pool, rnd, m, logger)
	if err != nil {
		return err
	}

	jobs := buildJobs(ctx, cfg, engine, logger)

	var (
		mu   sync.Mutex
		done int
	)
	runner := pipeline.NewRunner(
		func() *pipeline.Pipeline {
			return pipeline.NewDefault(engine, cfg.MaxAttempts, logger)
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithPoliteness(cfg.PolitenessMin, cfg.PolitenessMax),
		pipeline.WithRandom(rnd),
		pipeline.WithRecordHook(func(r *model.KnowledgeRecord) {
			m.ObserveRecord(r)
			mu.Lock()
			defer mu.Unlock()
			done++
			printProgress(stderr, done, len(jobs), r)
		}),
		pipeline.WithRunnerLogger(logger),
	)

	summary := runner.Run(ctx, cfg.StartURL, jobs)

	if err := writeReports(cfg, outputs, summary, stdout); err != nil {
		return err
	}

	if cfg.SaveToDB {
		// The run is stored even after an interrupt.
		saveRun(context.WithoutCancel(ctx), cfg.DBDir, summary, logger)
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	return nil
}

// scrapeOutputs holds the files opened before the run starts.
type scrapeOutputs struct {
	records *os.File
	summary *os.File
}

// openOutputs creates the output files up front, so an unwritable path
// fails the command before any network activity.
func openOutputs(cfg *config.Config) (*scrapeOutputs, error) {
	outputs := &scrapeOutputs{}

	var err error
	if cfg.OutputFile != "" {
		if outputs.records, err = createOutputFile(cfg.OutputFile); err != nil {
			return nil, err
		}
	}
	if cfg.SummaryFile != "" {
		if outputs.summary, err = createOutputFile(cfg.SummaryFile); err != nil {
			outputs.Close()
			return nil, err
		}
	}
	return outputs, nil
}

// Close closes every opened file.
func (o *scrapeOutputs) Close() {
	for _, f := range []*os.File{o.records, o.summary} {
		if f != nil {
			_ = f.Close()
		}
	}
}

// createOutputFile creates path and its parent directories.
func createOutputFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// startTor starts the embedded Tor daemon when requested. A daemon that
// fails to bootstrap is logged and skipped; the run continues without it.
func startTor(ctx context.Context, cfg *config.Config, logger *slog.Logger, stderr io.Writer) *tor.EmbeddedTor {
	if !cfg.UseTor {
		return nil
	}
	if !cfg.UseProxies {
		logger.Warn("--tor is ignored together with --no-proxy")
		return nil
	}

	fmt.Fprintln(stderr, "Starting embedded Tor daemon (this may take a while)...")
	daemon := tor.NewEmbeddedTor(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
		tor.WithLogger(logger),
	)
	if err := daemon.Start(ctx); err != nil {
		logger.Warn("embedded Tor failed to start, continuing without it", "error", err)
		return nil
	}
	fmt.Fprintf(stderr, "Tor daemon ready at %s\n", daemon.SocksAddr())
	return daemon
}

// buildPool loads proxy candidates from every configured source, in
// order: Tor, static proxies, proxy lists.
func buildPool(ctx context.Context, cfg *config.Config, daemon *tor.EmbeddedTor, logger *slog.Logger) (*proxy.Pool, error) {
	if !cfg.UseProxies {
		return proxy.NewPool(nil), nil
	}

	sources := make([]proxy.Source, 0, len(cfg.ProxySources)+2)
	if daemon != nil {
		sources = append(sources, proxy.NewTorSource(daemon))
	}
	if len(cfg.StaticProxies) > 0 {
		static, err := proxy.NewStaticSource(cfg.StaticProxies)
		if err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
		sources = append(sources, static)
	}

	client := &http.Client{Timeout: config.DefaultSourceTimeout}
	for _, u := range cfg.ProxySources {
		sources = append(sources, proxy.NewListSource(u, client))
	}

	return proxy.Load(ctx, sources, proxy.WithLogger(logger)), nil
}

// buildEngine wires the fetch engine from cfg.
func buildEngine(cfg *config.Config, pool *proxy.Pool, rnd *random.Source, m *metrics.Metrics, logger *slog.Logger) (*fetch.Engine, error) {
	file := cfg.File
	if file == nil {
		file = config.NewFile()
	}

	var rules []classifier.Rule
	rules = append(rules, classifier.RulesFromKeywords(model.CategoryRealEstate, file.Classifier.RealEstate)...)
	rules = append(rules, classifier.RulesFromKeywords(model.CategoryProfessional, file.Classifier.Professional)...)
	rules = append(rules, classifier.RulesFromKeywords(model.CategoryProduct, file.Classifier.Product)...)

	prober := proxy.NewProber(
		proxy.WithProbeURL(cfg.ProbeURL),
		proxy.WithProbeTimeout(cfg.ProbeTimeout),
		proxy.WithProbeInsecureTLS(cfg.InsecureTLS),
	)

	registry := strategy.NewRegistry(
		strategy.WithRapidAPIKey(cfg.RapidAPIKey),
		strategy.WithRegistryMaxBodySize(cfg.MaxBodySize),
		strategy.WithRegistryLogger(logger),
	)

	engine, err := fetch.NewEngine(
		fetch.WithPool(pool),
		fetch.WithProber(prober),
		fetch.WithDisguises(disguise.NewGenerator(rnd, disguise.WithUserAgents(file.UserAgents))),
		fetch.WithClassifier(classifier.New(rules...)),
		fetch.WithRegistry(registry),
		fetch.WithRandom(rnd),
		fetch.WithBackoff(cfg.BackoffMin, cfg.BackoffMax),
		fetch.WithInsecureTLS(cfg.InsecureTLS),
		fetch.WithSiteSettings(file.GetSiteConfig),
		fetch.WithObserver(m.ObserveAttempt),
		fetch.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch engine: %w", err)
	}
	return engine, nil
}

// buildJobs returns the work list: the start URL alone, or the start URL
// followed by the links discovered on it.
func buildJobs(ctx context.Context, cfg *config.Config, f crawler.Fetcher, logger *slog.Logger) []*pipeline.Job {
	if cfg.ExtractType != config.ExtractDiscover {
		return pipeline.URLJobs(cfg.StartURL)
	}

	var site config.SiteConfig
	if u, err := url.Parse(cfg.StartURL); err == nil && cfg.File != nil {
		site = cfg.File.GetSiteConfig(u.Hostname())
	}

	spider := crawler.NewSpider(f,
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxAttempts(cfg.MaxAttempts),
		crawler.WithIgnorePatterns(site.IgnorePatterns),
		crawler.WithFollowPatterns(site.FollowPatterns),
		crawler.WithLogger(logger),
	)
	return pipeline.DiscoveryJobs(spider.Discover(ctx, cfg.StartURL))
}

// printProgress writes one line per finished URL.
func printProgress(w io.Writer, done, total int, r *model.KnowledgeRecord) {
	if r.Error {
		fmt.Fprintf(w, "[%d/%d] FAIL %s: %s\n", done, total, r.SourceURL, r.Message)
		return
	}
	fmt.Fprintf(w, "[%d/%d] ok   %s (%d entities, %d relationships)\n",
		done, total, r.SourceURL, len(r.Entities), len(r.Relationships))
}

// writeReports writes the record file, the summary file and the report
// printed on stdout.
func writeReports(cfg *config.Config, outputs *scrapeOutputs, summary *model.RunSummary, stdout io.Writer) error {
	if outputs.records != nil {
		if _, err := report.NewJSONWriter(outputs.records, report.WithPrettyPrint()).Write(summary); err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
	}

	if outputs.summary != nil {
		if _, err := report.NewFullJSONWriter(outputs.summary, getVersion(), report.WithPrettyPrint()).Write(summary); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if _, err := selectReportWriter(cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose, stdout).Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// selectReportWriter picks the stdout report format.
func selectReportWriter(jsonFormat, markdownFormat, verbose bool, w io.Writer) report.Writer {
	switch {
	case jsonFormat:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case markdownFormat:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(verbose))
	}
}

// saveRun stores summary in the history database. Pages whose content
// hash matches the previous stored record are logged as unchanged.
// Database problems are logged; they never fail a finished run.
func saveRun(ctx context.Context, dbDir string, summary *model.RunSummary, logger *slog.Logger) {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		logger.Error("failed to open history database", "dir", dbDir, "error", err)
		return
	}
	defer db.Close()

	for _, r := range summary.Records {
		if r.Error || r.ContentHash == "" {
			continue
		}
		prev, err := db.LatestRecordForURL(ctx, r.SourceURL)
		if err != nil {
			logger.Warn("failed to look up previous record", "url", r.SourceURL, "error", err)
			continue
		}
		if prev != nil && prev.ContentHash == r.ContentHash {
			logger.Info("content unchanged since last run", "url", r.SourceURL)
		}
	}

	if err := db.SaveRun(ctx, summary); err != nil {
		if errors.Is(err, database.ErrInvalidRun) {
			logger.Warn("run not stored", "error", err)
			return
		}
		logger.Error("failed to save run", "error", err)
		return
	}
	logger.Debug("run stored", "run_id", summary.RunID, "db", db.Path())
}
