package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// ExtractType controls whether link discovery runs before extraction.
type ExtractType string

const (
	// ExtractSingle processes the start URL only.
	ExtractSingle ExtractType = "single"

	// ExtractDiscover collects same-host links from the start page first and
	// processes up to MaxPages URLs, the start URL included.
	ExtractDiscover ExtractType = "discover"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "kgscrape"

	// DefaultMaxPages bounds how many URLs one run visits.
	DefaultMaxPages = 10

	// DefaultExtractType processes only the start URL.
	DefaultExtractType = ExtractSingle

	// DefaultMaxAttempts is the fixed per-URL attempt budget.
	// The budget does not adapt to the error type.
	DefaultMaxAttempts = 3

	// DefaultBackoffMin and DefaultBackoffMax bound the jittered sleep
	// before every retry. The sleep is drawn uniformly from [min, max).
	DefaultBackoffMin = 3 * time.Second
	DefaultBackoffMax = 8 * time.Second

	// DefaultPolitenessMin and DefaultPolitenessMax bound the randomized
	// delay between two URLs of the same run. This delay keeps a run from
	// hammering a single host and must not be disabled by default.
	DefaultPolitenessMin = 3 * time.Second
	DefaultPolitenessMax = 7 * time.Second

	// DefaultProbeURL is the echo endpoint used to check a proxy before use.
	DefaultProbeURL = "https://httpbin.org/ip"

	// DefaultProbeTimeout keeps the proxy probe short so a dead proxy costs
	// little compared with a full target request.
	DefaultProbeTimeout = 5 * time.Second

	// DefaultSourceTimeout bounds the download of one proxy list.
	DefaultSourceTimeout = 10 * time.Second

	// DefaultConcurrency processes URLs one at a time.
	DefaultConcurrency = 1

	// DefaultMaxBodySize limits the response body size read per request.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// DefaultProxySources are public plain-text proxy lists, one IP:PORT per line.
// They are unreliable by nature; a source that fails to load is skipped.
var DefaultProxySources = []string{
	"https://api.proxyscrape.com/v2/?request=displayproxies&protocol=http&timeout=10000&country=all",
	"https://raw.githubusercontent.com/TheSpeedX/PROXY-List/master/http.txt",
	"https://raw.githubusercontent.com/clarketm/proxy-list/master/proxy-list-raw.txt",
}

// Config holds all configuration options for kgscrape.
// This struct is populated from CLI flags, environment variables and the
// optional config file, then passed through the application explicitly.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add indirection at every call site without a real benefit.
type Config struct {
	// StartURL is the first URL of the run. Required.
	StartURL string

	// MaxPages is the number of URLs to visit (>= 1).
	MaxPages int

	// ExtractType selects single-page or discover mode.
	ExtractType ExtractType

	// MaxAttempts is the per-URL attempt budget of the fetch engine.
	MaxAttempts int

	// Concurrency is the number of URLs processed at once. Each URL's
	// retry loop stays sequential regardless of this value.
	Concurrency int

	// BackoffMin and BackoffMax bound the jittered retry sleep.
	BackoffMin time.Duration
	BackoffMax time.Duration

	// PolitenessMin and PolitenessMax bound the delay between URLs.
	PolitenessMin time.Duration
	PolitenessMax time.Duration

	// UseProxies loads the proxy pool. When false every request is direct.
	UseProxies bool

	// ProxySources are proxy-list URLs loaded at start.
	ProxySources []string

	// StaticProxies are "host:port" or "scheme://host:port" entries added to the pool.
	StaticProxies []string

	// ProbeURL is the echo endpoint used to probe proxies.
	ProbeURL string

	// ProbeTimeout bounds each proxy probe.
	ProbeTimeout time.Duration

	// InsecureTLS disables certificate verification for target requests.
	// Enabled by default so misconfigured targets can still be read; the
	// engine logs a warning whenever it is on.
	InsecureTLS bool

	// UseTor starts an embedded Tor daemon and adds it as a SOCKS5 candidate.
	UseTor bool

	// TorStartupTimeout bounds the Tor bootstrap.
	TorStartupTimeout time.Duration

	// RapidAPIKey enables the property API strategy for real-estate URLs.
	RapidAPIKey string

	// Seed seeds the random source for backoff, politeness and disguise
	// selection. Zero means a time-derived seed.
	Seed uint64

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// File holds the loaded config file. Never nil after NewConfig.
	File *File

	// OutputFile receives the JSON array of records. Empty means stdout report only.
	OutputFile string

	// SummaryFile receives the JSON run summary.
	SummaryFile string

	// JSONReport prints the run summary as JSON instead of text.
	JSONReport bool

	// MarkdownReport prints the run summary as Markdown instead of text.
	MarkdownReport bool

	// MetricsFile receives Prometheus metrics in textfile-collector format.
	MetricsFile string

	// DBDir is the directory of the history database.
	DBDir string

	// SaveToDB stores the run in the history database.
	SaveToDB bool

	// MaxBodySize is the maximum response body size in bytes.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (attempt budget, delay
// windows, TLS relaxation). This also documents the defaults in one place.
func NewConfig() *Config {
	return &Config{
		MaxPages:          DefaultMaxPages,
		ExtractType:       DefaultExtractType,
		MaxAttempts:       DefaultMaxAttempts,
		Concurrency:       DefaultConcurrency,
		BackoffMin:        DefaultBackoffMin,
		BackoffMax:        DefaultBackoffMax,
		PolitenessMin:     DefaultPolitenessMin,
		PolitenessMax:     DefaultPolitenessMax,
		UseProxies:        true,
		ProxySources:      append([]string(nil), DefaultProxySources...),
		ProbeURL:          DefaultProbeURL,
		ProbeTimeout:      DefaultProbeTimeout,
		InsecureTLS:       true,
		TorStartupTimeout: DefaultTorStartupTimeout,
		File:              NewFile(),
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for kgscrape.
// On Linux: ~/.local/share/kgscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for kgscrape.
// On Linux: ~/.config/kgscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first sentinel error found.
//
// Design decision: We validate once after flag and environment parsing,
// before any network activity, so a run either starts cleanly or not at all.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	u, err := url.Parse(c.StartURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidStartURL
	}

	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}

	if c.ExtractType != ExtractSingle && c.ExtractType != ExtractDiscover {
		return ErrInvalidExtractType
	}

	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}

	if c.BackoffMin < 0 || c.BackoffMax < c.BackoffMin {
		return ErrInvalidBackoff
	}

	if c.PolitenessMin < 0 || c.PolitenessMax < c.PolitenessMin {
		return ErrInvalidPolitenessDelay
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ParseExtractType converts a string to an ExtractType.
func ParseExtractType(s string) (ExtractType, error) {
	switch ExtractType(s) {
	case ExtractSingle, ExtractDiscover:
		return ExtractType(s), nil
	case "":
		return DefaultExtractType, nil
	default:
		return "", ErrInvalidExtractType
	}
}
