package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and allow callers to use
// errors.Is() for programmatic handling while still giving users a
// readable message.
var (
	// ErrNoStartURL is returned when no start URL is given by argument or START_URL.
	ErrNoStartURL = errors.New("no start URL specified: pass a URL argument or set START_URL")

	// ErrInvalidStartURL is returned when the start URL is not an absolute http(s) URL.
	ErrInvalidStartURL = errors.New("invalid start URL: must be an absolute http or https URL")

	// ErrInvalidMaxPages is returned when max pages is below one.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be at least 1")

	// ErrInvalidExtractType is returned for an unknown extract type.
	ErrInvalidExtractType = errors.New("invalid extract type: must be \"single\" or \"discover\"")

	// ErrInvalidMaxAttempts is returned when the attempt budget is below one.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be at least 1")

	// ErrInvalidConcurrency is returned when concurrency is below one.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrInvalidBackoff is returned when the backoff window is negative or inverted.
	ErrInvalidBackoff = errors.New("invalid backoff window: min must be non-negative and not exceed max")

	// ErrInvalidPolitenessDelay is returned when the politeness window is negative or inverted.
	ErrInvalidPolitenessDelay = errors.New("invalid politeness delay: min must be non-negative and not exceed max")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
