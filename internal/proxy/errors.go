package proxy

import "errors"

var (
	// ErrSourceStatus is returned when a proxy list responds with a non-2xx status.
	ErrSourceStatus = errors.New("proxy source returned non-success status")

	// ErrInvalidCandidate is returned when a proxy string cannot be parsed.
	ErrInvalidCandidate = errors.New("invalid proxy candidate")

	// ErrUnsupportedScheme is returned for proxy schemes other than http and socks5.
	ErrUnsupportedScheme = errors.New("unsupported proxy scheme")

	// ErrProbeFailed is returned when the echo endpoint is unreachable through a proxy.
	ErrProbeFailed = errors.New("proxy probe failed")
)
