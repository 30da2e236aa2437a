package model

import (
	"net/url"
)

// ProxyScheme is the protocol spoken by a proxy candidate.
type ProxyScheme string

const (
	// ProxySchemeHTTP is a plain HTTP forward proxy (CONNECT for TLS targets).
	ProxySchemeHTTP ProxyScheme = "http"

	// ProxySchemeSOCKS5 is a SOCKS5 proxy such as a local Tor daemon.
	ProxySchemeSOCKS5 ProxyScheme = "socks5"
)

// ProxyCandidate is one egress address in the proxy pool.
// Candidates are loaded once per run, deduplicated by address and never
// mutated. A failed use never removes a candidate from the pool; failures
// are local to the attempt that observed them.
type ProxyCandidate struct {
	// Address is the "host:port" of the proxy.
	Address string `json:"address"`

	// Scheme selects the dialer. Empty means ProxySchemeHTTP.
	Scheme ProxyScheme `json:"scheme,omitempty"`

	// User holds credentials for authenticated proxies. It is never
	// serialized.
	User *url.Userinfo `json:"-"`
}

// NewProxyCandidate returns an HTTP proxy candidate for address.
func NewProxyCandidate(address string) ProxyCandidate {
	return ProxyCandidate{Address: address, Scheme: ProxySchemeHTTP}
}

// EffectiveScheme returns the scheme, defaulting to HTTP.
func (p ProxyCandidate) EffectiveScheme() ProxyScheme {
	if p.Scheme == "" {
		return ProxySchemeHTTP
	}
	return p.Scheme
}

// URL returns the proxy as a URL suitable for http.ProxyURL, including
// credentials when present.
func (p ProxyCandidate) URL() *url.URL {
	return &url.URL{Scheme: string(p.EffectiveScheme()), User: p.User, Host: p.Address}
}

// Key identifies the candidate for deduplication: scheme plus address.
func (p ProxyCandidate) Key() string {
	return string(p.EffectiveScheme()) + "://" + p.Address
}

// String returns "scheme://host:port". Credentials are never included.
func (p ProxyCandidate) String() string {
	return p.Key()
}
