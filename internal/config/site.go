package config

import (
	"strings"
)

// SiteConfig holds per-host settings.
// This allows customizing requests and link discovery per target site.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent with every request to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to this site. They override the
	// disguise headers of the same name.
	Headers map[string]string `yaml:"headers,omitempty"`

	// IgnorePatterns are URL path globs skipped during link discovery.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path globs that link discovery is restricted to.
	// Empty means every same-host link is eligible.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// ProxyFileConfig configures the proxy pool from the config file.
type ProxyFileConfig struct {
	// Sources replaces the built-in proxy-list URLs when non-empty.
	Sources []string `yaml:"sources,omitempty"`

	// Static are fixed proxies ("host:port" or "socks5://host:port").
	Static []string `yaml:"static,omitempty"`

	// ProbeURL overrides the echo endpoint used for proxy probes.
	ProbeURL string `yaml:"probeURL,omitempty"`
}

// ClassifierFileConfig adds host keywords per category.
// Keywords are appended after the built-in table, so built-in rules win.
type ClassifierFileConfig struct {
	RealEstate   []string `yaml:"realEstate,omitempty"`
	Professional []string `yaml:"professional,omitempty"`
	Product      []string `yaml:"product,omitempty"`
}

// File represents the structure of the .kgscrape configuration file.
type File struct {
	// Proxies configures proxy sources and static proxies.
	Proxies ProxyFileConfig `yaml:"proxies,omitempty"`

	// UserAgents replaces the built-in user-agent catalog when non-empty.
	UserAgents []string `yaml:"userAgents,omitempty"`

	// Classifier adds category keywords.
	Classifier ClassifierFileConfig `yaml:"classifier,omitempty"`

	// Sites maps host names (e.g. "www.example.com") to site settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// NewFile returns an empty File with initialized maps.
func NewFile() *File {
	return &File{Sites: make(map[string]SiteConfig)}
}

// GetSiteConfig returns the configuration for host, merged over Defaults.
// Host matching is case-insensitive and a leading "www." is ignored.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cloneSiteConfig(cf.Defaults)

	siteConfig, ok := cf.lookupSite(host)
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}

// lookupSite finds the site entry for host.
func (cf *File) lookupSite(host string) (SiteConfig, bool) {
	host = strings.ToLower(host)
	bare := strings.TrimPrefix(host, "www.")
	for key, sc := range cf.Sites {
		k := strings.TrimPrefix(strings.ToLower(key), "www.")
		if k == bare {
			return sc, true
		}
	}
	return SiteConfig{}, false
}

// cloneSiteConfig copies the Headers map so merges never write into Defaults.
func cloneSiteConfig(sc SiteConfig) SiteConfig {
	if sc.Headers != nil {
		headers := make(map[string]string, len(sc.Headers))
		for k, v := range sc.Headers {
			headers[k] = v
		}
		sc.Headers = headers
	}
	return sc
}
