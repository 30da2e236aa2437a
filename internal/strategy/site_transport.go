package strategy

import (
	"net/http"
)

// siteTransport injects per-site cookie and headers into every request,
// including the ones issued while following redirects.
type siteTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// withSiteSettings wraps base when there is anything to inject.
func withSiteSettings(base http.RoundTripper, cookie string, headers map[string]string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if cookie == "" && len(headers) == 0 {
		return base
	}
	return &siteTransport{base: base, cookie: cookie, headers: headers}
}

// RoundTrip implements http.RoundTripper.
func (t *siteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}

	return t.base.RoundTrip(clone)
}

// maxRedirects bounds redirect chains.
const maxRedirects = 10

func limitRedirects(_ *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return http.ErrUseLastResponse
	}
	return nil
}
