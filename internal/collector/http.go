package collector

import (
	"net/http"
	"net/url"
	"time"
)

// newHTTPClient builds a client with optional proxy support. A zero timeout
// leaves the request bounded only by the caller's context.
func newHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
