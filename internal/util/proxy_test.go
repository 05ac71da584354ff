package util

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), target string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	u, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u == nil {
		return ""
	}
	return u.String()
}

func TestNewProxyFuncSelectsByScheme(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "http://sproxy:3128", "")

	if got := proxyFor(t, fn, "https://api.example.com/v1"); got != "http://sproxy:3128" {
		t.Errorf("https request: got %q", got)
	}
	if got := proxyFor(t, fn, "http://api.example.com/v1"); got != "http://proxy:3128" {
		t.Errorf("http request: got %q", got)
	}
}

func TestNewProxyFuncHTTPFallback(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "")

	if got := proxyFor(t, fn, "https://api.example.com/v1"); got != "http://proxy:3128" {
		t.Errorf("https should fall back to the http proxy, got %q", got)
	}
}

func TestNewProxyFuncNoProxyList(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "localhost, internal.example.com")

	if got := proxyFor(t, fn, "http://localhost:11434/api"); got != "" {
		t.Errorf("localhost should bypass the proxy, got %q", got)
	}
	if got := proxyFor(t, fn, "http://svc.internal.example.com/"); got != "" {
		t.Errorf("subdomains of a bypass entry should connect directly, got %q", got)
	}
	if got := proxyFor(t, fn, "http://example.com/"); got != "http://proxy:3128" {
		t.Errorf("other hosts should use the proxy, got %q", got)
	}
}
