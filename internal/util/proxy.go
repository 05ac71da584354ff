// Package util holds small helpers shared across packages.
package util

import (
	"net/http"
	"net/url"
	"strings"
)

// NewProxyFunc builds a proxy selector from explicit settings. With no
// explicit proxies the environment variables decide. Hosts matching an entry
// of the comma-separated noProxy list connect directly.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	var bypass []string
	for _, entry := range strings.Split(noProxy, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			bypass = append(bypass, entry)
		}
	}

	return func(req *http.Request) (*url.URL, error) {
		host := req.URL.Hostname()
		for _, entry := range bypass {
			if host == entry || strings.HasSuffix(host, "."+entry) {
				return nil, nil
			}
		}
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
