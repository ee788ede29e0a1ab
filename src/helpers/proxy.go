package helpers

import (
	"fmt"
	"net/url"
	"strings"
)

// -----------------------------------------------------------------------------

// ValidateProxy accepts http, https and socks5 proxies. A missing scheme is
// allowed; FormatProxy adds it.
func ValidateProxy(proxyStr string) bool {
	u, err := url.Parse(FormatProxy(proxyStr))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "socks5"
}

// -----------------------------------------------------------------------------

// FormatProxy ensures the proxy has a scheme.
func FormatProxy(proxyStr string) string {
	if !strings.Contains(proxyStr, "://") {
		return "http://" + proxyStr
	}
	return proxyStr
}

// -----------------------------------------------------------------------------

// ParseProxy validates and normalizes a configured proxy.
func ParseProxy(proxyStr string) (*url.URL, error) {
	if !ValidateProxy(proxyStr) {
		return nil, fmt.Errorf("invalid proxy %q", proxyStr)
	}
	return url.Parse(FormatProxy(proxyStr))
}
