package scout

import (
	"net/url"
	"strings"
)

// IgnoredDomains lists known-bad or boilerplate domains (ad networks, link
// shorteners, social redirectors) that are never crawled.
var IgnoredDomains = map[string]struct{}{
	"ad.doubleclick.net":  {},
	"t.co":                {},
	"bit.ly":              {},
	"cs.pn":               {},
	"twitter.com":         {},
	"zh-cn.messenger.com": {},
	"zh-cn.facebook.com":  {},
	"ar-ar.facebook.com":  {},
	"osf.io":              {},
}

// IsValidLink reports whether rawURL is an absolute link worth crawling.
// Relative, malformed and fragment-only references are rejected, as are
// links whose host (without a leading "www.") is in IgnoredDomains.
func IsValidLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme == "" || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	_, ignored := IgnoredDomains[host]
	return !ignored
}

// DomainOf returns the graph node identity for rawURL: its lower-cased host
// without a leading "www.", so "www.cnn.com" becomes "cnn.com" while
// "wsj.com" is left alone. Returns an empty string if rawURL cannot be parsed.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// NormalizeDomain turns a domain or URL given by a user into a graph node
// name: URLs are reduced with DomainOf, bare names are lower-cased and lose
// a leading "www.".
func NormalizeDomain(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.Contains(addr, "://") {
		return DomainOf(addr)
	}
	return strings.TrimPrefix(strings.ToLower(addr), "www.")
}
