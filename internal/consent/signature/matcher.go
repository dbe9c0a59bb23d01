// Package signature classifies script URLs against a list of known
// tracking-vendor signatures. A signature is a domain-name fragment; matching
// is substring containment, first match wins.
package signature

import (
	"net/url"
	"strings"
)

// IsTracker reports whether rawURL belongs to a tracking vendor according to
// the ordered signature list. The hostname portion is matched
// case-insensitively so mixed-case hosts cannot evade classification; the
// rest of the URL is matched as-is. Empty, relative, or malformed URLs never
// match and never cause an error.
func IsTracker(rawURL string, signatures []string) bool {
	if rawURL == "" || len(signatures) == 0 {
		return false
	}

	host := hostOf(rawURL)
	for _, sig := range signatures {
		if sig == "" {
			continue
		}
		if host != "" && strings.Contains(host, strings.ToLower(sig)) {
			return true
		}
		if strings.Contains(rawURL, sig) {
			return true
		}
	}
	return false
}

// hostOf extracts the lowercased hostname of rawURL, or "" if the URL has
// none (relative paths, malformed input). Protocol-relative sources
// ("//host/path") still yield their host.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
