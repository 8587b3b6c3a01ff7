// Package urlutil provides URL normalization and link classification.
// Links are canonicalized against a site's base URL before any filtering so
// the same URL expressed differently dedups to one string.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrEmptyHref is returned for empty or whitespace-only hrefs.
	ErrEmptyHref = errors.New("normalize url: empty href")
	// ErrRejectedScheme is returned for javascript:, mailto: and tel: links.
	ErrRejectedScheme = errors.New("normalize url: rejected scheme")
	// ErrMissingSchemeOrHost is returned when resolution yields no scheme or host.
	ErrMissingSchemeOrHost = errors.New("normalize url: missing scheme or host")
	// ErrForeignHost is returned for links outside the base host family.
	ErrForeignHost = errors.New("normalize url: host outside allowed set")
)

// rejectedSchemes are link schemes that never resolve to crawlable pages.
var rejectedSchemes = map[string]struct{}{
	"javascript": {},
	"mailto":     {},
	"tel":        {},
}

// Normalize canonicalizes href against base. The fragment is always
// stripped; the query is stripped unless keepQuery is set. Hosts outside
// the base host family (exact host, www variant, bare root, or any
// subdomain of the root) are rejected.
func Normalize(base *url.URL, href string, keepQuery bool) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyHref
	}

	if scheme, _, found := strings.Cut(href, ":"); found {
		if _, rejected := rejectedSchemes[strings.ToLower(scheme)]; rejected {
			return "", fmt.Errorf("%w: %s", ErrRejectedScheme, scheme)
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("normalize url: %w", err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return "", ErrMissingSchemeOrHost
	}

	if !hostAllowed(base.Hostname(), resolved.Hostname()) {
		return "", fmt.Errorf("%w: %s", ErrForeignHost, resolved.Hostname())
	}

	resolved.Fragment = ""
	if !keepQuery {
		resolved.RawQuery = ""
	}

	return resolved.String(), nil
}

// hostAllowed accepts the exact base host, its www variant, the bare root,
// and any subdomain of the root. Loose on purpose: several news groups
// serve one brand across multiple subdomains.
func hostAllowed(baseHost, host string) bool {
	baseHost = strings.ToLower(baseHost)
	host = strings.ToLower(host)

	if host == baseHost || host == "www."+baseHost {
		return true
	}

	root := strings.TrimPrefix(baseHost, "www.")
	if host == root {
		return true
	}

	return strings.HasSuffix(host, "."+root)
}

// HostMatchesSuffix reports whether host equals one of the suffixes or ends
// with "." + suffix. An empty suffix list allows any host.
func HostMatchesSuffix(host string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, suffix := range suffixes {
		suffix = strings.ToLower(strings.TrimPrefix(suffix, "."))
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
