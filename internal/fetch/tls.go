package fetch

import (
	"crypto/tls"
	"net/http"
	"strings"
)

// newRelaxedTransport builds a transport for hosts that require legacy TLS
// behavior: renegotiation requests honored, old protocol versions accepted,
// certificate verification skipped. Only hosts opted in by configuration
// ever use this transport.
func newRelaxedTransport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			// #nosec G402 -- a fixed allow-list of known-broken hosts opts in
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS10,
			Renegotiation:      tls.RenegotiateOnceAsClient,
		},
	}
}

// hostNeedsRelaxedTLS reports whether the host matches any configured
// relaxed-TLS prefix.
func hostNeedsRelaxedTLS(host string, prefixes []string) bool {
	host = strings.ToLower(host)
	for _, prefix := range prefixes {
		if strings.HasPrefix(host, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
