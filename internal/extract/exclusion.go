package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// excludedMarkerTokens is the fixed, domain-independent denylist of tokens
// that mark an element as page chrome rather than article content. A token
// matches exactly or as a dash/underscore-delimited prefix, so "related"
// catches "related-articles" without catching "correlated".
var excludedMarkerTokens = []string{
	"ad", "ads", "advert", "advertisement", "banner", "sponsor", "sponsored",
	"related", "share", "sharing", "social", "comment", "comments",
	"taglist", "tag-list", "tags-list", "breadcrumb", "breadcrumbs",
	"subscribe", "subscription", "newsletter", "sidebar", "pagination",
	"promo", "promotion", "widget", "popup", "modal", "recommend",
	"trending", "hotnews", "poll", "survey", "copyright",
}

// markerAttrs are the attributes inspected for excluded-marker tokens.
var markerAttrs = []string{"class", "id", "data-role", "data-component", "data-block", "data-type"}

// nodeExcluded reports whether n or any of its ancestors carries an
// excluded-marker token. Exclusion is inherited: an element nested inside a
// marked ancestor is excluded even when the element itself is clean.
func nodeExcluded(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && elementMarked(cur) {
			return true
		}
	}
	return false
}

// elementMarked checks one element's marker attributes against the denylist.
func elementMarked(n *html.Node) bool {
	for _, attr := range n.Attr {
		if !isMarkerAttr(attr.Key) {
			continue
		}
		for _, token := range strings.Fields(strings.ToLower(attr.Val)) {
			if tokenDenied(token) {
				return true
			}
		}
	}
	return false
}

// isMarkerAttr reports whether key is one of the inspected attributes.
func isMarkerAttr(key string) bool {
	for _, attr := range markerAttrs {
		if key == attr {
			return true
		}
	}
	return false
}

// tokenDenied matches a token against the denylist, exact or as a
// delimited prefix.
func tokenDenied(token string) bool {
	for _, denied := range excludedMarkerTokens {
		if token == denied ||
			strings.HasPrefix(token, denied+"-") ||
			strings.HasPrefix(token, denied+"_") {
			return true
		}
	}
	return false
}
