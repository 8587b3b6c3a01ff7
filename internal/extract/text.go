package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	whitespaceRe     = regexp.MustCompile(`\s+`)
	trailingCommaRe  = regexp.MustCompile(`,\s*([}\]])`)
	pShellRe         = regexp.MustCompile(`(?is)^<p[^>]*>(.*)</p>$`)
	htmlTagRe        = regexp.MustCompile(`(?s)<[^>]+>`)
	backgroundURLRe  = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
	freeTextDateRe   = regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})(?:\D{0,5}(\d{1,2}):(\d{2}))?`)
)

// collapseWhitespace trims the string and collapses internal whitespace
// runs to single spaces.
func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// unwrapPShell strips a single wrapping <p>...</p> shell around a value.
// Some sites emit the description as one paragraph element; the shell is a
// presentation artifact, not content.
func unwrapPShell(s string) string {
	trimmed := strings.TrimSpace(s)
	match := pShellRe.FindStringSubmatch(trimmed)
	if match == nil {
		return trimmed
	}
	inner := match[1]
	// Only unwrap a single shell: nested paragraphs stay intact.
	if strings.Contains(strings.ToLower(inner), "<p") {
		return trimmed
	}
	return collapseWhitespace(htmlTagRe.ReplaceAllString(inner, " "))
}

// nodeText collects the concatenated text content of a node subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
			return
		}
		if cur.Type == html.ElementNode && (cur.Data == "script" || cur.Data == "style") {
			return
		}
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
