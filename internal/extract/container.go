package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// genericContainerSelectors are the structural selectors evaluated when no
// override container selector matches. All matches of all selectors are
// compared and the element with the most extracted text wins: many pages
// carry several plausible containers (a related-articles widget styled
// like the body) and length is the most robust discriminator without
// site-specific tuning.
var genericContainerSelectors = []string{
	"[itemprop='articleBody']",
	"article",
	".article-body",
	".article-content",
	".fck_detail",
	".detail-content",
	".content-detail",
	".news-content",
	".post-content",
	".entry-content",
	".maincontent",
	".main-content",
	"#main-content",
	".contentbody",
	".box-news",
}

// locateContainer finds the main article container. Resolution order:
// override selectors (first match wins), generic structural selectors
// (longest text wins), override keyword scan (longest text wins). Returns
// nil when nothing matches; body assembly then falls back to paragraph
// level.
func locateContainer(doc *goquery.Document, ov *Override, siteSelectors []string) *goquery.Selection {
	overrideSelectors := siteSelectors
	if ov != nil {
		overrideSelectors = append(append([]string{}, ov.ContainerSelectors...), siteSelectors...)
	}
	for _, selector := range overrideSelectors {
		if selector == "" {
			continue
		}
		if found := doc.Find(selector).First(); found.Length() > 0 {
			return found
		}
	}

	if best := longestBySelectors(doc, genericContainerSelectors); best != nil {
		return best
	}

	if ov != nil && len(ov.ContainerKeywords) > 0 {
		return longestByKeywords(doc, ov.ContainerKeywords)
	}
	return nil
}

// longestBySelectors returns the single match with the greatest text
// length across all matches of all selectors.
func longestBySelectors(doc *goquery.Document, selectors []string) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0

	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			length := len(collapseWhitespace(s.Text()))
			if length > bestLen {
				best = s
				bestLen = length
			}
		})
	}
	return best
}

// longestByKeywords scans every element whose id or class contains one of
// the keywords and picks the longest by the same text-length rule.
func longestByKeywords(doc *goquery.Document, keywords []string) *goquery.Selection {
	var best *goquery.Selection
	bestLen := 0

	doc.Find("[id], [class]").Each(func(_ int, s *goquery.Selection) {
		attrText := strings.ToLower(s.AttrOr("id", "") + " " + s.AttrOr("class", ""))
		matched := false
		for _, keyword := range keywords {
			if strings.Contains(attrText, strings.ToLower(keyword)) {
				matched = true
				break
			}
		}
		if !matched {
			return
		}
		length := len(collapseWhitespace(s.Text()))
		if length > bestLen {
			best = s
			bestLen = length
		}
	})
	return best
}

// pruneContainer removes excluded-section selectors from the container.
// This happens exactly once, before body text, content HTML and media
// extraction, so all three see the same pruned tree.
func pruneContainer(container *goquery.Selection, excludeSelectors ...[]string) {
	for _, selectors := range excludeSelectors {
		for _, selector := range selectors {
			if selector != "" {
				container.Find(selector).Remove()
			}
		}
	}
}
