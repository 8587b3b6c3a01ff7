package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// headingFallbackSelectors run last in the title chain, after override
// selectors have had their chance.
var headingFallbackSelectors = []string{"h2", "h3"}

// genericSummarySelectors locate the lead paragraph (sapo).
var genericSummarySelectors = []string{
	".sapo", ".article-sapo", ".detail-sapo", "h2.sapo",
	".summary", ".article-summary", ".lead", "[class*='sapo']",
}

// genericAuthorSelectors are tried after the meta and JSON-LD sources.
var genericAuthorSelectors = []string{
	"[itemprop='author'] [itemprop='name']", "[itemprop='author']",
	".author-name", ".author", "p.author", ".article-author",
}

// genericTagSelectors collect tag anchors when the site has no override.
var genericTagSelectors = []string{
	".tags a", ".tag-list a", ".article-tags a", "[class*='taglist'] a",
}

// externalIDRe matches the numeric site identifier most Vietnamese news
// CMSes embed at the end of the article path, e.g. "-4721234.html".
var externalIDRe = regexp.MustCompile(`[-/](\d{5,})(?:\.html?|\.chn|\.epi)?/?$`)

// extractTitle resolves the title through the fixed chain: title metas,
// the first h1, the document title, then override and site selectors,
// finally a bare h2/h3. First non-empty wins. An empty result is legal;
// the caller substitutes a URL-derived fallback.
func extractTitle(doc *goquery.Document, ov *Override, siteSelectors []string) string {
	if title := metaContent(doc, "meta[property='og:title']", "meta[name='title']", "meta[name='twitter:title']"); title != "" {
		return title
	}
	if title := collapseWhitespace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if title := collapseWhitespace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	selectors := siteSelectors
	if ov != nil {
		selectors = append(append([]string{}, ov.TitleSelectors...), siteSelectors...)
	}
	selectors = append(selectors, headingFallbackSelectors...)
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		if title := collapseWhitespace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return ""
}

// extractDescription resolves the description: the meta chain, the
// generic lead-paragraph selectors, then override and site selectors. The
// value is unwrapped from a single <p> shell when a site emits it as one
// paragraph element.
func extractDescription(doc *goquery.Document, ov *Override, siteSelectors []string) string {
	if desc := metaContent(doc, "meta[name='description']", "meta[property='og:description']", "meta[name='twitter:description']"); desc != "" {
		return unwrapPShell(desc)
	}

	for _, selector := range genericSummarySelectors {
		if desc := collapseWhitespace(doc.Find(selector).First().Text()); desc != "" {
			return desc
		}
	}

	selectors := siteSelectors
	if ov != nil {
		selectors = append(append([]string{}, ov.DescriptionSelectors...), siteSelectors...)
	}
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		if desc := collapseWhitespace(doc.Find(selector).First().Text()); desc != "" {
			return desc
		}
	}
	return ""
}

// extractSummary resolves the lead paragraph from site, override, then
// generic sapo selectors.
func extractSummary(doc *goquery.Document, ov *Override, siteSelectors []string) string {
	selectors := siteSelectors
	if ov != nil {
		selectors = append(append([]string{}, ov.SummarySelectors...), siteSelectors...)
	}
	selectors = append(selectors, genericSummarySelectors...)

	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		found := doc.Find(selector).First()
		if found.Length() == 0 || (len(found.Nodes) > 0 && nodeExcluded(found.Nodes[0])) {
			continue
		}
		if summary := collapseWhitespace(found.Text()); summary != "" {
			return summary
		}
	}
	return ""
}

// extractAuthor resolves the byline: author meta, JSON-LD author, then
// byline selectors. "Theo" attribution prefixes are stripped.
func extractAuthor(doc *goquery.Document) string {
	author := metaContent(doc, "meta[name='author']", "meta[property='article:author']")
	if author == "" {
		author = jsonLDAuthor(doc)
	}
	if author == "" {
		for _, selector := range genericAuthorSelectors {
			if author = collapseWhitespace(doc.Find(selector).First().Text()); author != "" {
				break
			}
		}
	}

	author = strings.TrimSpace(strings.TrimPrefix(author, "Theo "))
	if len(author) > 200 {
		// A byline this long is almost certainly a mis-selected paragraph.
		return ""
	}
	return author
}

// jsonLDAuthor reads the author name from JSON-LD article blocks, handling
// both object and array shapes for the author field.
func jsonLDAuthor(doc *goquery.Document) string {
	var author string

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data := repairJSON(s.Text())
		if data == "" {
			return true
		}
		for _, block := range jsonLDBlocks(gjson.Parse(data)) {
			name := firstNonEmptyString(
				block.Get("author.name").String(),
				block.Get("author.0.name").String(),
				block.Get("author").String(),
			)
			if name != "" && !strings.HasPrefix(name, "{") && !strings.HasPrefix(name, "[") {
				author = collapseWhitespace(name)
				return false
			}
		}
		return true
	})

	return author
}

// extractTags merges tag sources: article:tag metas, the keywords meta,
// tag anchors (site, override and generic selectors), and any override
// strategies. Deduplicated case-insensitively, first-seen casing kept.
func extractTags(doc *goquery.Document, ov *Override) []string {
	var tags []string

	doc.Find("meta[property='article:tag']").Each(func(_ int, s *goquery.Selection) {
		if tag := collapseWhitespace(s.AttrOr("content", "")); tag != "" {
			tags = append(tags, tag)
		}
	})

	if keywords := metaContent(doc, "meta[name='keywords']", "meta[name='news_keywords']"); keywords != "" {
		for _, keyword := range strings.Split(keywords, ",") {
			if tag := collapseWhitespace(keyword); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	selectors := genericTagSelectors
	if ov != nil && len(ov.TagSelectors) > 0 {
		selectors = append(append([]string{}, ov.TagSelectors...), genericTagSelectors...)
	}
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if tag := collapseWhitespace(s.Text()); tag != "" {
				tags = append(tags, tag)
			}
		})
	}

	if ov != nil {
		for _, strategy := range ov.TagStrategies {
			tags = append(tags, strategy.ExtractTags(doc)...)
		}
	}

	return dedupeTagsFold(tags)
}

// dedupeTagsFold deduplicates case-insensitively keeping first-seen casing.
func dedupeTagsFold(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extractLocale reads the page locale from og:locale, the html lang
// attribute, or a content-language meta. Normalized to lowercase with
// hyphen separators ("vi_VN" becomes "vi-vn").
func extractLocale(doc *goquery.Document) string {
	locale := metaContent(doc, "meta[property='og:locale']")
	if locale == "" {
		locale = strings.TrimSpace(doc.Find("html").AttrOr("lang", ""))
	}
	if locale == "" {
		locale = metaContent(doc, "meta[http-equiv='content-language']", "meta[name='language']")
	}
	return strings.ToLower(strings.ReplaceAll(locale, "_", "-"))
}

// externalIDMetaCandidates are CMS article-id metas tried before the URL
// pattern.
var externalIDMetaCandidates = []string{
	"meta[name='article_id']", "meta[name='article-id']",
	"meta[property='dable:item_id']", "meta[name='news_id']",
}

// extractExternalID resolves the site's own article identifier from CMS
// metas or the trailing numeric id in the URL path.
func extractExternalID(doc *goquery.Document, articleURL *url.URL) string {
	if id := metaContent(doc, externalIDMetaCandidates...); id != "" {
		return id
	}
	if match := externalIDRe.FindStringSubmatch(articleURL.Path); match != nil {
		return match[1]
	}
	return ""
}

// metaContent returns the first non-empty content attribute across the
// given meta selectors.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		if content := collapseWhitespace(doc.Find(selector).First().AttrOr("content", "")); content != "" {
			return content
		}
	}
	return ""
}
