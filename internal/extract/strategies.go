package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// JSONLDBreadcrumbCategory reads a schema.org BreadcrumbList from JSON-LD
// script blocks and takes the deepest non-terminal item as the category.
type JSONLDBreadcrumbCategory struct{}

// ExtractCategory implements CategoryStrategy.
func (JSONLDBreadcrumbCategory) ExtractCategory(_ *url.URL, doc *goquery.Document) (string, string) {
	var id, name string

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data := repairJSON(s.Text())
		if data == "" {
			return true
		}

		for _, block := range jsonLDBlocks(gjson.Parse(data)) {
			if block.Get("@type").String() != "BreadcrumbList" {
				continue
			}
			items := block.Get("itemListElement").Array()
			// The last element is usually the article itself; the category
			// is the deepest element before it.
			if len(items) < 2 {
				continue
			}
			item := items[len(items)-2]
			name = firstNonEmptyString(
				item.Get("item.name").String(),
				item.Get("name").String(),
			)
			itemID := firstNonEmptyString(
				item.Get("item.@id").String(),
				item.Get("item").String(),
			)
			if name != "" {
				id = categorySlugFromURL(itemID)
				return false
			}
		}
		return true
	})

	return id, name
}

// BreadcrumbWalker reads the category from an HTML breadcrumb container,
// taking the last crumb that is not the current page.
type BreadcrumbWalker struct {
	// Selector targets the breadcrumb anchors, e.g. "ul.breadcrumb li a".
	Selector string
}

// ExtractCategory implements CategoryStrategy.
func (w BreadcrumbWalker) ExtractCategory(_ *url.URL, doc *goquery.Document) (string, string) {
	anchors := doc.Find(w.Selector)
	if anchors.Length() == 0 {
		return "", ""
	}

	// Skip a leading "home" crumb when there are deeper levels.
	last := anchors.Last()
	name := collapseWhitespace(last.Text())
	if anchors.Length() > 1 && isHomeCrumb(name) {
		return "", ""
	}
	if name == "" {
		return "", ""
	}
	return categorySlugFromURL(last.AttrOr("href", "")), name
}

// ActiveNavCategory reads the category from the highlighted main-nav tab.
type ActiveNavCategory struct {
	// Selector targets the active nav anchor, e.g. "nav .active > a".
	Selector string
}

// ExtractCategory implements CategoryStrategy.
func (a ActiveNavCategory) ExtractCategory(_ *url.URL, doc *goquery.Document) (string, string) {
	active := doc.Find(a.Selector).First()
	if active.Length() == 0 {
		return "", ""
	}
	name := collapseWhitespace(active.Text())
	if name == "" || isHomeCrumb(name) {
		return "", ""
	}
	return categorySlugFromURL(active.AttrOr("href", "")), name
}

// SelectorTags extracts tags from anchors under the configured selector.
type SelectorTags struct {
	Selector string
}

// ExtractTags implements TagStrategy.
func (s SelectorTags) ExtractTags(doc *goquery.Document) []string {
	var tags []string
	doc.Find(s.Selector).Each(func(_ int, sel *goquery.Selection) {
		if tag := collapseWhitespace(sel.Text()); tag != "" {
			tags = append(tags, tag)
		}
	})
	return tags
}

// categorySlugFromURL derives a category id from a crumb link's first path
// segment. Returns empty for unusable links so the pipeline falls back to
// slugifying the name.
func categorySlugFromURL(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	segment := strings.Trim(u.Path, "/")
	if idx := strings.IndexByte(segment, '/'); idx >= 0 {
		segment = segment[:idx]
	}
	segment = strings.TrimSuffix(segment, ".html")
	segment = strings.TrimSuffix(segment, ".htm")
	if segment == "" {
		return ""
	}
	return Slugify(segment)
}

// homeCrumbNames are breadcrumb labels that mean "front page", not a category.
var homeCrumbNames = map[string]struct{}{
	"trang chủ": {}, "trang chu": {}, "home": {}, "tin tức": {}, "tin tuc": {},
}

// isHomeCrumb reports whether the crumb label is a front-page label.
func isHomeCrumb(name string) bool {
	_, ok := homeCrumbNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// jsonLDBlocks flattens a parsed JSON-LD payload to its object blocks:
// a bare object, a top-level array, or an @graph array.
func jsonLDBlocks(root gjson.Result) []gjson.Result {
	var blocks []gjson.Result

	collect := func(r gjson.Result) {
		if graph := r.Get("@graph"); graph.IsArray() {
			blocks = append(blocks, graph.Array()...)
			return
		}
		blocks = append(blocks, r)
	}

	if root.IsArray() {
		for _, item := range root.Array() {
			collect(item)
		}
		return blocks
	}
	collect(root)
	return blocks
}

// repairJSON trims a JSON-LD payload and removes trailing commas before
// closing braces/brackets, the most common malformation on the target
// sites. Returns empty when the payload is blank.
func repairJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return trailingCommaRe.ReplaceAllString(raw, "$1")
}

// firstNonEmptyString returns the first non-empty string argument.
func firstNonEmptyString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
