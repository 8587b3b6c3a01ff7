package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// genericBreadcrumbSelectors are tried when no override strategy resolved
// the category.
var genericBreadcrumbSelectors = []string{
	"ul.breadcrumb li a", ".breadcrumb a", ".bread-crumb a",
	"[itemtype*='BreadcrumbList'] a", "nav.breadcrumbs a",
}

// resolveCategory runs the override category strategies in order, merging
// their results: the id sticks once set, the name is refined by later
// strategies. When no strategy produced a name, the generic breadcrumb
// fallback runs; multi-level trails join with " > ". A missing id is
// derived by slugifying the name.
func resolveCategory(articleURL *url.URL, doc *goquery.Document, ov *Override) (string, string) {
	var id, name string

	if ov != nil {
		for _, strategy := range ov.CategoryStrategies {
			strategyID, strategyName := strategy.ExtractCategory(articleURL, doc)
			if id == "" && strategyID != "" {
				id = strategyID
			}
			if strategyName != "" {
				name = strategyName
			}
		}
	}

	if name == "" {
		fallbackID, fallbackName := breadcrumbTrailCategory(doc)
		if id == "" {
			id = fallbackID
		}
		name = fallbackName
	}

	if id == "" && name != "" {
		id = Slugify(name)
	}
	return id, name
}

// breadcrumbTrailCategory walks the generic breadcrumb selectors and
// returns the non-home trail. The id derives from the deepest crumb's
// link, the name joins the trail levels with " > ".
func breadcrumbTrailCategory(doc *goquery.Document) (string, string) {
	for _, selector := range genericBreadcrumbSelectors {
		anchors := doc.Find(selector)
		if anchors.Length() == 0 {
			continue
		}

		var names []string
		lastHref := ""
		anchors.Each(func(_ int, a *goquery.Selection) {
			crumb := collapseWhitespace(a.Text())
			if crumb == "" || isHomeCrumb(crumb) {
				return
			}
			names = append(names, crumb)
			if href := a.AttrOr("href", ""); href != "" {
				lastHref = href
			}
		})
		if len(names) == 0 {
			continue
		}
		return categorySlugFromURL(lastHref), strings.Join(names, " > ")
	}
	return "", ""
}
