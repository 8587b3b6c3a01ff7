package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// strippedFromContentHTML are elements removed from the archival markup.
var strippedFromContentHTML = []string{
	"script", "style", "noscript", "iframe", "form",
	".ads", ".ad-container", ".banner", "[class*='sponsor']",
}

// lazySrcAttrs are attributes checked, in order, to backfill a lazy
// image's src before serialization.
var lazySrcAttrs = []string{"data-src", "data-original", "data-lazy-src"}

// renderContentHTML produces the cleaned markup of the pruned container:
// scripts, styles and ad blocks stripped, lazy image sources backfilled.
// Content HTML is kept alongside body text (archival/display vs
// search/analysis); the two are not derivable from one another.
func renderContentHTML(container *goquery.Selection) string {
	if container == nil || container.Length() == 0 {
		return ""
	}

	for _, selector := range strippedFromContentHTML {
		container.Find(selector).Remove()
	}

	container.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := img.AttrOr("src", ""); src != "" && !strings.HasPrefix(src, "data:") {
			return
		}
		for _, attr := range lazySrcAttrs {
			if lazy := img.AttrOr(attr, ""); lazy != "" {
				img.SetAttr("src", lazy)
				return
			}
		}
	})

	rendered, err := goquery.OuterHtml(container)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(rendered)
}
