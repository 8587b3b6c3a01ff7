package discover

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// minLastResortPathLength gates the final discovery tier: on Vietnamese
// news sites real article paths carry a long slug, while navigation links
// are short. Counted on the URL path only.
const minLastResortPathLength = 30

// listingArticles extracts article URLs from a category listing page
// through strictly ordered tiers. A tier runs only when every tier before
// it produced nothing: mixing tiers would let navigation links dilute a
// perfectly good selector harvest. Every candidate, whatever the tier,
// passes normalization and the full article filter set.
func (d *Discoverer) listingArticles(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		d.log.Warn("listing parse failed", "error", err.Error())
		return nil
	}

	if selector := d.profile.Selectors.ArticleLinks; selector != "" {
		if articles := d.collectAnchors(doc.Find(selector)); len(articles) > 0 {
			return articles
		}
	}

	if articles := d.articleElementLinks(doc); len(articles) > 0 {
		return articles
	}

	if articles := d.collectAnchors(doc.Find("h2 a[href], h3 a[href]")); len(articles) > 0 {
		return articles
	}

	return d.longPathLinks(doc)
}

// collectAnchors normalizes and filters a set of anchors, deduplicated in
// page order.
func (d *Discoverer) collectAnchors(anchors *goquery.Selection) []string {
	var articles []string
	anchors.Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if href == "" {
			return
		}
		if accepted := d.acceptArticleHref(href); accepted != "" {
			articles = append(articles, accepted)
		}
	})
	return dedupe(articles)
}

// articleElementLinks takes the first anchor of each <article> element,
// the semantic markup most listing templates use for teaser cards.
func (d *Discoverer) articleElementLinks(doc *goquery.Document) []string {
	var articles []string
	doc.Find("article").Each(func(_ int, card *goquery.Selection) {
		href := card.Find("a[href]").First().AttrOr("href", "")
		if href == "" {
			return
		}
		if accepted := d.acceptArticleHref(href); accepted != "" {
			articles = append(articles, accepted)
		}
	})
	return dedupe(articles)
}

// longPathLinks is the last resort: every anchor whose URL path is long
// enough to plausibly be an article slug.
func (d *Discoverer) longPathLinks(doc *goquery.Document) []string {
	var articles []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		accepted := d.acceptArticleHref(a.AttrOr("href", ""))
		if accepted == "" {
			return
		}
		if pathLength(accepted) < minLastResortPathLength {
			return
		}
		articles = append(articles, accepted)
	})
	return dedupe(articles)
}
