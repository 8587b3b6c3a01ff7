package discover

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxSitemapDepth bounds sitemap-index recursion.
const maxSitemapDepth = 2

// maxChildSitemaps bounds how many child sitemaps of an index are fetched.
const maxChildSitemaps = 5

// sitemapURLSet is the <urlset> document shape.
type sitemapURLSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// sitemapIndex is the <sitemapindex> document shape.
type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// sitemapArticles extracts article URLs from a sitemap payload. Handles
// gzip-compressed payloads, <urlset> documents, <sitemapindex> recursion
// (bounded), plain-text URL lists, and as a last resort an HTML page of
// links, since some sites serve a link hub at the sitemap path.
func (d *Discoverer) sitemapArticles(ctx context.Context, body []byte, depth int) []string {
	body = maybeGunzip(body)

	var urlset sitemapURLSet
	if err := xml.Unmarshal(body, &urlset); err == nil && len(urlset.URLs) > 0 {
		var articles []string
		for _, entry := range urlset.URLs {
			if accepted := d.acceptArticleHref(strings.TrimSpace(entry.Loc)); accepted != "" {
				articles = append(articles, accepted)
			}
		}
		return dedupe(articles)
	}

	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		if depth >= maxSitemapDepth {
			d.log.Warn("sitemap index nesting too deep, stopping")
			return nil
		}
		var articles []string
		children := index.Sitemaps
		if len(children) > maxChildSitemaps {
			children = children[:maxChildSitemaps]
		}
		for _, child := range children {
			loc := strings.TrimSpace(child.Loc)
			if loc == "" {
				continue
			}
			childBody, err := d.fetcher.Fetch(ctx, loc)
			if err != nil {
				d.log.Warn("child sitemap fetch failed", "url", loc, "error", err.Error())
				continue
			}
			articles = append(articles, d.sitemapArticles(ctx, childBody, depth+1)...)
		}
		return dedupe(articles)
	}

	if articles := d.plainTextURLs(body); len(articles) > 0 {
		return articles
	}
	return d.htmlLinkFallback(body)
}

// plainTextURLs handles one-URL-per-line sitemap variants.
func (d *Discoverer) plainTextURLs(body []byte) []string {
	var articles []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "http") {
			continue
		}
		if accepted := d.acceptArticleHref(line); accepted != "" {
			articles = append(articles, accepted)
		}
	}
	return dedupe(articles)
}

// htmlLinkFallback treats the payload as an HTML link hub.
func (d *Discoverer) htmlLinkFallback(body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	return d.collectAnchors(doc.Find("a[href]"))
}

// maybeGunzip transparently decompresses a gzip payload, returning the
// input unchanged when it is not gzip.
func maybeGunzip(body []byte) []byte {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body
	}
	reader, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return body
	}
	defer reader.Close()
	decompressed, err := io.ReadAll(io.LimitReader(reader, 32*1024*1024))
	if err != nil {
		return body
	}
	return decompressed
}
