package discover

import (
	"bytes"

	"github.com/mmcdole/gofeed"
)

// feedArticles parses an RSS/Atom payload and collects item links. Feed
// links still pass normalization and the article filters: feeds routinely
// mix in podcast, video and off-host items.
func (d *Discoverer) feedArticles(body []byte) []string {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		d.log.Warn("feed parse failed", "error", err.Error())
		return nil
	}

	var articles []string
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		if accepted := d.acceptArticleHref(item.Link); accepted != "" {
			articles = append(articles, accepted)
		}
	}
	return dedupe(articles)
}
