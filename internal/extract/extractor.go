// Package extract turns one article page's HTML into a structured record.
// Generic heuristics handle any site; a per-domain override table layers
// site-specific selectors and strategies on top.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

// Extractor runs the layered extraction pipeline against article pages.
type Extractor struct {
	overrides *Table
	log       logger.Interface
}

// NewExtractor builds an extractor. A nil table falls back to the built-in
// per-domain defaults.
func NewExtractor(log logger.Interface, overrides *Table) *Extractor {
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Extractor{overrides: overrides, log: log}
}

// Extract parses the page and produces an article record. Malformed HTML
// never fails the call: the parser repairs what it can and the pipeline
// works with whatever survived. The only error is an unusable article URL.
// Fields that could not be resolved are left zero; the caller decides
// which of them are fatal for persistence.
func (e *Extractor) Extract(body []byte, articleURL string, sel sites.Selectors) (*domain.Article, error) {
	u, err := url.Parse(articleURL)
	if err != nil {
		return nil, fmt.Errorf("parse article url %q: %w", articleURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse article page %q: %w", articleURL, err)
	}

	ov := e.overrides.Resolve(u.Hostname())

	article := &domain.Article{
		URL:         articleURL,
		Title:       extractTitle(doc, ov, sel.Title),
		Description: extractDescription(doc, ov, sel.Description),
		Summary:     extractSummary(doc, ov, sel.Summary),
		Author:      extractAuthor(doc),
		Locale:      extractLocale(doc),
		ExternalID:  extractExternalID(doc, u),
		Tags:        extractTags(doc, ov),
		PublishedAt: extractPublishedDate(doc),
		ModifiedAt:  extractModifiedDate(doc),
		CreatedAt:   time.Now(),
	}
	article.CategoryID, article.CategoryName = resolveCategory(u, doc, ov)

	container := locateContainer(doc, ov, sel.Content)
	var filter BodyFilter
	if ov != nil {
		filter = ov.BodyFilter
	}

	if container != nil && container.Length() > 0 {
		// Prune once so body text, media and content HTML all see the same
		// cleaned tree.
		if ov != nil {
			pruneContainer(container, ov.ExcludeSelectors, sel.Exclude)
		} else {
			pruneContainer(container, sel.Exclude)
		}

		article.BodyText = assembleBodyText(container, filter)
		article.Images = extractImages(doc, container, u, ov)
		article.Videos = extractVideos(doc, container, u)
		article.BodyHTML = renderContentHTML(container)
	} else {
		e.log.Debug("no article container located, using paragraph fallback", "url", articleURL)
		article.BodyText = fallbackBodyText(doc, filter)
		article.Images = extractImages(doc, nil, u, ov)
		article.Videos = extractVideos(doc, nil, u)
	}

	return article, nil
}
