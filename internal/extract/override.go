package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CategoryStrategy resolves a category id and/or name from an article
// document. A strategy may return either value empty; the pipeline merges
// results across strategies.
type CategoryStrategy interface {
	ExtractCategory(articleURL *url.URL, doc *goquery.Document) (id, name string)
}

// TagStrategy extracts site-specific tags from an article document.
type TagStrategy interface {
	ExtractTags(doc *goquery.Document) []string
}

// BodyFilter post-processes assembled body-text lines for one domain.
type BodyFilter interface {
	FilterLines(lines []string) []string
}

// Override is a per-domain configuration record layered on top of the
// generic extraction heuristics. Override selectors and strategies take
// priority; the generic heuristics always run as fallback when an override
// produces nothing.
type Override struct {
	// Domain is the suffix-matched domain this override applies to.
	Domain string
	// TitleSelectors are tried after the generic meta/h1/title chain.
	TitleSelectors []string
	// DescriptionSelectors are tried after the generic description chain.
	DescriptionSelectors []string
	// SummarySelectors extend the fixed lead-paragraph selector list.
	SummarySelectors []string
	// ContainerSelectors locate the main container, first match wins.
	ContainerSelectors []string
	// ContainerKeywords are id/class substrings scanned when no container
	// selector matched; the longest candidate by text length wins.
	ContainerKeywords []string
	// ExcludeSelectors are pruned from the container before extraction.
	ExcludeSelectors []string
	// TagSelectors extend the fixed tag-container selector list.
	TagSelectors []string
	// CategoryStrategies run before the generic breadcrumb fallback.
	CategoryStrategies []CategoryStrategy
	// TagStrategies run in addition to meta and selector tag sources.
	TagStrategies []TagStrategy
	// InlineMediaOnly disables the og:image metadata fallback.
	InlineMediaOnly bool
	// BodyFilter optionally post-processes assembled body lines.
	BodyFilter BodyFilter
}

// Table maps domain suffixes to overrides, matched by longest suffix so
// "news.example.com" prefers an "news.example.com" entry over "example.com".
type Table struct {
	overrides []Override
}

// NewTable builds an override table. The table is immutable after build.
func NewTable(overrides []Override) *Table {
	return &Table{overrides: overrides}
}

// Resolve returns the override whose domain is the longest suffix match
// for host, or nil when none matches.
func (t *Table) Resolve(host string) *Override {
	host = strings.ToLower(host)

	var best *Override
	for i := range t.overrides {
		ov := &t.overrides[i]
		if !domainMatches(host, ov.Domain) {
			continue
		}
		if best == nil || len(ov.Domain) > len(best.Domain) {
			best = ov
		}
	}
	return best
}

// domainMatches reports whether host equals domain or is a subdomain of it.
func domainMatches(host, domain string) bool {
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}
