// Package discover resolves a site's category endpoints and per-category
// article URL lists, via the strategy the site profile selects: HTML
// listing walks, a JSON API, an RSS/Atom feed, or a sitemap.
package discover

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/urlutil"
)

// Fetcher fetches one URL's body. Satisfied by fetch.Client.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Discoverer resolves categories and article lists for one site.
type Discoverer struct {
	profile *sites.Profile
	fetcher Fetcher
	filters *urlutil.Filters
	log     logger.Interface
}

// NewDiscoverer builds a discoverer for one site profile. Filter regexes
// compile here; a bad pattern fails the whole site before any traffic.
func NewDiscoverer(profile *sites.Profile, fetcher Fetcher, log logger.Interface) (*Discoverer, error) {
	filters, err := urlutil.NewFilters(profile)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", profile.Key, err)
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Discoverer{
		profile: profile,
		fetcher: fetcher,
		filters: filters,
		log:     log.WithSite(profile.Key),
	}, nil
}

// Categories resolves the site's category endpoints. A failed fetch logs
// and yields an empty list rather than an error: one unreachable site must
// not abort a multi-site run.
func (d *Discoverer) Categories(ctx context.Context) []domain.Category {
	switch d.profile.Discovery {
	case sites.DiscoveryAPI:
		return d.apiCategories(ctx)
	case sites.DiscoveryFeed:
		return []domain.Category{{
			URL:  d.profile.BaseURL + d.profile.FeedPath,
			Slug: "feed",
		}}
	case sites.DiscoverySitemap:
		return []domain.Category{{
			URL:  d.profile.BaseURL + d.profile.SitemapPath,
			Slug: "sitemap",
		}}
	default:
		return d.htmlCategories(ctx)
	}
}

// Articles resolves the article URLs of one category, already normalized,
// filtered and capped at the profile's per-category limit. Order follows
// the page; duplicates collapse to first occurrence.
func (d *Discoverer) Articles(ctx context.Context, category domain.Category) []string {
	body, err := d.fetcher.Fetch(ctx, category.URL)
	if err != nil {
		d.log.Warn("category page fetch failed", "category", category.URL, "error", err.Error())
		return nil
	}

	var articles []string
	switch d.profile.Discovery {
	case sites.DiscoveryFeed:
		articles = d.feedArticles(body)
	case sites.DiscoverySitemap:
		articles = d.sitemapArticles(ctx, body, 0)
	default:
		articles = d.listingArticles(body)
	}

	return truncate(articles, d.profile.MaxArticlesPerCategory)
}

// acceptArticleHref normalizes one href and applies the article filters.
// Returns empty when the link is not an acceptable article URL.
func (d *Discoverer) acceptArticleHref(href string) string {
	normalized, err := urlutil.Normalize(d.profile.Base(), href, d.profile.KeepQuery)
	if err != nil {
		return ""
	}
	if !d.filters.AcceptArticle(normalized) {
		return ""
	}
	return normalized
}

// pathLength returns the length of a URL's path component, or zero for
// unparseable values.
func pathLength(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	return len(u.Path)
}

// truncate bounds a slice at limit, ignoring non-positive limits.
func truncate(values []string, limit int) []string {
	if limit > 0 && len(values) > limit {
		return values[:limit]
	}
	return values
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
