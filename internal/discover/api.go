package discover

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/urlutil"
)

// categoryURLKeys and categoryNameKeys are the JSON field names tried on
// each object while scanning an API category payload. Sites disagree on
// naming; the shapes below cover the CMS APIs seen in the wild.
var (
	categoryURLKeys  = []string{"url", "link", "href", "path", "cate_url"}
	categoryNameKeys = []string{"name", "title", "label", "cate_name"}
)

// apiCategories fetches the profile's JSON endpoint and scans it for
// category objects: any object carrying both a URL-ish and a name-ish
// field. The scan is recursive, so wrapper envelopes ({"data": {...}})
// need no per-site configuration.
func (d *Discoverer) apiCategories(ctx context.Context) []domain.Category {
	endpoint := d.profile.APIEndpoint
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = d.profile.BaseURL + endpoint
	}

	body, err := d.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		d.log.Warn("category api fetch failed", "endpoint", endpoint, "error", err.Error())
		return nil
	}

	base := d.profile.Base()
	seen := make(map[string]struct{})
	var categories []domain.Category

	var walk func(gjson.Result)
	walk = func(r gjson.Result) {
		if r.IsObject() {
			rawURL := firstKey(r, categoryURLKeys)
			name := firstKey(r, categoryNameKeys)
			if rawURL != "" && name != "" {
				if normalized, normErr := urlutil.Normalize(base, rawURL, false); normErr == nil &&
					d.filters.AcceptCategory(normalized) {
					if _, dup := seen[normalized]; !dup {
						seen[normalized] = struct{}{}
						slug, ok := d.deriveSlug(normalized, d.slugPattern())
						if ok {
							categories = append(categories, domain.Category{
								URL:  d.canonicalCategoryURL(normalized, slug),
								Slug: slug,
								Name: name,
							})
						}
					}
				}
			}
		}
		if r.IsObject() || r.IsArray() {
			r.ForEach(func(_, value gjson.Result) bool {
				walk(value)
				return true
			})
		}
	}
	walk(gjson.ParseBytes(body))

	if max := d.profile.MaxCategories; max > 0 && len(categories) > max {
		categories = categories[:max]
	}
	d.log.Debug("categories discovered via api", "count", len(categories))
	return categories
}

// firstKey returns the first non-empty string value among the keys.
func firstKey(r gjson.Result, keys []string) string {
	for _, key := range keys {
		if value := r.Get(key).String(); value != "" {
			return value
		}
	}
	return ""
}
