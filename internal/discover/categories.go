package discover

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/urlutil"
)

// htmlCategories walks the home page's anchors: each accepted link becomes
// a category with a slug derived from the path. When the profile carries a
// category path pattern, the slug substitutes back into it so every
// variant spelling of a category converges on one canonical URL.
func (d *Discoverer) htmlCategories(ctx context.Context) []domain.Category {
	homeURL := d.profile.BaseURL + d.profile.HomePath
	body, err := d.fetcher.Fetch(ctx, homeURL)
	if err != nil {
		d.log.Warn("home page fetch failed", "url", homeURL, "error", err.Error())
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		d.log.Warn("home page parse failed", "url", homeURL, "error", err.Error())
		return nil
	}

	slugRe := d.slugPattern()
	base := d.profile.Base()

	var categories []domain.Category
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		normalized, normErr := urlutil.Normalize(base, a.AttrOr("href", ""), false)
		if normErr != nil {
			return
		}
		if !d.filters.AcceptCategory(normalized) {
			return
		}

		slug, ok := d.deriveSlug(normalized, slugRe)
		if !ok {
			return
		}

		canonical := d.canonicalCategoryURL(normalized, slug)
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}

		categories = append(categories, domain.Category{
			URL:  canonical,
			Slug: slug,
			Name: strings.TrimSpace(a.Text()),
		})
	})

	if max := d.profile.MaxCategories; max > 0 && len(categories) > max {
		categories = categories[:max]
	}
	d.log.Debug("categories discovered", "count", len(categories))
	return categories
}

// slugPattern compiles the profile's category path pattern to a regex with
// one capture group for the slug. Nil when the profile has no pattern.
func (d *Discoverer) slugPattern() *regexp.Regexp {
	pattern := d.profile.CategoryPathPattern
	if pattern == "" {
		return nil
	}
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.Replace(escaped, regexp.QuoteMeta("{slug}"), `([^/]+)`, 1)
	re, err := regexp.Compile("^" + escaped + "$")
	if err != nil {
		// Validate vets the pattern shape; an uncompilable result here
		// means the literal part contained regex-hostile bytes QuoteMeta
		// could not save. Fall back to segment derivation.
		return nil
	}
	return re
}

// deriveSlug extracts the category slug from a normalized URL. A path
// matching the profile pattern yields its capture; paths the pattern does
// not cover fall back to the first path segment, which canonicalization
// then substitutes back into the pattern.
func (d *Discoverer) deriveSlug(normalized string, slugRe *regexp.Regexp) (string, bool) {
	u, err := url.Parse(normalized)
	if err != nil {
		return "", false
	}

	if slugRe != nil {
		if match := slugRe.FindStringSubmatch(u.Path); match != nil {
			return match[1], true
		}
	}

	segment := strings.Trim(u.Path, "/")
	if idx := strings.IndexByte(segment, '/'); idx >= 0 {
		segment = segment[:idx]
	}
	segment = strings.TrimSuffix(segment, ".html")
	segment = strings.TrimSuffix(segment, ".htm")
	if segment == "" {
		return "", false
	}
	return segment, true
}

// canonicalCategoryURL substitutes the slug back into the path pattern so
// all spellings of one category share one URL. Profiles that opt out keep
// the discovered path.
func (d *Discoverer) canonicalCategoryURL(normalized, slug string) string {
	if d.profile.CategoryPathPattern == "" || d.profile.KeepDiscoveredPaths {
		return normalized
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	u.Path = strings.Replace(d.profile.CategoryPathPattern, "{slug}", slug, 1)
	return u.String()
}
