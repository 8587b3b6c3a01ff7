package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// metaCandidate is one selector+attribute pair tried for a date value.
type metaCandidate struct {
	selector string
	attr     string
}

// publishedMetaCandidates are tried in order for the publish date.
var publishedMetaCandidates = []metaCandidate{
	{"meta[property='article:published_time']", "content"},
	{"meta[itemprop='datePublished']", "content"},
	{"meta[name='pubdate']", "content"},
	{"meta[name='publishdate']", "content"},
	{"meta[name='date']", "content"},
	{"time[pubdate]", "datetime"},
	{"time[datetime]", "datetime"},
}

// modifiedMetaCandidates are tried in order for the last-modified date.
var modifiedMetaCandidates = []metaCandidate{
	{"meta[property='article:modified_time']", "content"},
	{"meta[property='og:updated_time']", "content"},
	{"meta[itemprop='dateModified']", "content"},
	{"meta[name='lastmod']", "content"},
}

// freeTextDateSelectors are elements scanned for a free-text date when all
// structured sources failed. Publish date only; modification dates are
// rarely free-text-shaped.
var freeTextDateSelectors = []string{
	".date", ".time", ".publish-date", ".post-time", ".article-date",
	".news-date", ".datetime", "time",
}

// isoLayouts are tried in order for structured date values.
var isoLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// extractPublishedDate resolves the publish date: meta/time selectors,
// then JSON-LD datePublished/dateCreated, then free-text day-first parsing.
func extractPublishedDate(doc *goquery.Document) *time.Time {
	if t := tryMetaCandidates(doc, publishedMetaCandidates); t != nil {
		return t
	}
	if t := tryJSONLDDate(doc, "datePublished", "dateCreated"); t != nil {
		return t
	}
	return tryFreeTextDate(doc)
}

// extractModifiedDate resolves the last-modified date. Deliberately
// stricter than the publish date: no free-text fallback.
func extractModifiedDate(doc *goquery.Document) *time.Time {
	if t := tryMetaCandidates(doc, modifiedMetaCandidates); t != nil {
		return t
	}
	return tryJSONLDDate(doc, "dateModified")
}

// tryMetaCandidates walks the candidate list; the first parseable value
// wins, parse failures are swallowed and the next candidate tried.
func tryMetaCandidates(doc *goquery.Document, candidates []metaCandidate) *time.Time {
	for _, candidate := range candidates {
		value := doc.Find(candidate.selector).First().AttrOr(candidate.attr, "")
		if value == "" {
			continue
		}
		if t := parseStructuredDate(value); t != nil {
			return t
		}
	}
	return nil
}

// tryJSONLDDate scans JSON-LD script blocks for the named date keys,
// tolerating trailing-comma malformed payloads via the repair pass.
func tryJSONLDDate(doc *goquery.Document, keys ...string) *time.Time {
	var found *time.Time

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data := repairJSON(s.Text())
		if data == "" {
			return true
		}
		for _, block := range jsonLDBlocks(gjson.Parse(data)) {
			for _, key := range keys {
				if value := block.Get(key).String(); value != "" {
					if t := parseStructuredDate(value); t != nil {
						found = t
						return false
					}
				}
			}
		}
		return true
	})

	return found
}

// tryFreeTextDate scans date-looking elements for a day-first date
// pattern, the Vietnamese convention.
func tryFreeTextDate(doc *goquery.Document) *time.Time {
	for _, selector := range freeTextDateSelectors {
		var found *time.Time
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if t := parseDayFirstDate(s.Text()); t != nil {
				found = t
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// parseStructuredDate parses an ISO-8601-ish value, normalizing a bare Z
// suffix, over the fixed layout list.
func parseStructuredDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// parseDayFirstDate extracts a dd/mm/yyyy (optionally hh:mm) pattern from
// free text.
func parseDayFirstDate(text string) *time.Time {
	match := freeTextDateRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return nil
	}

	hour, minute := 0, 0
	if match[4] != "" {
		hour, _ = strconv.Atoi(match[4])
		minute, _ = strconv.Atoi(match[5])
		if hour > 23 || minute > 59 {
			hour, minute = 0, 0
		}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	return &t
}
