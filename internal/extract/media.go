package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

// imageSrcAttrs are image URL candidates in priority order.
var imageSrcAttrs = []string{
	"data-src", "data-original", "data-lazy-src", "src", "srcset", "data-srcset",
}

// allowedImageExtensions is the fixed image extension allow-list.
var allowedImageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {},
}

// allowedVideoExtensions is the fixed video extension allow-list.
var allowedVideoExtensions = map[string]struct{}{
	".mp4": {}, ".m3u8": {}, ".webm": {}, ".mov": {}, ".avi": {}, ".flv": {}, ".ts": {},
}

// skippedImagePathFragments reject ad-delivery and tracking URLs.
var skippedImagePathFragments = []string{
	"doubleclick", "googlesyndication", "/ads/", "adserver", "analytics", "tracking",
}

// skippedImageNameKeywords reject placeholder images by filename.
var skippedImageNameKeywords = []string{
	"logo", "icon", "spacer", "blank", "placeholder", "avatar", "1x1", "pixel", "loading",
}

// videoDataAttrs are attributes that indicate an embedded video on any
// element, not just <video>.
var videoDataAttrs = []string{
	"data-video", "data-video-src", "data-vid", "data-hls-src", "data-stream", "data-manifest",
}

// extractImages collects image URLs from the pruned container: <img>
// candidates in attribute priority order, <source> elements, and inline
// CSS backgrounds. Every candidate resolves to absolute form and passes
// the skip predicate. When the container yields nothing and the override
// allows metadata fallback, og:image is used as a last resort.
func extractImages(doc *goquery.Document, container *goquery.Selection, base *url.URL, ov *Override) []string {
	var images []string

	if container != nil && container.Length() > 0 {
		container.Find("img").Each(func(_ int, img *goquery.Selection) {
			if len(img.Nodes) > 0 && nodeExcluded(img.Nodes[0]) {
				return
			}
			if candidate := firstImageCandidate(img); candidate != "" {
				images = appendImageURL(images, candidate, base)
			}
		})

		container.Find("source").Each(func(_ int, source *goquery.Selection) {
			if len(source.Nodes) > 0 && nodeExcluded(source.Nodes[0]) {
				return
			}
			candidate := firstNonEmptyString(
				firstSrcsetURL(source.AttrOr("srcset", "")),
				source.AttrOr("src", ""),
			)
			if candidate != "" {
				images = appendImageURL(images, candidate, base)
			}
		})

		container.Find("[style]").Each(func(_ int, styled *goquery.Selection) {
			if len(styled.Nodes) > 0 && nodeExcluded(styled.Nodes[0]) {
				return
			}
			match := backgroundURLRe.FindStringSubmatch(styled.AttrOr("style", ""))
			if match != nil {
				images = appendImageURL(images, match[1], base)
			}
		})
	}

	inlineOnly := ov != nil && ov.InlineMediaOnly
	if len(images) == 0 && !inlineOnly {
		if ogImage := doc.Find("meta[property='og:image']").First().AttrOr("content", ""); ogImage != "" {
			images = appendImageURL(images, ogImage, base)
		}
	}

	return dedupeOrdered(images)
}

// firstImageCandidate returns the first usable URL among the image's
// candidate attributes.
func firstImageCandidate(img *goquery.Selection) string {
	for _, attr := range imageSrcAttrs {
		value := img.AttrOr(attr, "")
		if value == "" {
			continue
		}
		if attr == "srcset" || attr == "data-srcset" {
			value = firstSrcsetURL(value)
		}
		if value != "" {
			return value
		}
	}
	return ""
}

// firstSrcsetURL returns the first URL token of a srcset value.
func firstSrcsetURL(srcset string) string {
	srcset = strings.TrimSpace(srcset)
	if srcset == "" {
		return ""
	}
	first, _, _ := strings.Cut(srcset, ",")
	urlToken, _, _ := strings.Cut(strings.TrimSpace(first), " ")
	return urlToken
}

// appendImageURL resolves the candidate and appends it unless the skip
// predicate rejects it.
func appendImageURL(images []string, candidate string, base *url.URL) []string {
	resolved := resolveMediaURL(candidate, base)
	if resolved == "" || skipImage(resolved) {
		return images
	}
	return append(images, resolved)
}

// skipImage rejects data URIs, ad-delivery paths, placeholder filenames,
// and extensions outside the allowed image set.
func skipImage(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "data:") {
		return true
	}
	for _, fragment := range skippedImagePathFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	name := strings.ToLower(path.Base(u.Path))
	for _, keyword := range skippedImageNameKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}

	_, allowed := allowedImageExtensions[strings.ToLower(path.Ext(u.Path))]
	return !allowed
}

// extractVideos collects video URLs from <video>/<source> elements, from
// elements carrying video-indicating data attributes, and from og:video
// meta. Attribute values that look like JSON are parsed and scanned
// recursively; otherwise they are split as alternate-source lists.
func extractVideos(doc *goquery.Document, container *goquery.Selection, base *url.URL) []string {
	var videos []string

	scope := container
	if scope == nil || scope.Length() == 0 {
		scope = doc.Selection
	}

	scope.Find("video").Each(func(_ int, video *goquery.Selection) {
		if len(video.Nodes) > 0 && nodeExcluded(video.Nodes[0]) {
			return
		}
		videos = appendVideoCandidates(videos, video.AttrOr("src", ""), base)
		videos = appendVideoCandidates(videos, video.AttrOr("data-src", ""), base)
		video.Find("source").Each(func(_ int, source *goquery.Selection) {
			videos = appendVideoCandidates(videos, source.AttrOr("src", ""), base)
		})
	})

	for _, attr := range videoDataAttrs {
		scope.Find("[" + attr + "]").Each(func(_ int, el *goquery.Selection) {
			if len(el.Nodes) > 0 && nodeExcluded(el.Nodes[0]) {
				return
			}
			videos = appendVideoCandidates(videos, el.AttrOr(attr, ""), base)
		})
	}

	if ogVideo := doc.Find("meta[property='og:video'], meta[property='og:video:url']").First().AttrOr("content", ""); ogVideo != "" {
		videos = appendVideoCandidates(videos, ogVideo, base)
	}

	return dedupeOrdered(videos)
}

// appendVideoCandidates expands one attribute value into zero or more
// video URLs: JSON payloads are walked for video-looking strings, plain
// values are split on |/;/, as alternate-source lists.
func appendVideoCandidates(videos []string, value string, base *url.URL) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return videos
	}

	if strings.HasPrefix(value, "{") || strings.HasPrefix(value, "[") {
		for _, candidate := range videoURLsFromJSON(value) {
			videos = appendVideoURL(videos, candidate, base)
		}
		return videos
	}

	for _, candidate := range strings.FieldsFunc(value, func(r rune) bool {
		return r == '|' || r == ';' || r == ','
	}) {
		videos = appendVideoURL(videos, strings.TrimSpace(candidate), base)
	}
	return videos
}

// videoURLsFromJSON walks a JSON-ish payload collecting string values that
// look like video URLs. The repair pass handles trailing commas.
func videoURLsFromJSON(raw string) []string {
	var found []string
	var walk func(gjson.Result)
	walk = func(r gjson.Result) {
		switch {
		case r.IsArray() || r.IsObject():
			r.ForEach(func(_, value gjson.Result) bool {
				walk(value)
				return true
			})
		case r.Type == gjson.String:
			if looksLikeVideoURL(r.String()) {
				found = append(found, r.String())
			}
		}
	}
	walk(gjson.Parse(repairJSON(raw)))
	return found
}

// appendVideoURL resolves and appends a candidate when it passes the
// video-URL heuristic.
func appendVideoURL(videos []string, candidate string, base *url.URL) []string {
	if candidate == "" || !looksLikeVideoURL(candidate) {
		return videos
	}
	resolved := resolveMediaURL(candidate, base)
	if resolved == "" {
		return videos
	}
	return append(videos, resolved)
}

// looksLikeVideoURL accepts values with a video extension or a streaming
// marker (m3u8, manifest, stream).
func looksLikeVideoURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, "m3u8") || strings.Contains(lower, "manifest") || strings.Contains(lower, "stream") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, allowed := allowedVideoExtensions[strings.ToLower(path.Ext(u.Path))]
	return allowed
}

// resolveMediaURL resolves a candidate to absolute form against the
// article URL. Protocol-relative and relative candidates both resolve;
// unparseable values are discarded.
func resolveMediaURL(candidate string, base *url.URL) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(candidate), "data:") {
		// Kept verbatim; the skip predicate rejects data URIs.
		return candidate
	}
	ref, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// dedupeOrdered removes duplicates preserving first-seen order.
func dedupeOrdered(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
