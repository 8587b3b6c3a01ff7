package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// metadataLineMaxLength separates a metadata stamp ("Thứ hai, 12/5/2025")
// from genuine prose mentioning the same words: only short lines starting
// with a time/date label are dropped.
const metadataLineMaxLength = 60

// boilerplateLineMaxLength bounds lines checked against the boilerplate
// phrase denylist.
const boilerplateLineMaxLength = 80

// boilerplatePhrases are fixed chrome phrases that never belong in body
// text. Matched case-insensitively on short lines.
var boilerplatePhrases = []string{
	"chia sẻ facebook",
	"chia sẻ zalo",
	"bình luận của bạn",
	"gửi bình luận",
	"xem thêm",
	"đọc thêm",
	"tin liên quan",
	"bài liên quan",
	"theo dõi chúng tôi",
	"đăng ký nhận tin",
	"quay lại trang chủ",
	"in bài viết",
	"lưu bài viết",
}

// timeLabelPrefixes mark metadata stamps when they open a short line.
var timeLabelPrefixes = []string{
	"thứ hai", "thứ ba", "thứ tư", "thứ năm", "thứ sáu", "thứ bảy", "chủ nhật",
	"ngày", "cập nhật", "xuất bản", "đăng lúc", "đăng ngày",
	"published", "updated",
}

// paragraphTags yield one text line each during traversal.
var paragraphTags = map[string]struct{}{
	"p": {}, "h2": {}, "h3": {}, "h4": {}, "li": {},
}

// blockTags are block-level elements; a bare div counts as a paragraph
// only when it contains none of these.
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "ul": {}, "ol": {}, "li": {}, "table": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"section": {}, "article": {}, "blockquote": {}, "figure": {},
}

// skippedTags never contribute body text.
var skippedTags = map[string]struct{}{
	"script": {}, "style": {}, "noscript": {}, "iframe": {}, "form": {},
	"nav": {}, "aside": {}, "header": {}, "footer": {}, "button": {},
}

// assembleBodyText walks the pruned container breadth-first and assembles
// the plain-text body: paragraph-like elements yield whitespace-collapsed
// lines, tables flatten to pipe-delimited grids, bare divs count as
// paragraphs only without nested block content. Consecutive duplicate
// lines, boilerplate phrases and short metadata stamps are dropped.
func assembleBodyText(container *goquery.Selection, filter BodyFilter) string {
	if container == nil || container.Length() == 0 {
		return ""
	}

	var lines []string
	queue := elementChildren(container.Nodes[0])

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if _, skip := skippedTags[n.Data]; skip {
			continue
		}
		if elementMarked(n) {
			// Subtree excluded; inheritance comes free since children are
			// never enqueued.
			continue
		}

		switch {
		case isParagraphTag(n.Data):
			lines = appendLine(lines, collapseWhitespace(nodeText(n)))
		case n.Data == "table":
			lines = appendTableLines(lines, n)
		case n.Data == "div" && !hasBlockDescendant(n):
			lines = appendLine(lines, collapseWhitespace(nodeText(n)))
		default:
			queue = append(queue, elementChildren(n)...)
		}
	}

	lines = dropNoise(lines)
	if filter != nil {
		lines = filter.FilterLines(lines)
	}
	return strings.Join(lines, "\n")
}

// fallbackBodyText extracts body text when no main container was located:
// every non-excluded paragraph in the document body, same noise rules.
func fallbackBodyText(doc *goquery.Document, filter BodyFilter) string {
	var lines []string
	doc.Find("body p").Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 || nodeExcluded(s.Nodes[0]) {
			return
		}
		lines = appendLine(lines, collapseWhitespace(s.Text()))
	})

	lines = dropNoise(lines)
	if filter != nil {
		lines = filter.FilterLines(lines)
	}
	return strings.Join(lines, "\n")
}

// isParagraphTag reports whether the tag yields a body line directly.
func isParagraphTag(tag string) bool {
	_, ok := paragraphTags[tag]
	return ok
}

// appendLine appends a non-empty line, suppressing a consecutive
// duplicate. Some sites render the same teaser line twice.
func appendLine(lines []string, line string) []string {
	if line == "" {
		return lines
	}
	if len(lines) > 0 && lines[len(lines)-1] == line {
		return lines
	}
	return append(lines, line)
}

// appendTableLines flattens a table to one pipe-delimited line per row.
func appendTableLines(lines []string, table *html.Node) []string {
	for _, row := range descendantsByTag(table, "tr") {
		var cells []string
		for _, cell := range descendantsByTag(row, "td", "th") {
			if text := collapseWhitespace(nodeText(cell)); text != "" {
				cells = append(cells, text)
			}
		}
		if len(cells) > 0 {
			lines = appendLine(lines, strings.Join(cells, " | "))
		}
	}
	return lines
}

// dropNoise removes boilerplate phrases and short metadata stamps.
func dropNoise(lines []string) []string {
	kept := lines[:0]
	for _, line := range lines {
		if isBoilerplateLine(line) || isMetadataStamp(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

// isBoilerplateLine matches short lines against the phrase denylist.
func isBoilerplateLine(line string) bool {
	if len(line) > boilerplateLineMaxLength {
		return false
	}
	lower := strings.ToLower(line)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isMetadataStamp matches short lines beginning with a time/date label.
// Longer sentences merely mentioning the same words are prose and stay.
func isMetadataStamp(line string) bool {
	if len(line) > metadataLineMaxLength {
		return false
	}
	lower := strings.ToLower(line)
	for _, prefix := range timeLabelPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// elementChildren returns the element-node children of n.
func elementChildren(n *html.Node) []*html.Node {
	var children []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode {
			children = append(children, child)
		}
	}
	return children
}

// hasBlockDescendant reports whether n contains any block-level element.
func hasBlockDescendant(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		if _, block := blockTags[child.Data]; block {
			return true
		}
		if hasBlockDescendant(child) {
			return true
		}
	}
	return false
}

// descendantsByTag collects descendant elements matching any of the tags,
// in document order.
func descendantsByTag(n *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for child := cur.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode {
				for _, tag := range tags {
					if child.Data == tag {
						out = append(out, child)
						break
					}
				}
				walk(child)
			}
		}
	}
	walk(n)
	return out
}
