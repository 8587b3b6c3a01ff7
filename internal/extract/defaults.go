package extract

import "strings"

// AttributionFilter drops trailing source-attribution lines ("Theo Nhịp
// sống kinh tế") from the body. Attribution lines are short and start
// with one of the prefixes.
type AttributionFilter struct {
	Prefixes []string
}

// FilterLines implements BodyFilter.
func (f AttributionFilter) FilterLines(lines []string) []string {
	kept := lines[:0]
	for _, line := range lines {
		if f.isAttribution(line) {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func (f AttributionFilter) isAttribution(line string) bool {
	if len(line) > 80 {
		return false
	}
	for _, prefix := range f.Prefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// DefaultOverrides is the built-in per-domain table for the sites the
// crawler targets out of the box. Profiles for other sites run on the
// generic heuristics alone.
func DefaultOverrides() *Table {
	return NewTable([]Override{
		{
			Domain:             "vnexpress.net",
			ContainerSelectors: []string{"article.fck_detail", ".fck_detail"},
			SummarySelectors:   []string{"p.description"},
			ExcludeSelectors:   []string{".box_comment_vne", ".width_common.box-tinlienquanv2"},
			CategoryStrategies: []CategoryStrategy{
				JSONLDBreadcrumbCategory{},
				BreadcrumbWalker{Selector: "ul.breadcrumb li a"},
			},
			TagStrategies: []TagStrategy{SelectorTags{Selector: ".tags.width_common a"}},
		},
		{
			Domain:             "dantri.com.vn",
			ContainerSelectors: []string{".singular-content", ".dt-news__content"},
			SummarySelectors:   []string{".singular-sapo", "h2.singular-sapo"},
			ExcludeSelectors:   []string{".article-related", ".dt-news__related"},
			CategoryStrategies: []CategoryStrategy{
				BreadcrumbWalker{Selector: "ul.breadcrumbs li a"},
				JSONLDBreadcrumbCategory{},
			},
			TagStrategies: []TagStrategy{SelectorTags{Selector: ".article-tags a"}},
		},
		{
			Domain:             "tuoitre.vn",
			ContainerSelectors: []string{"div.detail-content[data-role='content']", ".detail-content"},
			SummarySelectors:   []string{"h2.detail-sapo"},
			CategoryStrategies: []CategoryStrategy{
				JSONLDBreadcrumbCategory{},
				BreadcrumbWalker{Selector: ".detail-cate a"},
			},
			TagStrategies: []TagStrategy{SelectorTags{Selector: ".detail-tab a"}},
		},
		{
			Domain:             "thanhnien.vn",
			ContainerSelectors: []string{".detail-content[data-role='content']", ".detail-cmain"},
			SummarySelectors:   []string{".detail-sapo"},
			CategoryStrategies: []CategoryStrategy{
				JSONLDBreadcrumbCategory{},
				ActiveNavCategory{Selector: ".site-header__nav .active > a"},
			},
		},
		{
			Domain:             "cafebiz.vn",
			ContainerSelectors: []string{".detail-content", "#mainContent"},
			ContainerKeywords:  []string{"contentdetail", "newscontent"},
			ExcludeSelectors:   []string{".bv-lq", ".VCSortableInPreviewMode[type='RelatedNewsBox']"},
			InlineMediaOnly:    true,
			BodyFilter: AttributionFilter{
				Prefixes: []string{"Theo ", "Nguồn: "},
			},
			CategoryStrategies: []CategoryStrategy{
				BreadcrumbWalker{Selector: ".bread-crumb a"},
			},
		},
		{
			Domain:             "vietnamnet.vn",
			ContainerSelectors: []string{".maincontent.main-content", "#maincontent"},
			SummarySelectors:   []string{".content-detail-sapo"},
			CategoryStrategies: []CategoryStrategy{
				BreadcrumbWalker{Selector: ".bread-crumb-detail a"},
				JSONLDBreadcrumbCategory{},
			},
		},
		{
			Domain:             "baochinhphu.vn",
			ContainerSelectors: []string{".detail-content", "[itemprop='articleBody']"},
			ContainerKeywords:  []string{"detail-content"},
			CategoryStrategies: []CategoryStrategy{
				BreadcrumbWalker{Selector: ".box-breadcrumbs a"},
			},
		},
	})
}
