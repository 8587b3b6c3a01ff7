package urlutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/urlutil"
)

func newFilters(t *testing.T, profile sites.Profile) *urlutil.Filters {
	t.Helper()
	f, err := urlutil.NewFilters(&profile)
	require.NoError(t, err)
	return f
}

func TestNewFiltersRejectsBadRegex(t *testing.T) {
	t.Parallel()

	_, err := urlutil.NewFilters(&sites.Profile{
		ArticleDenyRegexes: []string{"(["},
	})
	require.Error(t, err)
}

func TestAcceptCategory(t *testing.T) {
	t.Parallel()

	f := newFilters(t, sites.Profile{
		DeniedExactPaths:     []string{"/", "/video"},
		CategoryDenyPrefixes: []string{"/tag/"},
		CategoryDenyRegexes:  []string{`^/tim-kiem`},
	})

	assert.True(t, f.AcceptCategory("https://example.vn/kinh-te"))
	assert.False(t, f.AcceptCategory("https://example.vn/"), "denied exact path")
	assert.False(t, f.AcceptCategory("https://example.vn/video"), "denied exact path")
	assert.False(t, f.AcceptCategory("https://example.vn/tag/bong-da"), "deny prefix")
	assert.False(t, f.AcceptCategory("https://example.vn/tim-kiem?q=x"), "deny regex")
}

func TestAcceptArticle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile sites.Profile
		url     string
		want    bool
	}{
		{
			name:    "no filters accepts anything",
			profile: sites.Profile{},
			url:     "https://example.vn/whatever",
			want:    true,
		},
		{
			name: "suffix allow-list is case-insensitive",
			profile: sites.Profile{
				ArticleAllowedSuffixes: []string{".html"},
			},
			url:  "https://example.vn/bai-viet-123.HTML",
			want: true,
		},
		{
			name: "suffix allow-list rejects other suffixes",
			profile: sites.Profile{
				ArticleAllowedSuffixes: []string{".html"},
			},
			url:  "https://example.vn/bai-viet-123.chn",
			want: false,
		},
		{
			name: "allowed path regex must match when configured",
			profile: sites.Profile{
				ArticleAllowedPathRegexes: []string{`-\d{6,}\.html$`},
			},
			url:  "https://example.vn/chu-de/bai-viet-4721234.html",
			want: true,
		},
		{
			name: "allowed path regex rejects non-matching path",
			profile: sites.Profile{
				ArticleAllowedPathRegexes: []string{`-\d{6,}\.html$`},
			},
			url:  "https://example.vn/chu-de/gioi-thieu.html",
			want: false,
		},
		{
			name: "article host suffix restricts host",
			profile: sites.Profile{
				ArticleHostSuffixes: []string{"example.vn"},
			},
			url:  "https://cdn.other.vn/bai-viet.html",
			want: false,
		},
		{
			name: "deny prefix wins over allow prefix",
			profile: sites.Profile{
				ArticleAllowPrefixes: []string{"/kinh-te"},
				ArticleDenyPrefixes:  []string{"/kinh-te/quang-cao"},
			},
			url:  "https://example.vn/kinh-te/quang-cao/bai.html",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFilters(t, tt.profile)
			assert.Equal(t, tt.want, f.AcceptArticle(tt.url))
		})
	}
}
