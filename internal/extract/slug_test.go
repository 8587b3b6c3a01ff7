package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/extract"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"diacritics stripped", "Kinh tế", "kinh_te"},
		{"dong crossed d", "Đời sống", "doi_song"},
		{"mixed punctuation", "Thể thao - Bóng đá!", "the_thao_bong_da"},
		{"already ascii", "chinh-tri", "chinh_tri"},
		{"collapses separator runs", "a   b--c", "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, extract.Slugify(tt.input))
		})
	}
}

func TestSlugifyLongValueHashes(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("rất dài ", 30)
	slug := extract.Slugify(long)
	assert.Len(t, slug, 64, "over-long slugs collapse to a sha256 hex digest")
	assert.Equal(t, slug, extract.Slugify(long), "hashing is stable")
}
