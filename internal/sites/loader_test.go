package sites_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

func writeSitesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeSitesFile(t, `
sites:
  - key: example
    base_url: https://example.vn
    category_path_pattern: "/{slug}"
    article_allowed_suffixes: [".html"]
    allowed_locales: ["vi"]
    rate_limit:
      delay: 1500ms
      max_retries: 3
    max_articles: 10
`)

	registry, err := sites.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, registry.Len())

	profile, err := registry.Get("example")
	require.NoError(t, err)
	assert.Equal(t, "https://example.vn", profile.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, profile.RateLimit.Delay, "duration strings decode")
	assert.Equal(t, 3, profile.RateLimit.MaxRetries)
	assert.Equal(t, 10, profile.MaxArticles)

	// Defaults fill what the file left unset.
	assert.Equal(t, "/", profile.HomePath)
	assert.Equal(t, sites.DiscoveryHTML, profile.Discovery)
	assert.Equal(t, sites.DefaultMaxCategories, profile.MaxCategories)
	assert.Equal(t, sites.DefaultBackoff, profile.RateLimit.Backoff)
}

func TestLoadFileEmpty(t *testing.T) {
	t.Parallel()

	path := writeSitesFile(t, "sites: []\n")
	_, err := sites.LoadFile(path)
	require.ErrorIs(t, err, sites.ErrNoSites)
}

func TestNewRegistryValidation(t *testing.T) {
	t.Parallel()

	valid := sites.Profile{Key: "a", BaseURL: "https://a.vn"}

	tests := []struct {
		name     string
		profiles []sites.Profile
		wantErr  error
	}{
		{
			name:     "missing key",
			profiles: []sites.Profile{{BaseURL: "https://a.vn"}},
			wantErr:  sites.ErrMissingKey,
		},
		{
			name:     "missing base url",
			profiles: []sites.Profile{{Key: "a"}},
			wantErr:  sites.ErrMissingBaseURL,
		},
		{
			name:     "bad base url scheme",
			profiles: []sites.Profile{{Key: "a", BaseURL: "ftp://a.vn"}},
			wantErr:  sites.ErrBadBaseURL,
		},
		{
			name: "slug pattern must contain one placeholder",
			profiles: []sites.Profile{
				{Key: "a", BaseURL: "https://a.vn", CategoryPathPattern: "/chuyen-muc"},
			},
			wantErr: sites.ErrBadSlugPattern,
		},
		{
			name: "unknown discovery strategy",
			profiles: []sites.Profile{
				{Key: "a", BaseURL: "https://a.vn", Discovery: "carrier-pigeon"},
			},
			wantErr: sites.ErrUnknownStrategy,
		},
		{
			name:     "duplicate key",
			profiles: []sites.Profile{valid, valid},
			wantErr:  sites.ErrDuplicateKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sites.NewRegistry(tt.profiles)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistryKeysSorted(t *testing.T) {
	t.Parallel()

	registry, err := sites.NewRegistry([]sites.Profile{
		{Key: "b", BaseURL: "https://b.vn"},
		{Key: "a", BaseURL: "https://a.vn"},
		{Key: "c", BaseURL: "https://c.vn"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, registry.Keys())

	_, err = registry.Get("missing")
	require.ErrorIs(t, err, sites.ErrNotFound)
}
