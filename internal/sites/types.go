// Package sites provides the site registry: per-site crawl profiles loaded
// once at startup and treated as immutable for the run.
package sites

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Discovery strategy names selectable per site.
const (
	// DiscoveryHTML walks the home page and category listing pages.
	DiscoveryHTML = "html"
	// DiscoveryAPI reads categories from a JSON endpoint.
	DiscoveryAPI = "api"
	// DiscoveryFeed reads article URLs from an RSS/Atom feed.
	DiscoveryFeed = "feed"
	// DiscoverySitemap reads article URLs from a sitemap.
	DiscoverySitemap = "sitemap"
)

// Default crawl limits applied when a profile leaves them unset.
const (
	DefaultMaxCategories          = 30
	DefaultMaxArticlesPerCategory = 50
	DefaultMaxArticles            = 200
	DefaultMaxRetries             = 2
	DefaultDelay                  = time.Second
	DefaultBackoff                = 2 * time.Second
	DefaultTimeout                = 30 * time.Second
)

// Profile is the configuration record for one site. Profiles are pure data:
// the crawler consumes them read-only.
type Profile struct {
	// Key is the globally unique site identifier.
	Key string `yaml:"key" mapstructure:"key"`
	// BaseURL is the site's base URL, scheme and host required.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// HomePath is the path fetched for category discovery. Defaults to "/".
	HomePath string `yaml:"home_path" mapstructure:"home_path"`
	// Discovery selects the discovery strategy: html, api, feed, sitemap.
	// Defaults to html.
	Discovery string `yaml:"discovery" mapstructure:"discovery"`
	// APIEndpoint is the JSON category-list endpoint for api discovery.
	APIEndpoint string `yaml:"api_endpoint" mapstructure:"api_endpoint"`
	// FeedPath is the RSS/Atom feed path for feed discovery.
	FeedPath string `yaml:"feed_path" mapstructure:"feed_path"`
	// SitemapPath is the sitemap path for sitemap discovery.
	SitemapPath string `yaml:"sitemap_path" mapstructure:"sitemap_path"`

	// CategoryPathPattern is a path template with one {slug} placeholder,
	// e.g. "/{slug}" or "/chuyen-muc/{slug}.htm". Empty means the discovered
	// path is used verbatim.
	CategoryPathPattern string `yaml:"category_path_pattern" mapstructure:"category_path_pattern"`
	// KeepDiscoveredPaths disables category path canonicalization: the
	// discovered path is kept instead of substituting the slug back into
	// CategoryPathPattern.
	KeepDiscoveredPaths bool `yaml:"keep_discovered_paths" mapstructure:"keep_discovered_paths"`
	// KeepQuery keeps the query string during URL normalization. Needed by
	// sites whose article identity lives in a query parameter.
	KeepQuery bool `yaml:"keep_query" mapstructure:"keep_query"`

	// Link filter lists. Empty allow-lists mean "allow all"; deny-lists
	// always apply.
	DeniedExactPaths          []string `yaml:"denied_exact_paths" mapstructure:"denied_exact_paths"`
	CategoryAllowPrefixes     []string `yaml:"category_allow_prefixes" mapstructure:"category_allow_prefixes"`
	CategoryDenyPrefixes      []string `yaml:"category_deny_prefixes" mapstructure:"category_deny_prefixes"`
	CategoryDenyRegexes       []string `yaml:"category_deny_regexes" mapstructure:"category_deny_regexes"`
	ArticleAllowPrefixes      []string `yaml:"article_allow_prefixes" mapstructure:"article_allow_prefixes"`
	ArticleDenyPrefixes       []string `yaml:"article_deny_prefixes" mapstructure:"article_deny_prefixes"`
	ArticleDenyRegexes        []string `yaml:"article_deny_regexes" mapstructure:"article_deny_regexes"`
	ArticleAllowedSuffixes    []string `yaml:"article_allowed_suffixes" mapstructure:"article_allowed_suffixes"`
	ArticleAllowedPathRegexes []string `yaml:"article_allowed_path_regexes" mapstructure:"article_allowed_path_regexes"`
	// CategoryHostSuffixes and ArticleHostSuffixes restrict which hosts a
	// category or article link may live on. Checked independently because
	// some sites serve articles from a different subdomain than listings.
	CategoryHostSuffixes []string `yaml:"category_host_suffixes" mapstructure:"category_host_suffixes"`
	ArticleHostSuffixes  []string `yaml:"article_host_suffixes" mapstructure:"article_host_suffixes"`

	// AllowedLocales are locale prefixes accepted for article pages,
	// e.g. ["vi"]. Empty accepts any locale.
	AllowedLocales []string `yaml:"allowed_locales" mapstructure:"allowed_locales"`

	// Selectors are the per-site CSS selectors layered over the generic
	// extraction heuristics.
	Selectors Selectors `yaml:"selectors" mapstructure:"selectors"`

	// RateLimit configures the fetch throttle and retry policy.
	RateLimit RateLimit `yaml:"rate_limit" mapstructure:"rate_limit"`

	// TLSRelaxedHostPrefixes opts hosts (by prefix match) into a relaxed TLS
	// context: legacy renegotiation and old protocol versions accepted.
	TLSRelaxedHostPrefixes []string `yaml:"tls_relaxed_host_prefixes" mapstructure:"tls_relaxed_host_prefixes"`

	// ForcedCategoryID and ForcedCategoryName unconditionally replace any
	// extracted category. A downstream-classification requirement for a
	// handful of sites.
	ForcedCategoryID   string `yaml:"forced_category_id" mapstructure:"forced_category_id"`
	ForcedCategoryName string `yaml:"forced_category_name" mapstructure:"forced_category_name"`

	// CategoryFallbackFromListing lets an article missing both category id
	// and name inherit the listing category instead of being skipped.
	CategoryFallbackFromListing bool `yaml:"category_fallback_from_listing" mapstructure:"category_fallback_from_listing"`

	// PlaceholderTitles are exact titles of known placeholder or soft-404
	// pages; matching articles are skipped.
	PlaceholderTitles []string `yaml:"placeholder_titles" mapstructure:"placeholder_titles"`

	// Crawl caps.
	MaxCategories          int `yaml:"max_categories" mapstructure:"max_categories"`
	MaxArticlesPerCategory int `yaml:"max_articles_per_category" mapstructure:"max_articles_per_category"`
	// MaxArticles caps inserted articles for the whole site run.
	MaxArticles int `yaml:"max_articles" mapstructure:"max_articles"`
}

// Selectors are the per-site CSS selector strings consumed by discovery and
// extraction. All are optional; generic heuristics run as fallback.
type Selectors struct {
	// ArticleLinks selects article anchors on a category listing page.
	ArticleLinks string `yaml:"article_links" mapstructure:"article_links"`
	// Title selectors tried before the generic title chain's heading fallback.
	Title []string `yaml:"title" mapstructure:"title"`
	// Description selectors tried after the meta-tag chain.
	Description []string `yaml:"description" mapstructure:"description"`
	// Summary selectors for the lead paragraph (sapo).
	Summary []string `yaml:"summary" mapstructure:"summary"`
	// Content selectors locating the main article container.
	Content []string `yaml:"content" mapstructure:"content"`
	// Exclude selectors removed from the container before extraction.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`
}

// RateLimit configures the per-site throttle and retry policy.
type RateLimit struct {
	// Delay is the minimum spacing between requests.
	Delay time.Duration `yaml:"delay" mapstructure:"delay"`
	// Jitter is an additional random delay in [0, Jitter) per request.
	Jitter time.Duration `yaml:"jitter" mapstructure:"jitter"`
	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// Backoff is the base of the exponential retry backoff.
	Backoff time.Duration `yaml:"backoff" mapstructure:"backoff"`
	// Timeout bounds a single request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// errors returned by Validate.
var (
	ErrMissingKey      = errors.New("site profile: key is required")
	ErrMissingBaseURL  = errors.New("site profile: base_url is required")
	ErrBadBaseURL      = errors.New("site profile: base_url must be a valid http(s) URL")
	ErrBadSlugPattern  = errors.New("site profile: category_path_pattern must contain exactly one {slug}")
	ErrUnknownStrategy = errors.New("site profile: unknown discovery strategy")
)

// Validate checks the profile's structural invariants and compiles its
// regular expressions so bad patterns surface at load time, not mid-crawl.
func (p *Profile) Validate() error {
	if p.Key == "" {
		return ErrMissingKey
	}
	if p.BaseURL == "" {
		return fmt.Errorf("%w (site %s)", ErrMissingBaseURL, p.Key)
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w (site %s)", ErrBadBaseURL, p.Key)
	}
	if p.CategoryPathPattern != "" && strings.Count(p.CategoryPathPattern, "{slug}") != 1 {
		return fmt.Errorf("%w (site %s)", ErrBadSlugPattern, p.Key)
	}
	switch p.Discovery {
	case "", DiscoveryHTML, DiscoveryAPI, DiscoveryFeed, DiscoverySitemap:
	default:
		return fmt.Errorf("%w %q (site %s)", ErrUnknownStrategy, p.Discovery, p.Key)
	}
	for _, pattern := range append(append([]string{}, p.CategoryDenyRegexes...),
		append(p.ArticleDenyRegexes, p.ArticleAllowedPathRegexes...)...) {
		if _, compileErr := regexp.Compile(pattern); compileErr != nil {
			return fmt.Errorf("site profile %s: bad regex %q: %w", p.Key, pattern, compileErr)
		}
	}
	return nil
}

// applyDefaults fills unset limits with package defaults.
func (p *Profile) applyDefaults() {
	if p.HomePath == "" {
		p.HomePath = "/"
	}
	if p.Discovery == "" {
		p.Discovery = DiscoveryHTML
	}
	if p.MaxCategories <= 0 {
		p.MaxCategories = DefaultMaxCategories
	}
	if p.MaxArticlesPerCategory <= 0 {
		p.MaxArticlesPerCategory = DefaultMaxArticlesPerCategory
	}
	if p.MaxArticles <= 0 {
		p.MaxArticles = DefaultMaxArticles
	}
	if p.RateLimit.Delay <= 0 {
		p.RateLimit.Delay = DefaultDelay
	}
	if p.RateLimit.MaxRetries <= 0 {
		p.RateLimit.MaxRetries = DefaultMaxRetries
	}
	if p.RateLimit.Backoff <= 0 {
		p.RateLimit.Backoff = DefaultBackoff
	}
	if p.RateLimit.Timeout <= 0 {
		p.RateLimit.Timeout = DefaultTimeout
	}
}

// Base returns the parsed base URL. Validate must have succeeded first.
func (p *Profile) Base() *url.URL {
	u, _ := url.Parse(p.BaseURL)
	return u
}
