// Package crawler drives the per-site crawl: discovery, fetch, extraction
// and persistence, with per-article failure isolation. One bad page never
// aborts a site; one unreachable site never aborts a run.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/database"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/discover"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/extract"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/fetch"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

// minBodyTextLength is the minimum extracted body length in characters
// below which an article counts as a placeholder and is skipped.
const minBodyTextLength = 50

// ArticleStore is the persistence capability the crawler needs. Satisfied
// by database.ArticleRepository.
type ArticleStore interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Save(ctx context.Context, article *domain.Article) error
}

// Config carries run-wide crawler settings.
type Config struct {
	// UserAgent sent on every request.
	UserAgent string
	// AcceptLanguage sent on every request when non-empty.
	AcceptLanguage string
	// MaxArticles, when positive, overrides every profile's inserted-article cap.
	MaxArticles int
}

// Crawler orchestrates crawl passes over registered sites.
type Crawler struct {
	registry  *sites.Registry
	store     ArticleStore
	extractor *extract.Extractor
	cfg       Config
	log       logger.Interface
}

// New creates a crawler over the given registry and store.
func New(registry *sites.Registry, store ArticleStore, cfg Config, log logger.Interface) *Crawler {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Crawler{
		registry:  registry,
		store:     store,
		extractor: extract.NewExtractor(log, nil),
		cfg:       cfg,
		log:       log,
	}
}

// Run crawls the named sites sequentially and returns per-site stats. An
// empty key list means every registered site. Unknown keys and per-site
// setup failures are reported in the stats, not returned as errors;
// context cancellation is the only early return.
func (c *Crawler) Run(ctx context.Context, keys []string) ([]*SiteStats, error) {
	if len(keys) == 0 {
		keys = c.registry.Keys()
	}

	stats := make([]*SiteStats, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		siteStats := c.runSite(ctx, key)
		stats = append(stats, siteStats)
	}
	return stats, ctx.Err()
}

// runSite crawls one site end to end. Every failure mode lands in the
// stats; the method itself never fails.
func (c *Crawler) runSite(ctx context.Context, key string) *SiteStats {
	stats := NewSiteStats(key)
	defer stats.Finish()

	profile, err := c.registry.Get(key)
	if err != nil {
		c.log.Error("unknown site key", "site", key)
		stats.SetupErr = err
		return stats
	}

	if c.cfg.MaxArticles > 0 {
		profile.MaxArticles = c.cfg.MaxArticles
	}

	log := c.log.WithSite(key)
	client := fetch.NewClient(fetch.Config{
		Delay:                  profile.RateLimit.Delay,
		Jitter:                 profile.RateLimit.Jitter,
		MaxRetries:             profile.RateLimit.MaxRetries,
		Backoff:                profile.RateLimit.Backoff,
		Timeout:                profile.RateLimit.Timeout,
		UserAgent:              c.cfg.UserAgent,
		AcceptLanguage:         c.cfg.AcceptLanguage,
		TLSRelaxedHostPrefixes: profile.TLSRelaxedHostPrefixes,
	}, log)

	discoverer, err := discover.NewDiscoverer(&profile, client, log)
	if err != nil {
		log.Error("site setup failed", "error", err.Error())
		stats.SetupErr = err
		return stats
	}

	log.Info("site crawl started", "discovery", profile.Discovery)

	categories := discoverer.Categories(ctx)
	stats.Categories = len(categories)
	if len(categories) == 0 {
		log.Warn("no categories discovered, site yields nothing")
		return stats
	}

	seen := make(map[string]struct{})

	for _, category := range categories {
		if ctx.Err() != nil {
			return stats
		}
		log.Debug("processing category", "category", category.URL)

		for _, articleURL := range discoverer.Articles(ctx, category) {
			if ctx.Err() != nil {
				return stats
			}

			outcome := c.processArticle(ctx, client, &profile, category, articleURL, seen)
			stats.Record(articleURL, outcome, log)

			if stats.Inserted >= profile.MaxArticles {
				log.Info("site article cap reached", "inserted", stats.Inserted)
				return stats
			}
		}
	}

	log.Info("site crawl finished",
		"inserted", stats.Inserted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats
}

// processArticle runs the fetch/extract/persist pipeline for one URL and
// classifies the result. Skips are expected outcomes; only fetch,
// extraction and persistence errors count as failures.
func (c *Crawler) processArticle(
	ctx context.Context,
	client *fetch.Client,
	profile *sites.Profile,
	category domain.Category,
	articleURL string,
	seen map[string]struct{},
) domain.Outcome {
	if _, dup := seen[articleURL]; dup {
		return domain.Skipped(domain.SkipAlreadySeen)
	}
	seen[articleURL] = struct{}{}

	exists, err := c.store.ExistsByURL(ctx, articleURL)
	if err != nil {
		return domain.Failed(fmt.Errorf("existence check: %w", err))
	}
	if exists {
		return domain.Skipped(domain.SkipAlreadySeen)
	}

	body, err := client.Fetch(ctx, articleURL)
	if err != nil {
		return domain.Failed(fmt.Errorf("fetch article: %w", err))
	}

	article, err := c.extractor.Extract(body, articleURL, profile.Selectors)
	if err != nil {
		return domain.Failed(fmt.Errorf("extract article: %w", err))
	}

	// The title column is non-null; the URL itself is the fallback of last
	// resort.
	if article.Title == "" {
		article.Title = articleURL
	}

	if reason, skip := c.shouldSkip(profile, category, article); skip {
		return domain.Skipped(reason)
	}

	if err := c.store.Save(ctx, article); err != nil {
		if errors.Is(err, database.ErrDuplicateURL) {
			// A concurrent writer got there first; the unique constraint
			// closed the check-then-insert race.
			return domain.Skipped(domain.SkipAlreadySeen)
		}
		return domain.Failed(fmt.Errorf("save article: %w", err))
	}

	return domain.Inserted(article)
}

// shouldSkip applies the skip policy: locale mismatch, placeholder title,
// too-short body, unresolvable category. The forced-category and
// listing-fallback site flags are applied here, before the category check.
func (c *Crawler) shouldSkip(profile *sites.Profile, category domain.Category, article *domain.Article) (domain.SkipReason, bool) {
	if profile.ForcedCategoryID != "" || profile.ForcedCategoryName != "" {
		article.CategoryID = profile.ForcedCategoryID
		article.CategoryName = profile.ForcedCategoryName
	}

	if article.Locale != "" && !localeAllowed(article.Locale, profile.AllowedLocales) {
		return domain.SkipLocaleMismatch, true
	}

	for _, placeholder := range profile.PlaceholderTitles {
		if article.Title == placeholder {
			return domain.SkipPlaceholderPage, true
		}
	}

	if utf8.RuneCountInString(article.BodyText) < minBodyTextLength {
		return domain.SkipBodyTooShort, true
	}

	if article.CategoryID == "" && article.CategoryName == "" {
		if !profile.CategoryFallbackFromListing {
			return domain.SkipNoCategory, true
		}
		article.CategoryID = extract.Slugify(category.Slug)
		article.CategoryName = category.Name
		if article.CategoryName == "" {
			article.CategoryName = category.Slug
		}
	}

	return "", false
}

// localeAllowed reports whether the declared locale starts with any
// allowed token. An empty allow-list accepts everything.
func localeAllowed(locale string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, prefix := range allowed {
		if strings.HasPrefix(locale, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// interface guard
var _ ArticleStore = (*database.ArticleRepository)(nil)
