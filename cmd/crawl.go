package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/crawler"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/database"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

// newCrawlCommand builds the crawl command: one pass over the selected
// sites, or a recurring run when --schedule is given.
func newCrawlCommand() *cobra.Command {
	var (
		siteKeys    []string
		schedule    string
		maxArticles int
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the configured sites and store extracted articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			registry, err := sites.LoadFile(cfg.Crawl.SitesFile)
			if err != nil {
				return fmt.Errorf("load sites: %w", err)
			}

			db, err := database.NewPostgresConnection(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := database.NewArticleRepository(db)
			c := crawler.New(registry, repo, crawler.Config{
				UserAgent:      cfg.Crawl.UserAgent,
				AcceptLanguage: cfg.Crawl.AcceptLanguage,
				MaxArticles:    maxArticles,
			}, log)

			if schedule != "" {
				return runScheduled(ctx, c, siteKeys, schedule, log)
			}

			runErr := runOnce(ctx, c, siteKeys)
			logStoredTotals(ctx, repo, registry, siteKeys, log)
			return runErr
		},
	}

	cmd.Flags().StringSliceVar(&siteKeys, "sites", nil, "site keys to crawl (default: all registered sites)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression for recurring crawls, e.g. \"0 */6 * * *\"")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 0, "override the per-site inserted-article cap")
	return cmd
}

// runOnce performs one crawl pass and prints the summary table.
func runOnce(ctx context.Context, c *crawler.Crawler, siteKeys []string) error {
	stats, err := c.Run(ctx, siteKeys)
	crawler.RenderReport(os.Stdout, stats)
	return err
}

// logStoredTotals logs the cumulative stored article count for each
// crawled site, on top of the per-pass numbers in the summary table.
func logStoredTotals(ctx context.Context, repo *database.ArticleRepository, registry *sites.Registry, siteKeys []string, log logger.Interface) {
	if len(siteKeys) == 0 {
		siteKeys = registry.Keys()
	}
	for _, key := range siteKeys {
		profile, err := registry.Get(key)
		if err != nil {
			continue
		}
		count, err := repo.CountBySite(ctx, profile.BaseURL)
		if err != nil {
			log.Warn("stored article count unavailable", "site", key, "error", err.Error())
			continue
		}
		log.Info("stored articles", "site", key, "total", count)
	}
}

// runScheduled runs crawl passes on the cron schedule until the context is
// cancelled. Entries do not overlap: a pass still in flight when the next
// tick fires makes the tick a no-op via cron's built-in skipping.
func runScheduled(ctx context.Context, c *crawler.Crawler, siteKeys []string, schedule string, log logger.Interface) error {
	runner := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := runner.AddFunc(schedule, func() {
		log.Info("scheduled crawl pass starting")
		if runErr := runOnce(ctx, c, siteKeys); runErr != nil && ctx.Err() == nil {
			log.Error("scheduled crawl pass failed", "error", runErr.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	log.Info("crawl scheduler started", "schedule", schedule)
	runner.Start()
	<-ctx.Done()

	stopCtx := runner.Stop()
	<-stopCtx.Done()
	log.Info("crawl scheduler stopped")
	return nil
}
