package crawler

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/logger"
)

// runClock is a seam for time in stats; production code uses time.Now.
var runClock = time.Now

// SiteStats accumulates the counters of one site's crawl pass.
type SiteStats struct {
	SiteKey    string
	Categories int
	Inserted   int
	Skipped    int
	Failed     int
	// SkipReasons breaks Skipped down by reason.
	SkipReasons map[domain.SkipReason]int
	// SetupErr is set when the site could not start at all.
	SetupErr error

	started  time.Time
	Duration time.Duration
}

// NewSiteStats starts a stats record for one site.
func NewSiteStats(key string) *SiteStats {
	return &SiteStats{
		SiteKey:     key,
		SkipReasons: make(map[domain.SkipReason]int),
		started:     runClock(),
	}
}

// Finish freezes the run duration.
func (s *SiteStats) Finish() {
	s.Duration = runClock().Sub(s.started)
}

// Record counts one article outcome and logs it at the appropriate level:
// inserts at info, skips at debug (already-seen silently), failures at
// error. Skips are expected and must stay distinguishable from failures.
func (s *SiteStats) Record(articleURL string, outcome domain.Outcome, log logger.Interface) {
	switch outcome.Status {
	case domain.StatusInserted:
		s.Inserted++
		log.Info("article inserted", "url", articleURL, "title", outcome.Article.Title)
	case domain.StatusSkipped:
		s.Skipped++
		s.SkipReasons[outcome.Reason]++
		if outcome.Reason != domain.SkipAlreadySeen {
			log.Debug("article skipped", "url", articleURL, "reason", string(outcome.Reason))
		}
	case domain.StatusFailed:
		s.Failed++
		log.Error("article failed", "url", articleURL, "error", outcome.Err.Error())
	}
}

// RenderReport writes a summary table of all site stats to w.
func RenderReport(w io.Writer, stats []*SiteStats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Site", "Categories", "Inserted", "Skipped", "Failed", "Duration"})

	var totalInserted, totalSkipped, totalFailed int
	for _, s := range stats {
		row := table.Row{s.SiteKey, s.Categories, s.Inserted, s.Skipped, s.Failed, s.Duration.Round(time.Second)}
		if s.SetupErr != nil {
			row = table.Row{s.SiteKey, text.FgRed.Sprint("setup failed"), "-", "-", "-", s.Duration.Round(time.Second)}
		}
		t.AppendRow(row)
		totalInserted += s.Inserted
		totalSkipped += s.Skipped
		totalFailed += s.Failed
	}

	t.AppendFooter(table.Row{"Total", "", totalInserted, totalSkipped, totalFailed, ""})
	t.Render()
}
