package domain

// OutcomeStatus classifies the result of processing one article URL.
type OutcomeStatus string

const (
	// StatusInserted means the article was extracted and persisted.
	StatusInserted OutcomeStatus = "inserted"
	// StatusSkipped means the article was deliberately not persisted.
	// Skips are expected outcomes, not errors.
	StatusSkipped OutcomeStatus = "skipped"
	// StatusFailed means fetching or persisting the article errored.
	StatusFailed OutcomeStatus = "failed"
)

// SkipReason names why an article was skipped.
type SkipReason string

const (
	// SkipAlreadySeen: the URL already exists in the store or this run.
	SkipAlreadySeen SkipReason = "already_seen"
	// SkipLocaleMismatch: the page locale is outside the site's allow-list.
	SkipLocaleMismatch SkipReason = "locale_mismatch"
	// SkipPlaceholderPage: the page is a known placeholder or soft 404.
	SkipPlaceholderPage SkipReason = "placeholder_page"
	// SkipBodyTooShort: the extracted body text is below the minimum length.
	SkipBodyTooShort SkipReason = "body_too_short"
	// SkipNoCategory: no category id or name could be resolved.
	SkipNoCategory SkipReason = "no_category"
)

// Outcome is the tagged result of the per-article pipeline. Exactly one of
// Article (inserted), Reason (skipped) or Err (failed) is meaningful.
type Outcome struct {
	Status  OutcomeStatus
	Article *Article
	Reason  SkipReason
	Err     error
}

// Inserted builds an inserted outcome.
func Inserted(a *Article) Outcome {
	return Outcome{Status: StatusInserted, Article: a}
}

// Skipped builds a skipped outcome with the given reason.
func Skipped(reason SkipReason) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// Failed builds a failed outcome wrapping the given error.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
