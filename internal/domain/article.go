// Package domain provides domain models used across the application.
package domain

import (
	"strings"
	"time"
)

// Article is the canonical record extracted from one article page.
// It is created once per successfully extracted page and never mutated
// after creation; the store writes it exactly once, keyed by URL.
type Article struct {
	// ID is the database row identifier, assigned by the store on insert.
	ID string `db:"id" json:"id"`
	// URL is the canonical article URL and the dedup key across the crawl.
	URL string `db:"url" json:"url"`
	// Title of the article.
	Title string `db:"title" json:"title"`
	// Description from meta tags or generic body-summary selectors.
	Description string `db:"description" json:"description,omitempty"`
	// Summary is the lead paragraph ("sapo"), distinct from Description.
	Summary string `db:"summary" json:"summary,omitempty"`
	// BodyText is the assembled plain-text body.
	BodyText string `db:"body_text" json:"body_text,omitempty"`
	// BodyHTML is the cleaned markup of the main container.
	BodyHTML string `db:"body_html" json:"body_html,omitempty"`
	// CategoryID is the resolved category identifier.
	CategoryID string `db:"category_id" json:"category_id,omitempty"`
	// CategoryName is the human-readable category name.
	CategoryName string `db:"category_name" json:"category_name,omitempty"`
	// Tags, ordered and deduplicated case-insensitively. Nil when none found.
	Tags []string `db:"-" json:"tags,omitempty"`
	// PublishedAt is the publish date, when one could be parsed.
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	// ModifiedAt is the last-modified date, when one could be parsed.
	ModifiedAt *time.Time `db:"modified_at" json:"modified_at,omitempty"`
	// Author of the article.
	Author string `db:"author" json:"author,omitempty"`
	// ExternalID is the site's own article identifier, when present.
	ExternalID string `db:"external_id" json:"external_id,omitempty"`
	// Locale declared by the page (html lang or locale meta). Not persisted;
	// the orchestrator uses it for the locale-mismatch skip check.
	Locale string `db:"-" json:"-"`
	// Images are the in-body image URLs, ordered and deduplicated.
	Images []string `db:"-" json:"images,omitempty"`
	// Videos are the in-body video URLs, ordered and deduplicated.
	Videos []string `db:"-" json:"videos,omitempty"`
	// CreatedAt is the record creation timestamp.
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TagsString returns tags as a comma-separated string.
func (a *Article) TagsString() string {
	if len(a.Tags) == 0 {
		return ""
	}
	return strings.Join(a.Tags, ", ")
}

// BestDescription returns the longer of Description and Summary. The store
// keeps a single description column; the richer of the two wins.
func (a *Article) BestDescription() string {
	if len(a.Summary) > len(a.Description) {
		return a.Summary
	}
	return a.Description
}

// Category is a discovered category endpoint. It lives only for the
// duration of one category's processing and is never persisted.
type Category struct {
	// URL is the canonical category URL.
	URL string `json:"url"`
	// Slug is the short identifier derived from the URL path.
	Slug string `json:"slug"`
	// Name is an optional display name from the link text.
	Name string `json:"name,omitempty"`
}
