package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
)

// ErrDuplicateURL is returned when Save hits an article URL that is
// already stored. Callers should check with errors.Is().
var ErrDuplicateURL = errors.New("article URL already stored")

// Column width limits matching the schema. Values are truncated, not
// rejected: a too-long title is still an article worth keeping.
const (
	maxTitleLength      = 512
	maxAuthorLength     = 255
	maxCategoryIDLength = 255
	maxCategoryLength   = 255
	maxExternalIDLength = 128
	maxMediaURLLength   = 2048
)

// ArticleRepository handles database operations for crawled articles.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// ExistsByURL reports whether an article with this URL is already stored.
func (r *ArticleRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`
	if err := r.db.GetContext(ctx, &exists, query, url); err != nil {
		return false, fmt.Errorf("check article exists: %w", err)
	}
	return exists, nil
}

// Save stores one article with its images and videos in a single
// transaction: either the whole record lands or none of it does. The
// insert is keyed by URL; a concurrent duplicate returns ErrDuplicateURL
// instead of a partial write.
func (r *ArticleRepository) Save(ctx context.Context, article *domain.Article) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if article.ID == "" {
		article.ID = uuid.NewString()
	}

	inserted, insertErr := insertArticle(ctx, tx, article)
	if insertErr != nil {
		return insertErr
	}
	if !inserted {
		return fmt.Errorf("%w: %s", ErrDuplicateURL, article.URL)
	}

	for position, imageURL := range article.Images {
		if appendErr := appendImage(ctx, tx, article.ID, imageURL, position); appendErr != nil {
			return appendErr
		}
	}
	for position, videoURL := range article.Videos {
		if appendErr := appendVideo(ctx, tx, article.ID, videoURL, position); appendErr != nil {
			return appendErr
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit save transaction: %w", commitErr)
	}
	return nil
}

// CountBySite returns the number of stored articles whose URL starts with
// the site's base URL.
func (r *ArticleRepository) CountBySite(ctx context.Context, baseURL string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM articles WHERE url LIKE $1 || '%'`
	if err := r.db.GetContext(ctx, &count, query, baseURL); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// insertArticle inserts the article row. Returns false without error when
// the URL conflicted with an existing row.
func insertArticle(ctx context.Context, tx *sqlx.Tx, article *domain.Article) (bool, error) {
	query := `
		INSERT INTO articles (
			id, url, title, description, body_text, body_html,
			category_id, category_name, tags, published_at, modified_at,
			author, external_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (url) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, query,
		article.ID,
		article.URL,
		clip(article.Title, maxTitleLength),
		article.BestDescription(),
		article.BodyText,
		article.BodyHTML,
		clip(article.CategoryID, maxCategoryIDLength),
		clip(article.CategoryName, maxCategoryLength),
		article.TagsString(),
		article.PublishedAt,
		article.ModifiedAt,
		clip(article.Author, maxAuthorLength),
		clip(article.ExternalID, maxExternalIDLength),
		article.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert article rows affected: %w", err)
	}
	return affected > 0, nil
}

// appendImage inserts one ordered image row for the article.
func appendImage(ctx context.Context, tx *sqlx.Tx, articleID, imageURL string, position int) error {
	query := `
		INSERT INTO article_images (article_id, url, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_id, url) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, articleID, clip(imageURL, maxMediaURLLength), position); err != nil {
		return fmt.Errorf("append article image: %w", err)
	}
	return nil
}

// appendVideo inserts one ordered video row for the article.
func appendVideo(ctx context.Context, tx *sqlx.Tx, articleID, videoURL string, position int) error {
	query := `
		INSERT INTO article_videos (article_id, url, position)
		VALUES ($1, $2, $3)
		ON CONFLICT (article_id, url) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, articleID, clip(videoURL, maxMediaURLLength), position); err != nil {
		return fmt.Errorf("append article video: %w", err)
	}
	return nil
}

// clip truncates a value to the column width, cutting at a rune boundary.
func clip(value string, max int) string {
	if len(value) <= max {
		return value
	}
	runes := []rune(value)
	for len(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
