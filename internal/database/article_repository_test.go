package database_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/database"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
)

func newArticleRepo(t *testing.T) (*database.ArticleRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return database.NewArticleRepository(db), mock
}

func sampleArticle() *domain.Article {
	published := time.Date(2025, 5, 12, 8, 30, 0, 0, time.UTC)
	return &domain.Article{
		URL:          "https://example.vn/bai-viet-1234567.html",
		Title:        "Tiêu đề",
		Description:  "Mô tả",
		BodyText:     "Thân bài",
		CategoryID:   "kinh_te",
		CategoryName: "Kinh tế",
		Tags:         []string{"gạo", "xuất khẩu"},
		PublishedAt:  &published,
		Images:       []string{"https://example.vn/images/a.jpg"},
		Videos:       []string{"https://example.vn/video/a.mp4"},
		CreatedAt:    time.Now(),
	}
}

func TestConfigDSN(t *testing.T) {
	t.Parallel()

	cfg := database.Config{
		Host:     "db.internal",
		Port:     "5432",
		User:     "crawler",
		Password: "s3cret",
		DBName:   "vnnews",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=crawler password=s3cret dbname=vnnews sslmode=disable",
		cfg.DSN())
}

func TestExistsByURL(t *testing.T) {
	repo, mock := newArticleRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("https://example.vn/bai-viet.html").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByURL(context.Background(), "https://example.vn/bai-viet.html")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveInsertsArticleWithMedia(t *testing.T) {
	repo, mock := newArticleRepo(t)
	article := sampleArticle()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO articles").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO article_images").
		WithArgs(sqlmock.AnyArg(), "https://example.vn/images/a.jpg", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO article_videos").
		WithArgs(sqlmock.AnyArg(), "https://example.vn/video/a.mp4", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), article))
	assert.NotEmpty(t, article.ID, "an id is assigned on first save")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDuplicateURLRollsBack(t *testing.T) {
	repo, mock := newArticleRepo(t)
	article := sampleArticle()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO articles").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), article)
	require.ErrorIs(t, err, database.ErrDuplicateURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTruncatesOverlongTitle(t *testing.T) {
	repo, mock := newArticleRepo(t)
	article := sampleArticle()
	article.Title = strings.Repeat("ă", 600)
	article.Images = nil
	article.Videos = nil

	// 600 two-byte runes clip to 256, the most that fit 512 bytes.
	truncated := strings.Repeat("ă", 256)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO articles").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), truncated, sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Save(context.Background(), article))
	require.NoError(t, mock.ExpectationsWereMet())
}
