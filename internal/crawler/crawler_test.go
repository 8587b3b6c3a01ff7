package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/crawler"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/database"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/domain"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

// fakeStore is an in-memory ArticleStore.
type fakeStore struct {
	mu    sync.Mutex
	urls  map[string]*domain.Article
	fail  bool
	order []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{urls: make(map[string]*domain.Article)}
}

func (s *fakeStore) ExistsByURL(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.urls[url]
	return ok, nil
}

func (s *fakeStore) Save(_ context.Context, article *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("save failed")
	}
	if _, dup := s.urls[article.URL]; dup {
		return fmt.Errorf("%w: %s", database.ErrDuplicateURL, article.URL)
	}
	s.urls[article.URL] = article
	s.order = append(s.order, article.URL)
	return nil
}

// sitePages builds a site: a home page linking one category, a listing
// linking the given article paths, and article pages from the bodies map.
func sitePages(articles map[string]string) map[string]string {
	listing := "<html><body>"
	for path := range articles {
		listing += fmt.Sprintf(`<h2><a href="%s">link</a></h2>`, path)
	}
	listing += "</body></html>"

	pages := map[string]string{
		"/":        `<html><body><a href="/kinh-te">Kinh tế</a></body></html>`,
		"/kinh-te": listing,
	}
	for path, body := range articles {
		pages[path] = body
	}
	return pages
}

func serve(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestCrawler(t *testing.T, profile sites.Profile, store crawler.ArticleStore) *crawler.Crawler {
	t.Helper()
	registry, err := sites.NewRegistry([]sites.Profile{profile})
	require.NoError(t, err)
	return crawler.New(registry, store, crawler.Config{}, nil)
}

func baseProfile(baseURL string) sites.Profile {
	return sites.Profile{
		Key:                 "test",
		BaseURL:             baseURL,
		CategoryPathPattern: "/{slug}",
		RateLimit:           sites.RateLimit{Delay: 1, MaxRetries: 1, Backoff: 1},
	}
}

const goodArticle = `<html lang="vi"><head>
<meta property="og:title" content="Bài viết hợp lệ"></head><body>
<ul class="breadcrumb"><li><a href="/kinh-te">Kinh tế</a></li></ul>
<article><p>Phần thân bài viết có độ dài vượt ngưỡng tối thiểu năm mươi ký tự để không bị bỏ qua.</p></article>
</body></html>`

func TestRunInsertsArticles(t *testing.T) {
	t.Parallel()

	server := serve(t, sitePages(map[string]string{
		"/bai-mot-1111111.html": goodArticle,
		"/bai-hai-2222222.html": goodArticle,
	}))
	store := newFakeStore()

	c := newTestCrawler(t, baseProfile(server.URL), store)
	stats, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, 1, stats[0].Categories)
	assert.Equal(t, 2, stats[0].Inserted)
	assert.Zero(t, stats[0].Skipped)
	assert.Zero(t, stats[0].Failed)
	assert.Len(t, store.urls, 2)

	for _, article := range store.urls {
		assert.Equal(t, "Bài viết hợp lệ", article.Title)
		assert.Equal(t, "kinh_te", article.CategoryID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	server := serve(t, sitePages(map[string]string{
		"/bai-mot-1111111.html": goodArticle,
	}))
	store := newFakeStore()
	c := newTestCrawler(t, baseProfile(server.URL), store)

	_, err := c.Run(context.Background(), nil)
	require.NoError(t, err)

	stats, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, stats[0].Inserted)
	assert.Equal(t, 1, stats[0].Skipped)
	assert.Equal(t, 1, stats[0].SkipReasons[domain.SkipAlreadySeen])
	assert.Len(t, store.urls, 1, "second pass stores nothing new")
}

func TestRunSkipReasons(t *testing.T) {
	t.Parallel()

	shortBody := `<html lang="vi"><body>
	<ul class="breadcrumb"><li><a href="/kinh-te">Kinh tế</a></li></ul>
	<article><p>Quá ngắn.</p></article></body></html>`

	wrongLocale := `<html lang="en"><body>
	<ul class="breadcrumb"><li><a href="/world">World</a></li></ul>
	<article><p>This page declares an English locale and therefore must be skipped by policy.</p></article>
	</body></html>`

	placeholder := `<html lang="vi"><head><meta property="og:title" content="Trang không tồn tại"></head><body>
	<article><p>Nội dung trang giữ chỗ vẫn đủ dài để vượt qua ngưỡng ký tự tối thiểu của phần thân.</p></article>
	</body></html>`

	noCategory := `<html lang="vi"><body>
	<article><p>Bài viết không có breadcrumb nào nên không thể phân loại được chuyên mục cả.</p></article>
	</body></html>`

	server := serve(t, sitePages(map[string]string{
		"/bai-ngan-1111111.html":      shortBody,
		"/bai-tieng-anh-2222222.html": wrongLocale,
		"/bai-giu-cho-3333333.html":   placeholder,
		"/bai-khong-muc-4444444.html": noCategory,
	}))

	profile := baseProfile(server.URL)
	profile.AllowedLocales = []string{"vi"}
	profile.PlaceholderTitles = []string{"Trang không tồn tại"}

	store := newFakeStore()
	c := newTestCrawler(t, profile, store)

	stats, err := c.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, stats[0].Inserted)
	assert.Equal(t, 4, stats[0].Skipped)
	assert.Zero(t, stats[0].Failed)
	assert.Equal(t, 1, stats[0].SkipReasons[domain.SkipBodyTooShort])
	assert.Equal(t, 1, stats[0].SkipReasons[domain.SkipLocaleMismatch])
	assert.Equal(t, 1, stats[0].SkipReasons[domain.SkipPlaceholderPage])
	assert.Equal(t, 1, stats[0].SkipReasons[domain.SkipNoCategory])
}

func TestRunSkipsShortMultibyteBody(t *testing.T) {
	t.Parallel()

	// 49 characters but over 60 bytes of UTF-8; the length threshold
	// counts characters, not bytes.
	page := `<html><body>
	<ul class="breadcrumb"><li><a href="/kinh-te">Kinh tế</a></li></ul>
	<article><p>Giá gạo xuất khẩu của Việt Nam tăng mạnh tuần qua</p></article>
	</body></html>`

	store := newFakeStore()
	server := serve(t, sitePages(map[string]string{"/bai-ngan-1234567.html": page}))
	c := newTestCrawler(t, baseProfile(server.URL), store)

	stats, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].SkipReasons[domain.SkipBodyTooShort])
	assert.Empty(t, store.urls)
}

func TestRunCategoryFallbackFromListing(t *testing.T) {
	t.Parallel()

	noCategory := `<html lang="vi"><body>
	<article><p>Bài viết không có breadcrumb nhưng site được phép kế thừa chuyên mục từ trang danh sách.</p></article>
	</body></html>`

	server := serve(t, sitePages(map[string]string{
		"/bai-khong-muc-4444444.html": noCategory,
	}))

	profile := baseProfile(server.URL)
	profile.CategoryFallbackFromListing = true

	store := newFakeStore()
	c := newTestCrawler(t, profile, store)

	stats, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats[0].Inserted)

	for _, article := range store.urls {
		assert.Equal(t, "kinh_te", article.CategoryID, "listing slug becomes the category")
	}
}

func TestRunForcedCategory(t *testing.T) {
	t.Parallel()

	server := serve(t, sitePages(map[string]string{
		"/bai-mot-1111111.html": goodArticle,
	}))

	profile := baseProfile(server.URL)
	profile.ForcedCategoryID = "chinh_sach"
	profile.ForcedCategoryName = "Chính sách"

	store := newFakeStore()
	c := newTestCrawler(t, profile, store)

	_, err := c.Run(context.Background(), nil)
	require.NoError(t, err)

	for _, article := range store.urls {
		assert.Equal(t, "chinh_sach", article.CategoryID, "forced id replaces the extracted one")
		assert.Equal(t, "Chính sách", article.CategoryName)
	}
}

func TestRunHonorsArticleCap(t *testing.T) {
	t.Parallel()

	server := serve(t, sitePages(map[string]string{
		"/bai-mot-1111111.html": goodArticle,
		"/bai-hai-2222222.html": goodArticle,
		"/bai-ba-3333333.html":  goodArticle,
	}))

	profile := baseProfile(server.URL)
	profile.MaxArticles = 2

	store := newFakeStore()
	c := newTestCrawler(t, profile, store)

	stats, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats[0].Inserted, "cap exits the site early")
	assert.Len(t, store.urls, 2)
}

func TestRunIsolatesArticleFailures(t *testing.T) {
	t.Parallel()

	pages := sitePages(map[string]string{
		"/bai-mot-1111111.html": goodArticle,
	})
	// The listing links one article that 404s.
	pages["/kinh-te"] = `<html><body>
	  <h2><a href="/bai-hong-9999999.html">hỏng</a></h2>
	  <h2><a href="/bai-mot-1111111.html">tốt</a></h2>
	</body></html>`

	server := serve(t, pages)
	store := newFakeStore()
	c := newTestCrawler(t, baseProfile(server.URL), store)

	stats, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats[0].Failed)
	assert.Equal(t, 1, stats[0].Inserted, "one broken page never aborts the site")
}

func TestRunUnknownSiteKey(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	registry, err := sites.NewRegistry(nil)
	require.NoError(t, err)

	c := crawler.New(registry, store, crawler.Config{}, nil)
	stats, err := c.Run(context.Background(), []string{"missing"})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Error(t, stats[0].SetupErr)
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := serve(t, sitePages(map[string]string{
		"/bai-mot-1111111.html": goodArticle,
	}))
	c := newTestCrawler(t, baseProfile(server.URL), newFakeStore())

	_, err := c.Run(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
