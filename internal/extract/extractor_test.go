package extract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tammuoichanhoa/vnnews-crawler/internal/extract"
	"github.com/tammuoichanhoa/vnnews-crawler/internal/sites"
)

const articlePage = `<!DOCTYPE html>
<html lang="vi">
<head>
  <meta property="og:title" content="Xuất khẩu gạo đạt kỷ lục mới">
  <meta name="description" content="Kim ngạch xuất khẩu gạo quý một tăng mạnh so với cùng kỳ.">
  <meta property="article:published_time" content="2025-05-12T08:30:00+07:00">
  <meta property="article:modified_time" content="2025-05-13T10:00:00+07:00">
  <meta property="article:tag" content="Xuất khẩu">
  <meta name="keywords" content="xuất khẩu, Gạo">
  <meta name="author" content="Nam Anh">
</head>
<body>
  <ul class="breadcrumb">
    <li><a href="/">Trang chủ</a></li>
    <li><a href="/kinh-te">Kinh tế</a></li>
  </ul>
  <article>
    <p>Đoạn mở đầu của bài viết có đủ độ dài để được giữ lại trong phần thân.</p>
    <p>Đoạn mở đầu của bài viết có đủ độ dài để được giữ lại trong phần thân.</p>
    <div class="related-news"><p>Các bài viết quảng cáo liên quan khác.</p></div>
    <h2>Diễn biến thị trường</h2>
    <table><tr><td>Quý</td><td>Sản lượng</td></tr></table>
    <p>Xem thêm</p>
    <img data-src="/images/photo-1.jpg" src="data:image/gif;base64,R0lGOD">
    <img src="https://example.vn/images/logo.png">
    <video><source src="/video/clip.mp4"></video>
  </article>
</body>
</html>`

func TestExtractFullArticle(t *testing.T) {
	t.Parallel()

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte(articlePage),
		"https://example.vn/kinh-te/xuat-khau-gao-1234567.html", sites.Selectors{})
	require.NoError(t, err)

	assert.Equal(t, "Xuất khẩu gạo đạt kỷ lục mới", article.Title)
	assert.Equal(t, "Kim ngạch xuất khẩu gạo quý một tăng mạnh so với cùng kỳ.", article.Description)
	assert.Equal(t, "Nam Anh", article.Author)
	assert.Equal(t, "vi", article.Locale)
	assert.Equal(t, "1234567", article.ExternalID)

	require.NotNil(t, article.PublishedAt)
	assert.Equal(t, 12, article.PublishedAt.Day())
	assert.Equal(t, time.Month(5), article.PublishedAt.Month())
	require.NotNil(t, article.ModifiedAt)
	assert.Equal(t, 13, article.ModifiedAt.Day())

	// Breadcrumb fallback: home crumb dropped, id from the crumb link.
	assert.Equal(t, "kinh_te", article.CategoryID)
	assert.Equal(t, "Kinh tế", article.CategoryName)

	// Case-insensitive dedup keeps first-seen casing.
	assert.Equal(t, []string{"Xuất khẩu", "Gạo"}, article.Tags)

	// Body: duplicate teaser suppressed, marker-excluded div dropped,
	// boilerplate dropped, table flattened.
	assert.Contains(t, article.BodyText, "Đoạn mở đầu của bài viết")
	assert.Contains(t, article.BodyText, "Diễn biến thị trường")
	assert.Contains(t, article.BodyText, "Quý | Sản lượng")
	assert.NotContains(t, article.BodyText, "quảng cáo liên quan")
	assert.NotContains(t, article.BodyText, "Xem thêm")
	assert.Equal(t, 1, countOccurrences(article.BodyText, "Đoạn mở đầu"))

	assert.Equal(t, []string{"https://example.vn/images/photo-1.jpg"}, article.Images,
		"lazy src wins, data URI and logo rejected")
	assert.Equal(t, []string{"https://example.vn/video/clip.mp4"}, article.Videos)

	assert.Contains(t, article.BodyHTML, "Đoạn mở đầu")
	assert.NotContains(t, article.BodyHTML, "<script")
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}

func TestExtractMalformedHTMLNeverErrors(t *testing.T) {
	t.Parallel()

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte("<div><p>broken"), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)
	require.NotNil(t, article)
}

func TestExtractFallbackWithoutContainer(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <span><p>Một đoạn văn nằm ngoài mọi container chính nhưng vẫn cần trích xuất.</p></span>
	  <div class="ads"><p>Nội dung quảng cáo cần bị loại bỏ khỏi kết quả.</p></div>
	</body></html>`

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)

	assert.Contains(t, article.BodyText, "ngoài mọi container")
	assert.NotContains(t, article.BodyText, "quảng cáo")
}

func TestContainerSelectionPicksLongestCandidate(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <article><p>Hộp tóm tắt phụ ngắn.</p></article>
	  <article>
	    <p>Đoạn mở đầu của phần thân chính dài hơn hẳn mọi ứng viên khác trên trang.</p>
	    <p>Đoạn thứ hai bổ sung thêm nội dung để độ dài văn bản là tiêu chí phân xử.</p>
	  </article>
	</body></html>`

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)

	assert.Contains(t, article.BodyText, "phần thân chính")
	assert.NotContains(t, article.BodyText, "tóm tắt phụ",
		"a shorter matching container loses to the longest candidate")
}

func TestContainerKeywordScanPicksLongest(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <div class="box-noidung-phu"><p>Khối phụ ngắn.</p></div>
	  <div class="box-noidung-chinh">
	    <p>Khối chính chứa phần văn bản dài nhất trang và phải được chọn làm container.</p>
	  </div>
	</body></html>`

	table := extract.NewTable([]extract.Override{{
		Domain:            "example.vn",
		ContainerKeywords: []string{"noidung"},
	}})
	e := extract.NewExtractor(nil, table)
	article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)

	assert.Contains(t, article.BodyText, "Khối chính")
	assert.NotContains(t, article.BodyText, "Khối phụ")
}

func TestExtractDescriptionFromGenericSapo(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <h2 class="sapo">Đoạn sapo dẫn nhập thay cho thẻ meta mô tả vắng mặt.</h2>
	  <article><p>Thân bài đủ dài để trích xuất như một bài viết bình thường.</p></article>
	</body></html>`

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)
	assert.Equal(t, "Đoạn sapo dẫn nhập thay cho thẻ meta mô tả vắng mặt.", article.Description)
}

func TestExtractTitleFallsBackToHeading(t *testing.T) {
	t.Parallel()

	page := `<html><body><h1>Tiêu đề từ thẻ h1</h1><article><p>Nội dung đủ dài để thành bài viết hợp lệ.</p></article></body></html>`

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)
	assert.Equal(t, "Tiêu đề từ thẻ h1", article.Title)
}

func TestExtractOgImageFallback(t *testing.T) {
	t.Parallel()

	page := `<html><head><meta property="og:image" content="https://example.vn/images/share-photo.jpg"></head>
	<body><article><p>Bài viết không có ảnh nội dung nào bên trong phần thân chính.</p></article></body></html>`

	t.Run("generic domain uses og:image", func(t *testing.T) {
		t.Parallel()
		e := extract.NewExtractor(nil, nil)
		article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.vn/images/share-photo.jpg"}, article.Images)
	})

	t.Run("inline-media-only override disables fallback", func(t *testing.T) {
		t.Parallel()
		table := extract.NewTable([]extract.Override{{Domain: "example.vn", InlineMediaOnly: true}})
		e := extract.NewExtractor(nil, table)
		article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
		require.NoError(t, err)
		assert.Empty(t, article.Images)
	})
}

func TestExtractFreeTextPublishDate(t *testing.T) {
	t.Parallel()

	page := `<html><body>
	  <span class="date">Thứ hai, 12/5/2025 08:30</span>
	  <article><p>Nội dung bài viết có ngày đăng dạng chữ thay vì thẻ meta chuẩn.</p></article>
	</body></html>`

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)

	require.NotNil(t, article.PublishedAt, "day-first free text parses for publish date")
	assert.Equal(t, 12, article.PublishedAt.Day())
	assert.Equal(t, time.Month(5), article.PublishedAt.Month())
	assert.Equal(t, 2025, article.PublishedAt.Year())

	assert.Nil(t, article.ModifiedAt, "modified date never falls back to free text")
}

func TestExtractJSONLDWithTrailingComma(t *testing.T) {
	t.Parallel()

	page := `<html><head>
	<script type="application/ld+json">{"@type":"NewsArticle","datePublished":"2025-04-01T09:00:00Z",}</script>
	</head><body><article><p>Khối JSON-LD có dấu phẩy thừa vẫn phải đọc được ngày đăng.</p></article></body></html>`

	e := extract.NewExtractor(nil, nil)
	article, err := e.Extract([]byte(page), "https://example.vn/x.html", sites.Selectors{})
	require.NoError(t, err)

	require.NotNil(t, article.PublishedAt)
	assert.Equal(t, time.Month(4), article.PublishedAt.Month())
}

func TestOverrideTableLongestSuffixWins(t *testing.T) {
	t.Parallel()

	table := extract.NewTable([]extract.Override{
		{Domain: "example.vn", ContainerKeywords: []string{"root"}},
		{Domain: "news.example.vn", ContainerKeywords: []string{"news"}},
	})

	ov := table.Resolve("news.example.vn")
	require.NotNil(t, ov)
	assert.Equal(t, "news.example.vn", ov.Domain)

	ov = table.Resolve("video.example.vn")
	require.NotNil(t, ov)
	assert.Equal(t, "example.vn", ov.Domain, "subdomain suffix-matches the parent entry")

	assert.Nil(t, table.Resolve("other.vn"))
}
