package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ziadbensaada/PersonaTracker/internal/fetch"
	"github.com/ziadbensaada/PersonaTracker/internal/images"
)

const articlePage = `<html>
<head>
  <title>Big Announcement - Example News</title>
  <meta property="article:published_time" content="2024-03-15T10:30:00Z"/>
  <meta property="og:image" content="https://cdn.example.com/hero.jpg"/>
  <script>var tracking = true;</script>
</head>
<body>
  <nav>Home | Politics | Tech</nav>
  <article>
    <h1>Big Announcement</h1>
    <p>The company revealed its long awaited product today, promising a major shift in the market.</p>
    <p>Analysts said the announcement exceeded expectations and could reshape the industry for years.</p>
  </article>
  <footer>Copyright Example News</footer>
</body>
</html>`

func testExtractor() *Extractor {
	client := fetch.NewClient(5 * time.Second)
	return New(client, images.New(client, false))
}

func TestExtract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	}))
	defer ts.Close()

	page, err := testExtractor().Extract(context.Background(), ts.URL+"/story")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if page.Title != "Big Announcement - Example News" {
		t.Errorf("Title = %q", page.Title)
	}
	if !strings.Contains(page.Content, "long awaited product") {
		t.Errorf("Content missing article text: %q", page.Content)
	}
	if strings.Contains(page.Content, "tracking") || strings.Contains(page.Content, "Copyright") {
		t.Errorf("Content includes stripped elements: %q", page.Content)
	}
	if !strings.Contains(page.Content, "\n") {
		t.Error("paragraphs should be newline separated")
	}
	if page.PublishDate != "2024-03-15" {
		t.Errorf("PublishDate = %q, want 2024-03-15", page.PublishDate)
	}
	if page.ImageURL != "https://cdn.example.com/hero.jpg" {
		t.Errorf("ImageURL = %q", page.ImageURL)
	}
	if !strings.HasPrefix(page.Source, "127.0.0.1") {
		t.Errorf("Source = %q, want the page host", page.Source)
	}
}

func TestExtractDensityFallback(t *testing.T) {
	// no semantic container; the dense div should win over the sidebar
	long := strings.Repeat("Meaningful article sentence with actual words in it. ", 10)
	page := `<html><body>
		<div class="sidebar"><span><a href="/a">a</a><a href="/b">b</a><a href="/c">c</a></span></div>
		<div class="stuff">` + long + `</div>
	</body></html>`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer ts.Close()

	got, err := testExtractor().Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !strings.Contains(got.Content, "Meaningful article sentence") {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestExtractDefaultsDateToToday(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><article><p>` + strings.Repeat("Some undated article text here. ", 10) + `</p></article></body></html>`))
	}))
	defer ts.Close()

	page, err := testExtractor().Extract(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if page.PublishDate != time.Now().Format("2006-01-02") {
		t.Errorf("PublishDate = %q, want today", page.PublishDate)
	}
}

func TestExtractRejectsNonHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer ts.Close()

	if _, err := testExtractor().Extract(context.Background(), ts.URL); err == nil {
		t.Error("expected error for non-HTML response")
	}
}

func TestExtractRejectsEmptyPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer ts.Close()

	if _, err := testExtractor().Extract(context.Background(), ts.URL); err == nil {
		t.Error("expected error for page with no content")
	}
}

func TestExtractStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := testExtractor().Extract(context.Background(), ts.URL); err == nil {
		t.Error("expected error for 404 page")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2024-03-15T10:30:00Z", "2024-03-15", true},
		{"2024-03-15", "2024-03-15", true},
		{"15/03/2024", "2024-03-15", true},
		{"March 15, 2024", "2024-03-15", true},
		{"Mar 15, 2024", "2024-03-15", true},
		{"2024/03/15", "2024-03-15", true},
		{"20240315", "2024-03-15", true},
		{"not a date", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.raw)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.raw, got.Format("2006-01-02"), tt.want)
		}
	}
}
