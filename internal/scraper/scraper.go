// Package scraper extracts article text, publish date and image from a news
// page. Sites share no common markup, so everything here is a ranked list of
// fallbacks.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/ziadbensaada/PersonaTracker/internal/images"
	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/normalize"
)

// semantic containers tried before falling back to density scoring
var contentSelectors = []string{
	"article",
	"main",
	`div[itemprop="articleBody"]`,
	"div.article-content",
	"div.article-body",
	"div.story-body",
	"div.post-content",
	"div.entry-content",
	"div.content-body",
	"div.main-content",
	"section.article",
	"div#article-body",
}

var dateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[property="og:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="publish-date"]`,
	`meta[name="date"]`,
	`meta[itemprop="datePublished"]`,
	"time[datetime]",
	"time",
	".published-date",
	".publish-date",
	".post-date",
	".entry-date",
	".article-date",
	".date",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	"02-01-2006",
	"20060102",
}

// PageContent is everything worth keeping from a scraped page.
type PageContent struct {
	Title       string
	Content     string
	PublishDate string
	Source      string
	ImageURL    string
}

// Extractor scrapes article pages over the shared HTTP client.
type Extractor struct {
	client *resty.Client
	images *images.Extractor
}

func New(client *resty.Client, imgs *images.Extractor) *Extractor {
	return &Extractor{client: client, images: imgs}
}

// Extract fetches a page and pulls out its article content. Non-HTML
// responses and pages with no usable text are errors; the caller keeps the
// feed-provided fields instead.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*PageContent, error) {
	resp, err := e.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode())
	}
	ct := resp.Header().Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("not an html page: %s", ct)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body())))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	doc.Find("script, style, nav, footer, header, iframe, form").Remove()

	content := findContent(doc)
	text := extractText(content)
	if text == "" {
		return nil, fmt.Errorf("no article content found at %s", pageURL)
	}

	page := &PageContent{
		Title:       normalize.CleanText(doc.Find("title").First().Text()),
		Content:     text,
		PublishDate: extractDate(doc),
		Source:      normalize.Host(pageURL),
	}
	if e.images != nil {
		page.ImageURL = e.images.FromDocument(ctx, doc, content, pageURL)
	}
	logger.Debug("page scraped", "url", pageURL, "chars", len(text))
	return page, nil
}

// findContent picks the node the article text lives in: the first semantic
// container with real text, else the densest text block, else <body>.
func findContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentSelectors {
		s := doc.Find(sel).First()
		if s.Length() > 0 && len(normalize.CleanText(s.Text())) >= 100 {
			return s
		}
	}

	var best *goquery.Selection
	bestLen := 0
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		text := normalize.CleanText(s.Text())
		if len(text) < 100 {
			return
		}
		html, err := goquery.OuterHtml(s)
		if err != nil || len(html) == 0 {
			return
		}
		// text density separates article bodies from markup-heavy chrome
		if float64(len(text))/float64(len(html)) <= 0.1 {
			return
		}
		if len(text) > bestLen {
			best, bestLen = s, len(text)
		}
	})
	if best != nil {
		return best
	}
	return doc.Find("body")
}

// extractText renders the content node as newline-separated paragraphs.
func extractText(content *goquery.Selection) string {
	var lines []string
	content.Find("p, h1, h2, h3, h4, li, blockquote, figcaption").Each(func(_ int, s *goquery.Selection) {
		if t := normalize.CleanText(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	if len(lines) == 0 {
		for _, raw := range strings.Split(content.Text(), "\n") {
			if t := normalize.CleanText(raw); t != "" {
				lines = append(lines, t)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// extractDate tries each date selector and format; an article with no
// recognizable date is stamped with today so sorting stays total.
func extractDate(doc *goquery.Document) string {
	for _, sel := range dateSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		raw, ok := s.Attr("content")
		if !ok {
			raw, ok = s.Attr("datetime")
		}
		if !ok {
			raw = s.Text()
		}
		if t, ok := ParseDate(raw); ok {
			return t.Format("2006-01-02")
		}
	}
	return time.Now().Format("2006-01-02")
}

// ParseDate parses a date string against the known layouts.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
