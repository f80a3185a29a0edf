package news

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ziadbensaada/PersonaTracker/internal/cache"
	"github.com/ziadbensaada/PersonaTracker/internal/feeds"
	"github.com/ziadbensaada/PersonaTracker/internal/images"
	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/match"
	"github.com/ziadbensaada/PersonaTracker/internal/metrics"
	"github.com/ziadbensaada/PersonaTracker/internal/normalize"
	"github.com/ziadbensaada/PersonaTracker/internal/rss"
	"github.com/ziadbensaada/PersonaTracker/internal/scraper"
)

const dayLayout = "2006-01-02"

// FeedParser fetches and parses one feed.
type FeedParser interface {
	Fetch(ctx context.Context, url string) (*rss.Feed, error)
}

// PageScraper extracts article content from a page URL.
type PageScraper interface {
	Extract(ctx context.Context, url string) (*scraper.PageContent, error)
}

// cacheEntry wraps the article list so the cache file stays extensible.
type cacheEntry struct {
	Query     string    `json:"query"`
	FetchedAt time.Time `json:"fetched_at"`
	Articles  []Article `json:"articles"`
}

// Options configures an Aggregator.
type Options struct {
	Feeds             []feeds.Source
	Parser            FeedParser
	Scraper           PageScraper
	Cache             cache.Store
	MaxEntriesPerFeed int
	MinContentLength  int
}

// Aggregator runs the search pipeline: poll feeds, match entries against
// the person's name, enrich thin entries by scraping, dedupe, filter by
// date, sort and cache.
type Aggregator struct {
	feeds      []feeds.Source
	parser     FeedParser
	scraper    PageScraper
	cache      cache.Store
	maxPerFeed int
	minContent int
}

func NewAggregator(opts Options) *Aggregator {
	if opts.MaxEntriesPerFeed <= 0 {
		opts.MaxEntriesPerFeed = 20
	}
	if opts.MinContentLength <= 0 {
		opts.MinContentLength = 200
	}
	return &Aggregator{
		feeds:      opts.Feeds,
		parser:     opts.Parser,
		scraper:    opts.Scraper,
		cache:      opts.Cache,
		maxPerFeed: opts.MaxEntriesPerFeed,
		minContent: opts.MinContentLength,
	}
}

// GetNewsAbout returns up to maxArticles articles mentioning the person,
// newest first. startDate and endDate are optional YYYY-MM-DD bounds. A
// malformed or empty query returns no articles rather than an error, so a
// bad search never takes the caller down.
func (a *Aggregator) GetNewsAbout(ctx context.Context, query string, maxArticles int, startDate, endDate string) []Article {
	start := time.Now()
	defer func() { metrics.Global.RecordAggregationTime(time.Since(start)) }()

	pattern, err := match.New(query)
	if err != nil || pattern == nil {
		logger.Warn("unusable search query", "query", query, "error", err)
		return nil
	}
	if maxArticles <= 0 {
		maxArticles = 10
	}

	key := cache.Key(query, "news_about:"+startDate+"_"+endDate)
	var entry cacheEntry
	if a.cache != nil && a.cache.Load(key, &entry) {
		metrics.Global.IncrementCacheHits()
		logger.Info("cache hit", "query", query, "articles", len(entry.Articles))
		return truncate(entry.Articles, maxArticles)
	}
	metrics.Global.IncrementCacheMisses()

	// with a date range, fetch beyond the cap so filtering still has
	// enough to work with; otherwise stop at the cap
	budget := maxArticles
	if startDate != "" || endDate != "" {
		budget = maxArticles * 2
	}
	articles := a.searchFeeds(ctx, pattern, budget)
	articles = filterByDate(articles, startDate, endDate)
	sortByDate(articles)

	if a.cache != nil && len(articles) > 0 {
		if err := a.cache.Save(key, cacheEntry{
			Query:     query,
			FetchedAt: time.Now(),
			Articles:  articles,
		}); err != nil {
			logger.Warn("cache save failed", "query", query, "error", err)
		}
	}

	metrics.Global.SetLastRun()
	return truncate(articles, maxArticles)
}

// searchFeeds polls every active feed in order and collects matching
// entries until the cap is hit. Feed failures are logged and skipped.
func (a *Aggregator) searchFeeds(ctx context.Context, pattern *match.Pattern, cap int) []Article {
	var articles []Article
	seen := make(map[string]bool)

	for _, src := range a.feeds {
		if !src.IsActive() || len(articles) >= cap {
			continue
		}

		feed, err := a.parser.Fetch(ctx, src.URL)
		if err != nil {
			metrics.Global.IncrementFeedsFailed()
			logger.Warn("feed fetch failed", "feed", src.URL, "error", err)
			continue
		}
		metrics.Global.IncrementFeedsFetched()

		items := feed.Items
		if len(items) > a.maxPerFeed {
			items = items[:a.maxPerFeed]
		}

		for _, item := range items {
			if len(articles) >= cap {
				break
			}
			metrics.Global.IncrementEntriesSeen()

			link := normalize.CleanURL(strings.TrimSpace(item.Link))
			if link == "" || seen[link] {
				if seen[link] {
					metrics.Global.IncrementDuplicatesSkipped()
				}
				continue
			}

			haystack := strings.ToLower(item.Title + " " + item.Description + " " + item.Content)
			if !pattern.MatchString(haystack) {
				continue
			}
			metrics.Global.IncrementEntriesMatched()

			articles = append(articles, a.buildArticle(ctx, feed, src.URL, item, link))
			seen[link] = true
		}
	}
	return articles
}

// buildArticle turns a matched feed entry into an Article, scraping the
// page when the feed gave too little content or no image.
func (a *Aggregator) buildArticle(ctx context.Context, feed *rss.Feed, feedURL string, item rss.Item, link string) Article {
	art := Article{
		Title:      normalize.CleanText(item.Title),
		URL:        link,
		Source:     feed.Title,
		Author:     item.Author,
		ImageURL:   images.FromItem(item),
		Domain:     normalize.Host(link),
		RSSFeedURL: feedURL,
	}
	if art.Source == "" {
		art.Source = normalize.Host(feedURL)
	}
	if art.Author == "" {
		art.Author = "Unknown"
	}

	if item.Content != "" {
		art.Content = normalize.StripHTML(item.Content)
	} else {
		art.Content = normalize.StripHTML(item.Description)
	}

	if item.PublishedAt != nil {
		art.PublishDate = item.PublishedAt.Format(dayLayout)
	} else if t, ok := scraper.ParseDate(item.Published); ok {
		art.PublishDate = t.Format(dayLayout)
	}

	if a.scraper != nil && (len(art.Content) < a.minContent || art.ImageURL == "") {
		page, err := a.scraper.Extract(ctx, link)
		if err != nil {
			metrics.Global.IncrementScrapeFailures()
			logger.Debug("scrape failed", "url", link, "error", err)
		} else {
			metrics.Global.IncrementPagesScraped()
			if len(page.Content) > len(art.Content) {
				art.Content = page.Content
			}
			if art.ImageURL == "" {
				art.ImageURL = page.ImageURL
			}
			if art.PublishDate == "" {
				art.PublishDate = page.PublishDate
			}
			if art.Title == "" {
				art.Title = page.Title
			}
		}
	}

	if art.PublishDate == "" {
		art.PublishDate = time.Now().Format(dayLayout)
	}
	if art.Content == "" {
		art.Content = "No content available. Please visit the source: " + link
	}
	return art
}

// filterByDate keeps articles inside the inclusive range. Articles whose
// date cannot be parsed are kept rather than silently dropped.
func filterByDate(articles []Article, startDate, endDate string) []Article {
	if startDate == "" && endDate == "" {
		return articles
	}
	var start, end time.Time
	if t, err := time.Parse(dayLayout, startDate); err == nil {
		start = t
	}
	if t, err := time.Parse(dayLayout, endDate); err == nil {
		end = t
	}

	out := articles[:0]
	for _, art := range articles {
		t, ok := parseDay(art.PublishDate)
		if !ok {
			out = append(out, art)
			continue
		}
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		out = append(out, art)
	}
	return out
}

// sortByDate orders newest first; undated articles sink to the end and
// equal dates keep their feed order.
func sortByDate(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, _ := parseDay(articles[i].PublishDate)
		tj, _ := parseDay(articles[j].PublishDate)
		return ti.After(tj)
	})
}

func parseDay(s string) (time.Time, bool) {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	return t, err == nil
}

func truncate(articles []Article, max int) []Article {
	if len(articles) > max {
		return articles[:max]
	}
	return articles
}
