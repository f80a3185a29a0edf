// Package news aggregates person-related articles from the configured RSS
// feeds, enriching thin entries by scraping the article pages.
package news

// Article is one matched news item. The JSON tags double as the on-disk
// cache schema, so renaming a field invalidates old cache entries.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	PublishDate string `json:"publish_date"`
	Source      string `json:"source"`
	Author      string `json:"author"`
	ImageURL    string `json:"image_url,omitempty"`
	Domain      string `json:"domain,omitempty"`
	RSSFeedURL  string `json:"rss_feed_url,omitempty"`
}
