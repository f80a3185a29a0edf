// Package rss fetches and parses RSS/Atom feeds into plain structs so the
// rest of the pipeline never touches the raw feed document.
package rss

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"github.com/ziadbensaada/PersonaTracker/internal/retry"
)

// Media is a media:content or media:thumbnail reference from a feed entry.
type Media struct {
	URL  string
	Type string
}

// Enclosure is a classic RSS enclosure.
type Enclosure struct {
	URL  string
	Type string
}

// Item is one feed entry with every field the pipeline reads made explicit.
type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	Published   string
	PublishedAt *time.Time
	ImageURL    string

	MediaContent    []Media
	MediaThumbnails []Media
	Enclosures      []Enclosure
}

// Feed is a parsed feed plus the URL it was fetched from.
type Feed struct {
	Title    string
	URL      string
	ImageURL string
	Items    []Item
}

// Parser fetches feeds over HTTP and parses them. Fetching goes through the
// shared browser-header client because several feed hosts reject default
// library user agents.
type Parser struct {
	client   *resty.Client
	parser   *gofeed.Parser
	retryCfg retry.Config
}

func NewParser(client *resty.Client, retryCfg retry.Config) *Parser {
	return &Parser{
		client:   client,
		parser:   gofeed.NewParser(),
		retryCfg: retryCfg,
	}
}

// Fetch downloads and parses one feed. Transient HTTP failures are retried;
// a feed that cannot be fetched or parsed returns an error and the caller
// moves on to the next feed.
func (p *Parser) Fetch(ctx context.Context, url string) (*Feed, error) {
	var body []byte
	err := retry.Do(ctx, p.retryCfg, func() error {
		resp, err := p.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return fmt.Errorf("fetch feed: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("fetch feed: status %d", resp.StatusCode())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}

	parsed, err := p.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return convertFeed(parsed, url), nil
}

func convertFeed(f *gofeed.Feed, url string) *Feed {
	feed := &Feed{
		Title: f.Title,
		URL:   url,
		Items: make([]Item, 0, len(f.Items)),
	}
	if f.Image != nil {
		feed.ImageURL = f.Image.URL
	}
	for _, it := range f.Items {
		feed.Items = append(feed.Items, convertItem(it))
	}
	return feed
}

func convertItem(it *gofeed.Item) Item {
	item := Item{
		Title:       it.Title,
		Link:        it.Link,
		Description: it.Description,
		Content:     it.Content,
		Published:   it.Published,
		PublishedAt: it.PublishedParsed,
	}
	if it.Author != nil {
		item.Author = it.Author.Name
	} else if len(it.Authors) > 0 && it.Authors[0] != nil {
		item.Author = it.Authors[0].Name
	}
	if it.Image != nil {
		item.ImageURL = it.Image.URL
	}

	for _, enc := range it.Enclosures {
		if enc == nil {
			continue
		}
		item.Enclosures = append(item.Enclosures, Enclosure{URL: enc.URL, Type: enc.Type})
	}

	// media:content and media:thumbnail arrive as raw extensions.
	if media, ok := it.Extensions["media"]; ok {
		for _, e := range media["content"] {
			item.MediaContent = append(item.MediaContent, Media{
				URL:  e.Attrs["url"],
				Type: e.Attrs["type"],
			})
		}
		for _, e := range media["thumbnail"] {
			item.MediaThumbnails = append(item.MediaThumbnails, Media{
				URL:  e.Attrs["url"],
				Type: e.Attrs["type"],
			})
		}
	}
	return item
}
