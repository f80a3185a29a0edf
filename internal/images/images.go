// Package images finds a representative image for an article. Publishers
// expose images in wildly inconsistent ways, so extraction runs an ordered
// list of strategies from most to least reliable and stops at the first
// candidate that survives validation.
package images

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/normalize"
	"github.com/ziadbensaada/PersonaTracker/internal/rss"
)

// lazy-loading sites put the real URL in one of these attributes
var srcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}

var featuredSelectors = []string{
	"div.featured-image img",
	"div.article-featured-image img",
	"div.post-thumbnail img",
	"figure.wp-block-image img",
	"figure.article-image img",
	"div.article-image img",
	"div.entry-thumbnail img",
	"picture img",
}

var backgroundPattern = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

type strategy struct {
	name string
	fn   func(doc *goquery.Document, content *goquery.Selection) []string
}

// Extractor resolves article images. When checkAccess is set, every
// candidate is verified over HTTP before being accepted.
type Extractor struct {
	client      *resty.Client
	checkAccess bool
}

func New(client *resty.Client, checkAccess bool) *Extractor {
	return &Extractor{client: client, checkAccess: checkAccess}
}

// FromDocument returns the best image URL for a parsed page, or "" when no
// candidate survives validation. content is the node the body text was
// extracted from; nil means search the whole page.
func (e *Extractor) FromDocument(ctx context.Context, doc *goquery.Document, content *goquery.Selection, pageURL string) string {
	if content == nil {
		content = doc.Find("body")
	}

	strategies := []strategy{
		{"og:image", metaCandidates("og:image", "og:image:url", "og:image:secure_url")},
		{"twitter:image", metaCandidates("twitter:image", "twitter:image:src")},
		{"article:image", metaCandidates("article:image")},
		{"json-ld", jsonLDCandidates},
		{"featured", featuredCandidates},
		{"content-img", contentImageCandidates},
		{"page-img", pageImageCandidates},
		{"background", backgroundCandidates},
	}

	for _, s := range strategies {
		for _, cand := range s.fn(doc, content) {
			u := normalize.AbsoluteURL(strings.TrimSpace(cand), pageURL)
			if !ValidateURL(u) {
				continue
			}
			if e.checkAccess && !e.IsAccessible(ctx, u) {
				continue
			}
			logger.Debug("image found", "strategy", s.name, "url", u)
			return u
		}
	}
	return ""
}

// FromItem returns the first valid image referenced directly by a feed
// entry, or "".
func FromItem(item rss.Item) string {
	for _, m := range item.MediaContent {
		if m.Type != "" && !strings.HasPrefix(m.Type, "image/") {
			continue
		}
		if ValidateURL(m.URL) {
			return m.URL
		}
	}
	for _, m := range item.MediaThumbnails {
		if ValidateURL(m.URL) {
			return m.URL
		}
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && ValidateURL(enc.URL) {
			return enc.URL
		}
	}
	if ValidateURL(item.ImageURL) {
		return item.ImageURL
	}
	return ""
}

// FromFeed returns an image representing a whole feed: the channel image if
// it has one, otherwise the first entry's media, otherwise the first
// entry's article page.
func (e *Extractor) FromFeed(ctx context.Context, feed *rss.Feed) string {
	if ValidateURL(feed.ImageURL) {
		return feed.ImageURL
	}
	if len(feed.Items) == 0 {
		return ""
	}
	first := feed.Items[0]
	if u := FromItem(first); u != "" {
		return u
	}
	if first.Link != "" {
		return e.FromArticleURL(ctx, first.Link)
	}
	return ""
}

// FromArticleURL fetches a page and extracts its image.
func (e *Extractor) FromArticleURL(ctx context.Context, pageURL string) string {
	resp, err := e.client.R().SetContext(ctx).Get(pageURL)
	if err != nil || resp.StatusCode() != 200 {
		return ""
	}
	ct := resp.Header().Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "text/html") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(resp.Body())))
	if err != nil {
		return ""
	}
	return e.FromDocument(ctx, doc, nil, pageURL)
}

// IsAccessible verifies that a URL actually serves an image: HEAD first,
// then a GET with an unread body for servers that reject HEAD.
func (e *Extractor) IsAccessible(ctx context.Context, u string) bool {
	resp, err := e.client.R().SetContext(ctx).Head(u)
	if err == nil && resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		if strings.HasPrefix(resp.Header().Get("Content-Type"), "image/") {
			return true
		}
	}

	resp, err = e.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(u)
	if err != nil {
		return false
	}
	defer resp.RawBody().Close()
	if resp.RawResponse.StatusCode < 200 || resp.RawResponse.StatusCode >= 300 {
		return false
	}
	return strings.HasPrefix(resp.RawResponse.Header.Get("Content-Type"), "image/")
}

func metaCandidates(names ...string) func(doc *goquery.Document, _ *goquery.Selection) []string {
	return func(doc *goquery.Document, _ *goquery.Selection) []string {
		var out []string
		for _, name := range names {
			sel := `meta[property="` + name + `"], meta[name="` + name + `"]`
			doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
				if c, ok := s.Attr("content"); ok && c != "" {
					out = append(out, c)
				}
			})
		}
		return out
	}
}

func jsonLDCandidates(doc *goquery.Document, _ *goquery.Selection) []string {
	var out []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		out = append(out, jsonLDImages(data)...)
	})
	return out
}

// jsonLDImages pulls image URLs out of a decoded JSON-LD value. The image
// field can be a string, an ImageObject, or a list of either.
func jsonLDImages(data any) []string {
	switch v := data.(type) {
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, jsonLDImages(item)...)
		}
		return out
	case map[string]any:
		img, ok := v["image"]
		if !ok {
			return nil
		}
		switch iv := img.(type) {
		case string:
			return []string{iv}
		case map[string]any:
			if u, ok := iv["url"].(string); ok {
				return []string{u}
			}
		case []any:
			var out []string
			for _, item := range iv {
				switch e := item.(type) {
				case string:
					out = append(out, e)
				case map[string]any:
					if u, ok := e["url"].(string); ok {
						out = append(out, u)
					}
				}
			}
			return out
		}
	}
	return nil
}

func featuredCandidates(doc *goquery.Document, _ *goquery.Selection) []string {
	var out []string
	for _, sel := range featuredSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			out = append(out, imgSources(s)...)
		})
	}
	return out
}

func contentImageCandidates(_ *goquery.Document, content *goquery.Selection) []string {
	var sized, unsized []string
	content.Find("img").Each(func(_ int, s *goquery.Selection) {
		srcs := imgSources(s)
		if len(srcs) == 0 {
			return
		}
		if hasChromeToken(srcs[0], "logo", "icon", "avatar", "thumbnail", "sprite") {
			return
		}
		w, hasW := imgDim(s, "width")
		h, hasH := imgDim(s, "height")
		if (hasW && w < 100) || (hasH && h < 100) {
			return
		}
		if (hasW && w >= 100) || (hasH && h >= 100) {
			sized = append(sized, srcs...)
		} else {
			unsized = append(unsized, srcs...)
		}
	})
	return append(sized, unsized...)
}

func pageImageCandidates(doc *goquery.Document, _ *goquery.Selection) []string {
	var out []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		srcs := imgSources(s)
		if len(srcs) == 0 {
			return
		}
		if hasChromeToken(srcs[0], "logo", "favicon", "banner", "advert", "/ads/", "pixel", "icon") {
			return
		}
		out = append(out, srcs...)
	})
	return out
}

func backgroundCandidates(_ *goquery.Document, content *goquery.Selection) []string {
	var out []string
	content.Find(`[style*="background"]`).Each(func(_ int, s *goquery.Selection) {
		style, ok := s.Attr("style")
		if !ok {
			return
		}
		if m := backgroundPattern.FindStringSubmatch(style); m != nil {
			out = append(out, m[1])
		}
	})
	return out
}

func imgSources(s *goquery.Selection) []string {
	var out []string
	for _, attr := range srcAttrs {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func imgDim(s *goquery.Selection, attr string) (int, bool) {
	v, ok := s.Attr(attr)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func hasChromeToken(u string, tokens ...string) bool {
	lower := strings.ToLower(u)
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
