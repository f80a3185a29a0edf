// Package fetch builds the shared HTTP client used for feed, page and image
// requests. News sites block obvious bots, so the client carries a full
// browser header set.
package fetch

import (
	"time"

	"github.com/go-resty/resty/v2"
)

const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// NewClient returns a resty client with browser-like headers and a bounded
// timeout so one unresponsive site cannot stall a whole aggregation.
func NewClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeaders(map[string]string{
			"User-Agent":      UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
			"Connection":      "keep-alive",
			"DNT":             "1",
			"Referer":         "https://www.google.com/",
		})
}
