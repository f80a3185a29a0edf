// Package normalize holds the small URL/text cleanup helpers shared by the
// feed boundary and the extractors.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanText collapses all runs of whitespace into single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripHTML drops markup from a feed description and collapses whitespace.
func StripHTML(s string) string {
	return CleanText(tagPattern.ReplaceAllString(s, " "))
}

// CleanURL percent-decodes a URL when possible, otherwise returns it as-is.
// PathUnescape rather than QueryUnescape: a literal + in a URL path must
// stay a +, not become a space.
func CleanURL(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// AbsoluteURL resolves a possibly relative URL against the page it came
// from. Protocol-relative URLs get https.
func AbsoluteURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(ref).String()
}

// Host returns the lowercase host of a URL, or "" when it cannot be parsed.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
