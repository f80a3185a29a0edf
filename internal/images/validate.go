package images

import (
	"net/url"
	"path"
	"strings"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif"}

var imageIndicators = []string{"/image", "/img", "/photo", "/pic", "/media", "/upload", "image=", "img="}

var trackingTokens = []string{"1x1", "pixel", "spacer", "blank.gif", "transparent", "beacon"}

var documentExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".xml", ".json"}

// ValidateURL reports whether a URL plausibly points at a real content
// image. It rejects non-HTTP schemes, document links, tracking pixels and
// favicons; anything else over HTTP is cautiously accepted because many CDN
// image URLs carry no extension at all.
func ValidateURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	lowerPath := strings.ToLower(u.Path)
	for _, ext := range documentExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return false
		}
	}

	lower := strings.ToLower(raw)
	for _, token := range trackingTokens {
		if strings.Contains(lower, token) {
			return false
		}
	}
	if strings.Contains(path.Base(lowerPath), "favicon") {
		return false
	}

	for _, ext := range imageExtensions {
		if strings.HasSuffix(lowerPath, ext) {
			return true
		}
	}
	for _, ind := range imageIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return true
}
