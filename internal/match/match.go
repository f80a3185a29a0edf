package match

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern decides whether free text refers to the queried person or company.
// Matching is case-insensitive, anchored at word boundaries and intentionally
// exact: partial names never match, so common-word queries don't drown in
// false positives.
type Pattern struct {
	re          *regexp.Regexp
	SearchTerms []string
}

// New builds a Pattern from a raw query. The query may be quoted; surrounding
// quotes and whitespace are stripped. An empty query yields (nil, nil),
// meaning no match capability.
//
// For a multi-word name the pattern covers the exact phrase, the reversed
// word order, "first last-initial." and "first-initial. last".
func New(query string) (*Pattern, error) {
	name := strings.TrimSpace(strings.Trim(strings.TrimSpace(query), `"'`))
	if name == "" {
		return nil, nil
	}

	parts := strings.Fields(strings.ToLower(name))
	if len(parts) == 0 {
		return nil, nil
	}

	full := strings.Join(parts, " ")
	terms := []string{full}

	if len(parts) > 1 {
		reversed := make([]string, len(parts))
		for i, p := range parts {
			reversed[len(parts)-1-i] = p
		}
		terms = append(terms,
			strings.Join(reversed, " "),
			fmt.Sprintf("%s %s.", parts[0], initial(parts[len(parts)-1])),
			fmt.Sprintf("%s. %s", initial(parts[0]), parts[len(parts)-1]),
		)
	}

	alts := make([]string, len(terms))
	for i, t := range terms {
		alts[i] = regexp.QuoteMeta(t)
	}

	// Go's RE2 has no lookaround, so the word-boundary guards consume one
	// non-word rune (or anchor) on each side. Good enough for a pass/fail
	// test: "elonmusk" never matches "elon musk".
	expr := `(?i)(?:^|[^\pL\pN_])(?:` + strings.Join(alts, "|") + `)(?:[^\pL\pN_]|$)`

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern for %q: %w", name, err)
	}

	return &Pattern{re: re, SearchTerms: terms}, nil
}

func initial(word string) string {
	return string([]rune(word)[:1])
}

// MatchString reports whether text mentions the queried name.
func (p *Pattern) MatchString(text string) bool {
	if p == nil || p.re == nil {
		return false
	}
	return p.re.MatchString(text)
}

// String returns the underlying expression, for logging.
func (p *Pattern) String() string {
	if p == nil || p.re == nil {
		return ""
	}
	return p.re.String()
}
