// Package slug derives short, filesystem-safe identifiers from free text.
package slug

import (
	"regexp"
	"strings"
)

const (
	maxLen   = 60
	fallback = "note"
	topicMax = 4
)

var (
	stripRe    = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	collapseRe = regexp.MustCompile(`[\s_-]+`)
	tokenRe    = regexp.MustCompile(`[A-Za-z0-9]{3,}`)
)

// stopWords are common tokens excluded from topic derivation.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "that": {}, "this": {},
}

// Slugify turns arbitrary text into a lowercase hyphenated identifier:
// characters outside [A-Za-z0-9 -] are stripped, runs of whitespace,
// hyphens, and underscores collapse to a single hyphen, and the result is
// capped at 60 characters. Empty results fall back to "note".
func Slugify(text string) string {
	s := stripRe.ReplaceAllString(text, "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = collapseRe.ReplaceAllString(s, "-")
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	if s == "" {
		return fallback
	}
	return s
}

// ExtractTopic derives a stable topic slug from note text: the first four
// alphanumeric tokens of three or more characters that are not stop words,
// joined and slugified. Deterministic, so the destination path and the file
// title derived from the same text always agree.
func ExtractTopic(text string) string {
	var kept []string
	for _, tok := range tokenRe.FindAllString(text, -1) {
		if _, stop := stopWords[strings.ToLower(tok)]; stop {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == topicMax {
			break
		}
	}
	return Slugify(strings.Join(kept, " "))
}
