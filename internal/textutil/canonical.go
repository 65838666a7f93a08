package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	yearPattern  = regexp.MustCompile(`\b20\d{2}\b`)
	punctPattern = regexp.MustCompile(`[()\[\],.:/\\'’"–-]`)
	spacePattern = regexp.MustCompile(`\s+`)

	diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// stopwords are filler terms dropped before similarity scoring. Year tokens
// are listed for completeness although the year pattern removes them first.
var stopwords = map[string]struct{}{
	"men":        {},
	"elite":      {},
	"highlights": {},
	"full":       {},
	"race":       {},
	"stage":      {},
	"live":       {},
	"official":   {},
	"2023":       {},
	"2024":       {},
	"2025":       {},
	"2026":       {},
}

// Canonicalize normalizes a race or feed item title for similarity scoring:
// lowercase, diacritics stripped, 4-digit years removed, punctuation replaced
// with spaces, whitespace collapsed, and stopwords dropped. The result is
// idempotent: Canonicalize(Canonicalize(s)) == Canonicalize(s).
func Canonicalize(raw string) string {
	s := strings.ToLower(raw)
	s = StripDiacritics(s)
	s = yearPattern.ReplaceAllString(s, " ")
	s = punctPattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))

	if s == "" {
		return ""
	}
	words := strings.Split(s, " ")
	kept := words[:0]
	for _, w := range words {
		if _, drop := stopwords[w]; drop || w == "" {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// StripDiacritics removes combining marks after NFD decomposition (é → e).
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}
