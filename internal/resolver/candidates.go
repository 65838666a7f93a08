package resolver

import (
	"regexp"
	"strings"
)

var (
	ladiesTail   = regexp.MustCompile(`(?i)\s*\(ladies\)\s*$`)
	yearPattern  = regexp.MustCompile(`\b(20\d{2})\b`)
	bracketTail  = regexp.MustCompile(`\[(.+?)\]\s*$`)
	bracketStrip = regexp.MustCompile(`\s*\[.+?\]\s*$`)
	stageTail    = regexp.MustCompile(`(?i)\s*[–-]\s*Stage\s+(Prologue|\d+)\s*$`)
)

// Candidates decomposes a feed display title and builds the candidate
// download URLs under the file host's year-folder convention. A title
// without a four-digit year yields no candidates. The returned set is
// ordered most-specific first and de-duplicated.
func Candidates(root, displayTitle string) []string {
	title := displayTitle
	ladiesSuffix := ""
	if loc := ladiesTail.FindStringIndex(title); loc != nil {
		ladiesSuffix = " (ladies)"
		title = strings.TrimSpace(title[:loc[0]])
	}

	ym := yearPattern.FindStringSubmatch(title)
	if ym == nil {
		return nil
	}
	year := ym[1]

	suffix := "FULL RACE"
	if sm := bracketTail.FindStringSubmatch(title); sm != nil {
		suffix = strings.TrimSpace(strings.Replace(sm[1], "–", "-", 1))
	}

	withoutBracket := strings.TrimSpace(bracketStrip.ReplaceAllString(title, ""))
	trailingYear := regexp.MustCompile(`\s*` + year + `\s*$`)
	baseTitle := strings.TrimSpace(trailingYear.ReplaceAllString(withoutBracket, ""))

	stageLabel := ""
	seriesBase := baseTitle
	if loc := stageTail.FindStringSubmatchIndex(baseTitle); loc != nil {
		stageLabel = " – Stage " + baseTitle[loc[2]:loc[3]]
		seriesBase = strings.TrimSpace(baseTitle[:loc[0]])
	}

	endsWithYear := regexp.MustCompile(`(?:^|\s)` + year + `$`)
	seriesFolder := seriesBase
	if !endsWithYear.MatchString(strings.TrimSpace(seriesBase)) {
		seriesFolder = seriesBase + " " + year
	}

	folder := baseTitle + " " + year
	file := baseTitle + " " + year + " [" + suffix + "]" + ladiesSuffix + ".mp4"
	seriesFile := seriesFolder + stageLabel + " [" + suffix + "]" + ladiesSuffix + ".mp4"

	yearBase := strings.TrimRight(root, "/") + "/" + year
	urls := []string{
		yearBase + "/" + plusEncode(folder) + "/" + plusEncode(file),
		yearBase + "/" + plusEncode(file),
		yearBase + "/" + plusEncode(seriesFolder) + "/" + plusEncode(seriesFile),
	}

	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// plusEncode percent-encodes a path segment the way the file host expects:
// spaces become '+', parentheses and the other JS-unreserved marks stay
// literal, everything else is %XX per UTF-8 byte.
func plusEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('+')
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("-_.!~*'()", c) >= 0:
			b.WriteByte(c)
		default:
			const hex = "0123456789ABCDEF"
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
