package textutil

import (
	"regexp"
	"strings"
)

var (
	unsafeFilePattern  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	nonAlnumPattern    = regexp.MustCompile(`[^A-Za-z0-9 ]+`)
	trailingDotPattern = regexp.MustCompile(`[ .]+$`)
	reservedDirNames   = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[1-9]|lpt[1-9])$`)
)

// SanitizeFileName removes characters that are unsafe in file names and
// collapses runs of whitespace. Case and spaces are preserved.
func SanitizeFileName(name string) string {
	s := unsafeFilePattern.ReplaceAllString(name, "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// SanitizeDirName converts a display name to a directory name that is safe
// on every filesystem Jellyfin runs against: diacritics folded, anything
// outside A-Z a-z 0-9 and space replaced, trailing dots and spaces removed,
// Windows reserved device names suffixed, length capped.
func SanitizeDirName(input string) string {
	s := StripDiacritics(input)
	s = nonAlnumPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	s = trailingDotPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if reservedDirNames.MatchString(s) {
		s += "-dir"
	}
	if s == "" {
		s = "untitled"
	}
	if len(s) > 240 {
		s = s[:240]
	}
	return s
}
