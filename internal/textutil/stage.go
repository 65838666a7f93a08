package textutil

import (
	"regexp"
	"strconv"
)

var (
	stagePattern    = regexp.MustCompile(`(?i)\bstage\s+(\d+)\b`)
	prologuePattern = regexp.MustCompile(`(?i)\bprologue\b`)
)

// StageNumber extracts a stage number from a title. An explicit "Stage N"
// marker wins; "Prologue" maps to stage 0. The boolean result reports
// whether any stage marker was present.
func StageNumber(title string) (int, bool) {
	if m := stagePattern.FindStringSubmatch(title); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n, true
		}
	}
	if prologuePattern.MatchString(title) {
		return 0, true
	}
	return 0, false
}
