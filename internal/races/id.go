package races

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pelotarr/internal/services"
)

// ParseID validates a race id and splits it into its catalogue UUID and
// optional stage number. Valid shapes are "<uuidv4>" and "<uuidv4>::<n>"
// with n >= 1.
func ParseID(id string) (base string, stage int, err error) {
	base, suffix, hasStage := strings.Cut(id, "::")

	u, parseErr := uuid.Parse(base)
	if parseErr != nil || u.Version() != 4 {
		return "", 0, services.Wrap(services.ErrInvalidInput, "races", "parse id", fmt.Sprintf("%q is not a v4 UUID", id), nil)
	}

	if !hasStage {
		return base, 0, nil
	}
	n, convErr := strconv.Atoi(suffix)
	if convErr != nil || n < 1 || strings.HasPrefix(suffix, "0") {
		return "", 0, services.Wrap(services.ErrInvalidInput, "races", "parse id", fmt.Sprintf("%q has an invalid stage suffix", id), nil)
	}
	return base, n, nil
}

// StageID builds the composite id for one stage of a multi-stage race.
func StageID(base string, stage int) string {
	return fmt.Sprintf("%s::%d", base, stage)
}

// ValidID reports whether id parses cleanly.
func ValidID(id string) bool {
	_, _, err := ParseID(id)
	return err == nil
}
