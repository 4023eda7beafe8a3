package prompt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses runs of non-alphanumerics into single
// hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SupplementarySlug derives the slug of the per-day override of a task prompt.
// The day id keeps it unique across days without a counter.
func SupplementarySlug(parentSlug string, dayID uuid.UUID) string {
	return fmt.Sprintf("%s-day-%s", parentSlug, dayID)
}

// SupplementaryName derives the display name of a per-day override.
func SupplementaryName(parentName string, dayID uuid.UUID) string {
	return fmt.Sprintf("%s (day %s)", parentName, shortID(dayID))
}

func shortID(id uuid.UUID) string {
	s := id.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
