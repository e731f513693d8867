package identifier

import (
	"fmt"

	"github.com/google/uuid"
)

// Set is the full three-tier identifier minted for one record. All three
// values are assigned exactly once at creation and never mutated.
type Set struct {
	LocalSequence int64
	DisplayCode   string
	GlobalHandle  string
}

func (s Set) IsComplete() bool {
	return s.LocalSequence > 0 && s.DisplayCode != "" && s.GlobalHandle != ""
}

// FormatDisplayCode composes the human-readable year-scoped code, e.g.
// ESC-2025-003. The suffix is the year-scoped counter value, not the lifetime
// sequence, and is zero-padded to at least three digits.
func FormatDisplayCode(entityType EntityType, year int, yearSequence int64, padWidth int) string {
	if padWidth < 3 {
		padWidth = 3
	}
	return fmt.Sprintf("%s-%d-%0*d", entityType.Prefix(), year, padWidth, yearSequence)
}

// NewGlobalHandle renders a random UUID with its leading characters replaced
// by the lowercase entity prefix and a separator. The remaining 28 hex digits
// keep the collision probability negligible; actual uniqueness is enforced by
// the global_handles table, not by this function.
func NewGlobalHandle(entityType EntityType, id uuid.UUID) string {
	p := entityType.HandlePrefix()
	return p + "-" + id.String()[len(p)+1:]
}
