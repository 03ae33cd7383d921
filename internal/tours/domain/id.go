package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidID reports whether id can name a stored row. Projects, hotspots and
// users are keyed by uuid.
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// NewID returns a prefixed random id, e.g. "draft_3f2a...".
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", ""))
}
