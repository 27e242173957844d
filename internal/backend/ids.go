package backend

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a 32 character alphanumeric id, the format used for rows and files.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
