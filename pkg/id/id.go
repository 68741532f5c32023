package id

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// New returns a lowercase ULID string. Backup filenames embed one so
// repeated fallback saves sort by time and never clobber each other.
func New() string {
	return strings.ToLower(ulid.Make().String())
}
