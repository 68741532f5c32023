package persist

import "errors"

var (
	// ErrCancelled reports a dismissed picker. Workflows treat it as a
	// silent no-op, never as a failure.
	ErrCancelled = errors.New("cancelled")

	// ErrUnavailable means the platform offers no picker at all; save
	// workflows degrade to a one-shot download.
	ErrUnavailable = errors.New("file picker unavailable")
)

// Picker is the file-dialog collaborator. Implementations block on user
// interaction; there is no timeout.
type Picker interface {
	// PickOpen asks the user for an existing file and returns its path.
	PickOpen() (string, error)

	// PickSave asks the user for a destination, offering a suggested
	// filename, and returns the chosen path.
	PickSave(suggested string) (string, error)
}
