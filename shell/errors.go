package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by Device implementations when a remote path
	// does not exist.
	ErrNotFound = errors.New("no such file or directory")

	// ErrExists is wrapped when a remote path already exists.
	ErrExists = errors.New("already exists")

	// ErrNotEmpty is wrapped when removing a non-empty directory without
	// the recursive variant.
	ErrNotEmpty = errors.New("directory not empty")

	// ErrInterrupted is returned by a Prompter when the operator hits
	// ctrl-C at a prompt.
	ErrInterrupted = errors.New("interrupted")

	// ErrNoHomeDir rejects '~' in remote paths.
	ErrNoHomeDir = errors.New("remote device has no home directory")
)

// ConflictError reports that a remote path already exists with a kind that
// forbids the requested operation.
type ConflictError struct {
	Path string
	Dir  bool
}

func (e *ConflictError) Error() string {
	if e.Dir {
		return fmt.Sprintf("%s exists on the device and is a directory", e.Path)
	}
	return fmt.Sprintf("%s already exists on the device", e.Path)
}

// HistoryRangeError reports a !<n> recall beyond the stored history,
// carrying the largest valid index.
type HistoryRangeError struct {
	Asked int
	Max   int
}

func (e *HistoryRangeError) Error() string {
	return fmt.Sprintf("!%d is invalid, max is !%d", e.Asked, e.Max)
}
