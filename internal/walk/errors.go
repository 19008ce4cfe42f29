package stride

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrIllegalState is matched by every error caused by using a Walker, EventCursor or
// Sequence out of protocol. It never describes an I/O failure.
var ErrIllegalState = errors.New("stride: illegal state")

var (
	ErrClosed         = fmt.Errorf("%w: walker is closed", ErrIllegalState)
	ErrNotStarted     = fmt.Errorf("%w: walker has not been started", ErrIllegalState)
	ErrAlreadyStarted = fmt.Errorf("%w: walker has already been started", ErrIllegalState)
	ErrExhausted      = fmt.Errorf("%w: no more events", ErrIllegalState)
)

var (
	// ErrNegativeDepth is returned when a traversal is configured with maxDepth < 0.
	ErrNegativeDepth = errors.New("stride: max depth must not be negative")

	// ErrInvalidVisitResult is returned by WalkTree when a visitor returns the zero VisitResult.
	ErrInvalidVisitResult = errors.New("stride: visitor returned an invalid result")

	// ErrLoop is matched by every *LoopError.
	ErrLoop = errors.New("stride: file system loop detected")

	// ErrNotDir is returned by backends asked to open something that is not a directory.
	ErrNotDir = errors.New("stride: not a directory")
)

// LoopError reports a directory reached through a symbolic link that resolves to
// one of its own ancestors.
type LoopError struct {
	Path     string // location that closes the cycle
	Ancestor string // directory already on the stack
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("stride: file system loop: %s refers to ancestor %s", e.Path, e.Ancestor)
}

func (e *LoopError) Is(target error) bool { return target == ErrLoop }

// ListError wraps a failure that happened while iterating a single directory listing.
type ListError struct {
	Dir string
	Err error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("stride: listing %s: %v", e.Dir, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// isPermission reports whether err is a permission-style failure, which Advance
// skips silently instead of attaching to an event.
func isPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
