package walk

import (
	"context"
	"io"

	internal "github.com/TFMV/stridewalk/internal/walk"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Re-export the types from the internal package
type (
	// WalkOptions configures a traversal.
	WalkOptions = internal.WalkOptions

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel

	// Attributes describe one file system entry.
	Attributes = internal.Attributes

	// FileSystem is the storage a traversal reads from.
	FileSystem = internal.FileSystem

	// DirListing is a single-pass cursor over the entries of one directory.
	DirListing = internal.DirListing

	// Entry is one item of a DirListing.
	Entry = internal.Entry

	// OSFS is the host file system.
	OSFS = internal.OSFS

	// AferoFS adapts an afero filesystem.
	AferoFS = internal.AferoFS

	// Walker is the step-by-step traversal engine.
	Walker = internal.Walker

	// Event is one step of a Walker.
	Event = internal.Event

	// EventKind tells entries from directory boundaries.
	EventKind = internal.EventKind

	// EventCursor is a fetch-ahead iterator over Walker events.
	EventCursor = internal.EventCursor

	// Visitor receives WalkTree callbacks.
	Visitor = internal.Visitor

	// VisitorFuncs builds a Visitor from optional functions.
	VisitorFuncs = internal.VisitorFuncs

	// VisitResult steers WalkTree.
	VisitResult = internal.VisitResult

	// Sequence is a closeable lazy sequence of paths.
	Sequence = internal.Sequence

	// Predicate selects the entries reported by Find.
	Predicate = internal.Predicate

	// LoopError reports a symbolic link that leads back to an ancestor.
	LoopError = internal.LoopError

	// ListError wraps failures while iterating a List sequence.
	ListError = internal.ListError

	// Stats holds traversal statistics.
	Stats = internal.Stats

	// ProgressFn is called periodically with traversal statistics.
	ProgressFn = internal.ProgressFn

	// StorageReport contains information about storage usage.
	StorageReport = internal.StorageReport

	// ReportOptions configures BuildReport.
	ReportOptions = internal.ReportOptions

	// Re-export watch types
	WatchEvent   = internal.WatchEvent
	WatchOptions = internal.WatchOptions
	WatchMessage = internal.WatchMessage
	WatchResult  = internal.WatchResult
	WatchHandler = internal.WatchHandler
)

// Re-export the constants
const (
	Unlimited = internal.Unlimited

	// Log levels
	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug

	// Event kinds
	EventEntry          = internal.EventEntry
	EventStartDirectory = internal.EventStartDirectory
	EventEndDirectory   = internal.EventEndDirectory

	// Visit results
	Continue     = internal.Continue
	Terminate    = internal.Terminate
	SkipSubtree  = internal.SkipSubtree
	SkipSiblings = internal.SkipSiblings

	// Watch events
	EventCreate = internal.EventCreate
	EventModify = internal.EventModify
	EventDelete = internal.EventDelete
	EventRename = internal.EventRename
	EventChmod  = internal.EventChmod
)

// Re-export the errors
var (
	ErrIllegalState       = internal.ErrIllegalState
	ErrClosed             = internal.ErrClosed
	ErrNotStarted         = internal.ErrNotStarted
	ErrAlreadyStarted     = internal.ErrAlreadyStarted
	ErrExhausted          = internal.ErrExhausted
	ErrNegativeDepth      = internal.ErrNegativeDepth
	ErrInvalidVisitResult = internal.ErrInvalidVisitResult
	ErrLoop               = internal.ErrLoop
	ErrNotDir             = internal.ErrNotDir
)

// Walk returns every path below root, root first, in depth-first pre-order.
func Walk(root string, maxDepth int, opts WalkOptions) (*Sequence, error) {
	return internal.Walk(root, maxDepth, opts)
}

// Find returns the paths below root whose attributes satisfy pred.
func Find(root string, maxDepth int, pred Predicate, opts WalkOptions) (*Sequence, error) {
	return internal.Find(root, maxDepth, pred, opts)
}

// List returns the immediate entries of dir.
func List(dir string, opts WalkOptions) (*Sequence, error) {
	return internal.List(dir, opts)
}

// WalkTree drives a traversal of root through visitor.
func WalkTree(root string, opts WalkOptions, maxDepth int, visitor Visitor) error {
	return internal.WalkTree(root, opts, maxDepth, visitor)
}

// WalkTreeContext is WalkTree with cancellation.
func WalkTreeContext(ctx context.Context, root string, opts WalkOptions, maxDepth int, visitor Visitor) error {
	return internal.WalkTreeContext(ctx, root, opts, maxDepth, visitor)
}

// NewWalker creates a Walker for manual stepping.
func NewWalker(opts WalkOptions, maxDepth int) (*Walker, error) {
	return internal.NewWalker(opts, maxDepth)
}

// NewEventCursor starts w at root and returns a cursor over its events.
func NewEventCursor(w *Walker, root string) (*EventCursor, error) {
	return internal.NewEventCursor(w, root)
}

// NewOSFS returns the host file system.
func NewOSFS() OSFS {
	return internal.NewOSFS()
}

// NewAferoFS wraps an afero filesystem.
func NewAferoFS(fsys afero.Fs) *AferoFS {
	return internal.NewAferoFS(fsys)
}

// NewLogger creates a zap logger for the given level.
func NewLogger(level LogLevel) *zap.Logger {
	return internal.NewLogger(level)
}

// Summarize walks root and returns statistics about the tree.
func Summarize(ctx context.Context, root string, maxDepth int, opts WalkOptions, progress ProgressFn) (Stats, error) {
	return internal.Summarize(ctx, root, maxDepth, opts, progress)
}

// BuildReport summarises storage usage below root.
func BuildReport(ctx context.Context, root string, opts ReportOptions) (*StorageReport, error) {
	return internal.BuildReport(ctx, root, opts)
}

// Watch monitors a directory for filesystem changes.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	return internal.Watch(ctx, root, opts, handler)
}

// WatchWithExec executes a command for each filesystem event.
func WatchWithExec(ctx context.Context, root string, opts WatchOptions, cmdTemplate string, out io.Writer) error {
	return internal.WatchWithExec(ctx, root, opts, cmdTemplate, out)
}

// WatchWithFormat prints a formatted line for each filesystem event.
func WatchWithFormat(ctx context.Context, root string, opts WatchOptions, formatTemplate string, out io.Writer) error {
	return internal.WatchWithFormat(ctx, root, opts, formatTemplate, out)
}

// ParseWatchEvent parses an event name.
func ParseWatchEvent(s string) (WatchEvent, error) {
	return internal.ParseWatchEvent(s)
}
