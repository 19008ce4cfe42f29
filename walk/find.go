package walk

import (
	"context"
	"io"
	"regexp"

	internal "github.com/TFMV/stridewalk/internal/walk"
)

// Re-export the find types
type (
	// FindOptions defines the criteria for finding files.
	FindOptions = internal.FindOptions

	// EntryType restricts a search to one kind of entry.
	EntryType = internal.EntryType

	// FindMessage holds information about a file found during traversal.
	FindMessage = internal.FindMessage

	// FindResult represents a file that matched the find criteria.
	FindResult = internal.FindResult

	// FindHandler processes find results.
	FindHandler = internal.FindHandler
)

// Entry types
const (
	TypeAny     = internal.TypeAny
	TypeFile    = internal.TypeFile
	TypeDir     = internal.TypeDir
	TypeSymlink = internal.TypeSymlink
)

// FindEach walks root and passes every entry matching opts to handler.
func FindEach(ctx context.Context, root string, maxDepth int, opts FindOptions, walkOpts WalkOptions, handler FindHandler) error {
	return internal.FindEach(ctx, root, maxDepth, opts, walkOpts, handler)
}

// FindWithExec executes a command for each match.
func FindWithExec(ctx context.Context, root string, maxDepth int, opts FindOptions, walkOpts WalkOptions, cmdTemplate string, out io.Writer) error {
	return internal.FindWithExec(ctx, root, maxDepth, opts, walkOpts, cmdTemplate, out)
}

// FindWithFormat prints a formatted line for each match.
func FindWithFormat(ctx context.Context, root string, maxDepth int, opts FindOptions, walkOpts WalkOptions, formatTemplate string, out io.Writer) error {
	return internal.FindWithFormat(ctx, root, maxDepth, opts, walkOpts, formatTemplate, out)
}

// PrintHandler prints the path of every match to out.
func PrintHandler(out io.Writer) FindHandler {
	return internal.PrintHandler(out)
}

// ParseEntryType parses the letters f, d and l.
func ParseEntryType(s string) (EntryType, error) {
	return internal.ParseEntryType(s)
}

// CompileRegex compiles a Unicode-normalised regular expression.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	return internal.CompileRegex(pattern)
}
