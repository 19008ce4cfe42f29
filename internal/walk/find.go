package stride

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// EntryType restricts Find to one kind of entry.
type EntryType string

const (
	TypeAny     EntryType = ""
	TypeFile    EntryType = "f"
	TypeDir     EntryType = "d"
	TypeSymlink EntryType = "l"
)

// ParseEntryType parses the find(1) style letters f, d and l.
func ParseEntryType(s string) (EntryType, error) {
	switch t := EntryType(s); t {
	case TypeAny, TypeFile, TypeDir, TypeSymlink:
		return t, nil
	}
	return TypeAny, fmt.Errorf("invalid entry type %q (expected f, d or l)", s)
}

// FindOptions defines the criteria for finding files
type FindOptions struct {
	// Pattern matching options
	NamePattern   string         // Match by file name (supports wildcards)
	PathPattern   string         // Match by path (supports wildcards)
	IgnorePattern string         // Skip paths matching this pattern
	RegexPattern  *regexp.Regexp // Match by regular expression

	// Time-based filtering
	OlderThan time.Duration // Files older than this duration
	NewerThan time.Duration // Files newer than this duration

	// Size-based filtering
	LargerSize  int64 // Files larger than this size (bytes)
	SmallerSize int64 // Files smaller than this size (bytes)

	IncludeHidden bool      // Whether to include hidden files
	Type          EntryType // Restrict to files, directories or links
}

// Predicate compiles the options into a Predicate for Find. Hidden entries are
// judged by their own name only; use FindEach to prune hidden directories.
func (o FindOptions) Predicate() Predicate {
	return func(path string, attrs Attributes) bool {
		if !o.IncludeHidden && isHidden(path) {
			return false
		}
		return matchFind(o, NewFindMessage(path, attrs))
	}
}

// FindMessage holds information about a file found during traversal
type FindMessage struct {
	Path      string    // Full path to the file
	Name      string    // Base name of the file
	Dir       string    // Directory containing the file
	Size      int64     // Size in bytes
	Time      time.Time // Modification time
	IsDir     bool      // Whether the entry is a directory
	IsSymlink bool      // Whether the entry is a symbolic link
}

// NewFindMessage describes path from the attributes the walker fetched.
func NewFindMessage(path string, attrs Attributes) FindMessage {
	return FindMessage{
		Path:      path,
		Name:      filepath.Base(path),
		Dir:       filepath.Dir(path),
		Size:      attrs.Size(),
		Time:      attrs.ModTime(),
		IsDir:     attrs.IsDir,
		IsSymlink: attrs.IsSymlink,
	}
}

// FindResult represents a file that matched the find criteria
type FindResult struct {
	Message FindMessage
	Error   error
}

// FindHandler is a function that processes each found file
type FindHandler func(ctx context.Context, result FindResult) error

// PrintHandler returns a handler that prints found paths to out.
func PrintHandler(out io.Writer) FindHandler {
	return func(ctx context.Context, result FindResult) error {
		if result.Error != nil {
			return result.Error
		}
		_, err := fmt.Fprintln(out, result.Message.Path)
		return err
	}
}

// ExecHandler returns a handler that executes a command for each found file
func ExecHandler(cmdTemplate string, out io.Writer) FindHandler {
	return func(ctx context.Context, result FindResult) error {
		if result.Error != nil {
			return result.Error
		}
		cmd := formatCommand(cmdTemplate, result.Message)
		return executeCommand(ctx, cmd, out)
	}
}

// FormatHandler returns a handler that formats output according to a template
func FormatHandler(formatTemplate string, out io.Writer) FindHandler {
	return func(ctx context.Context, result FindResult) error {
		if result.Error != nil {
			return result.Error
		}
		_, err := fmt.Fprintln(out, formatCommand(formatTemplate, result.Message))
		return err
	}
}

// formatCommand replaces placeholders in a template with values from the message
func formatCommand(template string, msg FindMessage) string {
	size := strconv.FormatInt(msg.Size, 10)
	modified := msg.Time.Format(time.RFC3339)

	r := strings.NewReplacer(
		`{""}`, strconv.Quote(msg.Path),
		`{"base"}`, strconv.Quote(msg.Name),
		`{"dir"}`, strconv.Quote(msg.Dir),
		`{"size"}`, strconv.Quote(size),
		`{"time"}`, strconv.Quote(modified),
		"{}", msg.Path,
		"{base}", msg.Name,
		"{dir}", msg.Dir,
		"{size}", size,
		"{time}", modified,
	)
	return r.Replace(template)
}

// executeCommand runs cmdStr without a shell and copies its output to out.
func executeCommand(ctx context.Context, cmdStr string, out io.Writer) error {
	args := strings.Fields(cmdStr)
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("command error: %s: %w", stderr.String(), err)
		}
		return err
	}

	if stdout.Len() > 0 && out != nil {
		_, err := out.Write(stdout.Bytes())
		return err
	}
	return nil
}

// nameMatch checks if a file name matches the given pattern
func nameMatch(pattern, path string) bool {
	pattern = norm.NFC.String(pattern)
	path = norm.NFC.String(path)

	matched, err := filepath.Match(pattern, filepath.Base(path))
	if err != nil {
		return false
	}
	if !matched {
		// Try matching against each path component
		for _, pathComponent := range strings.Split(path, string(os.PathSeparator)) {
			if pathComponent == pattern {
				return true
			}
		}
	}
	return matched
}

// pathMatch checks if a path matches the given pattern
func pathMatch(pattern, path string) bool {
	patternParts := strings.Split(pattern, "*")
	if len(patternParts) == 1 {
		return pattern == path
	}

	if !strings.HasPrefix(path, patternParts[0]) {
		return false
	}

	path = path[len(patternParts[0]):]
	for i := 1; i < len(patternParts)-1; i++ {
		idx := strings.Index(path, patternParts[i])
		if idx == -1 {
			return false
		}
		path = path[idx+len(patternParts[i]):]
	}

	return strings.HasSuffix(path, patternParts[len(patternParts)-1])
}

// matchFind checks if an entry matches the find criteria
func matchFind(opts FindOptions, msg FindMessage) bool {
	switch opts.Type {
	case TypeFile:
		if msg.IsDir || msg.IsSymlink {
			return false
		}
	case TypeDir:
		if !msg.IsDir {
			return false
		}
	case TypeSymlink:
		if !msg.IsSymlink {
			return false
		}
	}

	if opts.NamePattern != "" && !nameMatch(opts.NamePattern, msg.Path) {
		return false
	}
	if opts.PathPattern != "" && !pathMatch(opts.PathPattern, msg.Path) {
		return false
	}
	if opts.IgnorePattern != "" && pathMatch(opts.IgnorePattern, msg.Path) {
		return false
	}
	if opts.RegexPattern != nil && !opts.RegexPattern.MatchString(norm.NFC.String(msg.Path)) {
		return false
	}

	if opts.OlderThan > 0 && time.Since(msg.Time) <= opts.OlderThan {
		return false
	}
	if opts.NewerThan > 0 && time.Since(msg.Time) >= opts.NewerThan {
		return false
	}

	if opts.LargerSize > 0 && msg.Size <= opts.LargerSize {
		return false
	}
	if opts.SmallerSize > 0 && msg.Size >= opts.SmallerSize {
		return false
	}
	return true
}

// CompileRegex compiles a pattern after NFC normalisation, so that it matches
// names regardless of how the file system composed their accents.
func CompileRegex(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(norm.NFC.String(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return re, nil
}

// isHidden checks if a file is hidden
func isHidden(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// FindEach walks root and passes every matching entry to handler. Hidden
// directories are pruned unless IncludeHidden is set, and per-entry failures are
// handed to handler as a FindResult with Error set; a handler error stops the walk.
func FindEach(ctx context.Context, root string, maxDepth int, opts FindOptions, walkOpts WalkOptions, handler FindHandler) error {
	if handler == nil {
		handler = PrintHandler(os.Stdout)
	}

	visit := func(path string, attrs Attributes) (VisitResult, error) {
		msg := NewFindMessage(path, attrs)
		if !matchFind(opts, msg) {
			return Continue, nil
		}
		return Continue, handler(ctx, FindResult{Message: msg})
	}

	return WalkTreeContext(ctx, root, walkOpts, maxDepth, VisitorFuncs{
		PreVisitDirectoryFunc: func(path string, attrs Attributes) (VisitResult, error) {
			if path != root && !opts.IncludeHidden && isHidden(path) {
				return SkipSubtree, nil
			}
			return visit(path, attrs)
		},
		VisitFileFunc: func(path string, attrs Attributes) (VisitResult, error) {
			if !opts.IncludeHidden && isHidden(path) {
				return Continue, nil
			}
			return visit(path, attrs)
		},
		VisitFileFailedFunc: func(path string, err error) (VisitResult, error) {
			return Continue, handler(ctx, FindResult{
				Message: FindMessage{Path: path, Name: filepath.Base(path), Dir: filepath.Dir(path)},
				Error:   err,
			})
		},
		PostVisitDirectoryFunc: func(path string, err error) (VisitResult, error) {
			if err != nil {
				return Continue, handler(ctx, FindResult{
					Message: FindMessage{Path: path, Name: filepath.Base(path), Dir: filepath.Dir(path), IsDir: true},
					Error:   err,
				})
			}
			return Continue, nil
		},
	})
}

// FindWithExec searches for files and executes a command for each match
func FindWithExec(ctx context.Context, root string, maxDepth int, opts FindOptions, walkOpts WalkOptions, cmdTemplate string, out io.Writer) error {
	return FindEach(ctx, root, maxDepth, opts, walkOpts, ExecHandler(cmdTemplate, out))
}

// FindWithFormat searches for files and formats output according to a template
func FindWithFormat(ctx context.Context, root string, maxDepth int, opts FindOptions, walkOpts WalkOptions, formatTemplate string, out io.Writer) error {
	return FindEach(ctx, root, maxDepth, opts, walkOpts, FormatHandler(formatTemplate, out))
}
