package stride

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent represents a filesystem event type
type WatchEvent string

// Watch event types
const (
	EventCreate WatchEvent = "create"
	EventModify WatchEvent = "modify"
	EventDelete WatchEvent = "delete"
	EventRename WatchEvent = "rename"
	EventChmod  WatchEvent = "chmod"
)

// ParseWatchEvent parses an event name, case-insensitively.
func ParseWatchEvent(s string) (WatchEvent, error) {
	switch e := WatchEvent(strings.ToLower(strings.TrimSpace(s))); e {
	case EventCreate, EventModify, EventDelete, EventRename, EventChmod:
		return e, nil
	}
	return "", fmt.Errorf("unknown watch event %q", s)
}

// WatchOptions defines options for watching filesystem changes
type WatchOptions struct {
	// Events to watch for. If empty, all events are watched.
	Events []WatchEvent

	// Whether to watch subdirectories recursively
	Recursive bool

	// MaxDepth bounds recursive registration below the root.
	MaxDepth int

	// Pattern to match files (e.g., "*.go")
	Pattern string

	// Pattern to ignore files
	IgnorePattern string

	// Whether to include hidden files and directories
	IncludeHidden bool

	// Timeout duration (0 means no timeout)
	Timeout time.Duration

	// Walk configures the traversal used to register directories. Its FS is
	// ignored: fsnotify only watches the host file system.
	Walk WalkOptions
}

// WatchMessage contains information about a filesystem event
type WatchMessage struct {
	Path  string     // Full path to the file
	Name  string     // Base name of the file
	Dir   string     // Directory containing the file
	Size  int64      // Size in bytes (0 for deleted files)
	Time  time.Time  // Modification time
	IsDir bool       // Whether it's a directory
	Event WatchEvent // Event type
}

// WatchResult represents a watch event result
type WatchResult struct {
	Message WatchMessage
	Error   error
}

// WatchHandler is a function that processes watch events
type WatchHandler func(ctx context.Context, result WatchResult) error

func defaultWatchHandler(out io.Writer) WatchHandler {
	return func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			return result.Error
		}
		_, err := fmt.Fprintf(out, "%s: %s\n", strings.ToUpper(string(result.Message.Event)), result.Message.Path)
		return err
	}
}

// watchOps maps the requested events to fsnotify operations.
func watchOps(events []WatchEvent) map[fsnotify.Op]WatchEvent {
	all := map[fsnotify.Op]WatchEvent{
		fsnotify.Create: EventCreate,
		fsnotify.Write:  EventModify,
		fsnotify.Remove: EventDelete,
		fsnotify.Rename: EventRename,
		fsnotify.Chmod:  EventChmod,
	}
	if len(events) == 0 {
		return all
	}
	ops := make(map[fsnotify.Op]WatchEvent, len(events))
	for op, e := range all {
		for _, want := range events {
			if e == want {
				ops[op] = e
			}
		}
	}
	return ops
}

// watchOrder fixes which event wins when fsnotify reports several at once.
var watchOrder = []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename, fsnotify.Chmod}

// addTree registers root and, when recursive, every directory below it found by
// a directory-only Find.
func addTree(watcher *fsnotify.Watcher, root string, opts WatchOptions, log *zap.Logger) error {
	if !opts.Recursive {
		return watcher.Add(root)
	}

	walkOpts := opts.Walk
	walkOpts.FS = OSFS{}
	walkOpts.Logger = log

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = Unlimited
	}
	pred := func(path string, attrs Attributes) bool {
		if path != root && !opts.IncludeHidden && isHidden(path) {
			return false
		}
		return attrs.IsDir
	}
	seq, err := Find(root, maxDepth, pred, walkOpts)
	if err != nil {
		return err
	}
	defer seq.Close()

	for seq.Next() {
		if err := watcher.Add(seq.Path()); err != nil {
			log.Warn("error watching directory", zap.String("path", seq.Path()), zap.Error(err))
		}
	}
	return seq.Err()
}

// Watch monitors a directory for filesystem changes until ctx is done or the
// timeout expires.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	if handler == nil {
		handler = defaultWatchHandler(os.Stdout)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	log := opts.Walk.logger()
	defer log.Sync()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root, opts, log); err != nil {
		return fmt.Errorf("error watching directory %s: %w", root, err)
	}
	log.Debug("watching", zap.String("root", root), zap.Bool("recursive", opts.Recursive))

	ops := watchOps(opts.Events)
	report := func(err error) {
		if herr := handler(ctx, WatchResult{Error: err}); herr != nil {
			log.Warn("watch handler failed", zap.Error(herr))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			report(fmt.Errorf("watcher error: %w", err))

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			var eventType WatchEvent
			for _, op := range watchOrder {
				if e, wanted := ops[op]; wanted && event.Has(op) {
					eventType = e
					break
				}
			}
			if eventType == "" {
				continue
			}

			var info os.FileInfo
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				info, err = os.Stat(event.Name)
				if err != nil {
					report(fmt.Errorf("error getting file info for %s: %w", event.Name, err))
					continue
				}
				if opts.Recursive && info.IsDir() && event.Has(fsnotify.Create) {
					if err := addTree(watcher, event.Name, opts, log); err != nil {
						report(fmt.Errorf("error watching new directory %s: %w", event.Name, err))
					}
				}
			}

			name := filepath.Base(event.Name)
			if opts.Pattern != "" {
				if matched, _ := filepath.Match(opts.Pattern, name); !matched {
					continue
				}
			}
			if opts.IgnorePattern != "" {
				if matched, _ := filepath.Match(opts.IgnorePattern, name); matched {
					continue
				}
			}
			if !opts.IncludeHidden && isHidden(event.Name) {
				continue
			}

			msg := WatchMessage{
				Path:  event.Name,
				Name:  name,
				Dir:   filepath.Dir(event.Name),
				Time:  time.Now(),
				Event: eventType,
			}
			if info != nil {
				msg.Size = info.Size()
				msg.IsDir = info.IsDir()
				msg.Time = info.ModTime()
			}

			if err := handler(ctx, WatchResult{Message: msg}); err != nil {
				log.Warn("error handling event", zap.String("path", event.Name), zap.Error(err))
			}
		}
	}
}

func (m WatchMessage) findMessage() FindMessage {
	return FindMessage{Path: m.Path, Name: m.Name, Dir: m.Dir, Size: m.Size, Time: m.Time, IsDir: m.IsDir}
}

// WatchWithExec watches for filesystem changes and executes a command for each event
func WatchWithExec(ctx context.Context, root string, opts WatchOptions, cmdTemplate string, out io.Writer) error {
	return Watch(ctx, root, opts, func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			return result.Error
		}
		cmd := strings.ReplaceAll(cmdTemplate, "{event}", string(result.Message.Event))
		return executeCommand(ctx, formatCommand(cmd, result.Message.findMessage()), out)
	})
}

// WatchWithFormat watches for filesystem changes and formats output for each event
func WatchWithFormat(ctx context.Context, root string, opts WatchOptions, formatTemplate string, out io.Writer) error {
	return Watch(ctx, root, opts, func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			return result.Error
		}
		format := strings.ReplaceAll(formatTemplate, "{event}", string(result.Message.Event))
		_, err := fmt.Fprintln(out, formatCommand(format, result.Message.findMessage()))
		return err
	})
}
