package stride

import (
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// dirFrame is one open directory on the traversal stack.
type dirFrame struct {
	path    string
	key     any
	listing DirListing
	skipped bool
}

// Walker performs a depth-first traversal one step at a time. Its stack holds one
// frame per open directory between the root and the directory being drained, so
// memory grows with depth rather than with the size of the tree, and the walk can
// be suspended indefinitely between calls.
//
// A Walker is not safe for concurrent use.
type Walker struct {
	fsys        FileSystem
	followLinks bool
	maxDepth    int
	log         *zap.Logger
	ownsLog     bool

	stack   []*dirFrame
	started bool
	closed  bool
}

// NewWalker creates a Walker that descends at most maxDepth levels below the root.
func NewWalker(opts WalkOptions, maxDepth int) (*Walker, error) {
	if maxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	return &Walker{
		fsys:        opts.fileSystem(),
		followLinks: opts.FollowLinks,
		maxDepth:    maxDepth,
		log:         opts.logger(),
		ownsLog:     opts.Logger == nil,
	}, nil
}

// Start visits root. It must be called exactly once, before Advance. Failures to
// read root are attached to the returned event; the error result only reports
// misuse of the Walker.
func (w *Walker) Start(root string) (Event, error) {
	if w.closed {
		return Event{}, ErrClosed
	}
	if w.started {
		return Event{}, ErrAlreadyStarted
	}
	w.started = true
	w.log.Debug("starting walk",
		zap.String("root", root),
		zap.Bool("follow_links", w.followLinks),
		zap.Int("max_depth", w.maxDepth),
	)
	ev, _ := w.visit(root, nil, false)
	return ev, nil
}

// Advance performs the next step. It reports false only once the stack is empty.
// Entries whose attributes or directory cannot be read because of a permission
// failure produce no event at all.
func (w *Walker) Advance() (Event, bool, error) {
	if w.closed {
		return Event{}, false, ErrClosed
	}
	if !w.started {
		return Event{}, false, ErrNotStarted
	}

	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]

		var (
			entry Entry
			ok    bool
		)
		if !top.skipped {
			entry, ok = top.listing.Next()
		}
		if !ok {
			var err error
			if !top.skipped {
				err = top.listing.Err()
			}
			if cerr := top.listing.Close(); cerr != nil {
				if err == nil {
					err = cerr
				} else {
					err = multierror.Append(err, cerr)
				}
			}
			w.stack = w.stack[:len(w.stack)-1]
			w.log.Debug("leaving directory",
				zap.String("path", top.path),
				zap.Bool("skipped", top.skipped),
				zap.Error(err),
			)
			return newErrorEvent(EventEndDirectory, top.path, err), true, nil
		}

		ev, visible := w.visit(w.fsys.Join(top.path, entry.Name), entry.Attrs, true)
		if visible {
			return ev, true, nil
		}
	}
	return Event{}, false, nil
}

// Pop closes the directory most recently entered and removes it from the stack
// without reporting its end. Close failures are logged and otherwise ignored.
func (w *Walker) Pop() {
	if len(w.stack) == 0 {
		return
	}
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if err := top.listing.Close(); err != nil {
		w.log.Debug("closing directory", zap.String("path", top.path), zap.Error(err))
	}
}

// SkipSiblings makes the next Advance close the current directory without
// reading its remaining entries.
func (w *Walker) SkipSiblings() {
	if len(w.stack) > 0 {
		w.stack[len(w.stack)-1].skipped = true
	}
}

// Depth returns the number of open directories.
func (w *Walker) Depth() int { return len(w.stack) }

// IsOpen reports whether Close has not been called yet.
func (w *Walker) IsOpen() bool { return !w.closed }

// Close releases every open directory. All listings are closed even if some
// fail; the failures are returned together. Close is idempotent.
func (w *Walker) Close() error {
	if w.closed {
		return nil
	}
	var result *multierror.Error
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		if err := top.listing.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	w.stack = nil
	w.closed = true
	if w.ownsLog {
		_ = w.log.Sync()
	}
	return result.ErrorOrNil()
}

// visit produces the event for one location. When skipPermission is set and the
// failure is permission-style, no event is produced and visible is false.
func (w *Walker) visit(path string, cached *Attributes, skipPermission bool) (ev Event, visible bool) {
	attrs, err := w.attributes(path, cached)
	if err != nil {
		if skipPermission && isPermission(err) {
			w.log.Debug("skipping entry", zap.String("path", path), zap.Error(err))
			return Event{}, false
		}
		return newErrorEvent(EventEntry, path, err), true
	}

	if len(w.stack) >= w.maxDepth || !attrs.IsDir {
		return newEvent(EventEntry, path, attrs), true
	}

	// Without link following the tree cannot contain a cycle.
	if w.followLinks {
		if ancestor, loop := w.wouldLoop(path, attrs.Key); loop {
			w.log.Debug("loop detected", zap.String("path", path), zap.String("ancestor", ancestor))
			return newErrorEvent(EventEntry, path, &LoopError{Path: path, Ancestor: ancestor}), true
		}
	}

	listing, err := w.fsys.OpenDir(path)
	if err != nil {
		if skipPermission && isPermission(err) {
			w.log.Debug("skipping directory", zap.String("path", path), zap.Error(err))
			return Event{}, false
		}
		return newErrorEvent(EventEntry, path, err), true
	}

	w.stack = append(w.stack, &dirFrame{path: path, key: attrs.Key, listing: listing})
	w.log.Debug("entering directory", zap.String("path", path), zap.Int("depth", len(w.stack)))
	return newEvent(EventStartDirectory, path, attrs), true
}

// attributes reads the attributes of path. Attributes cached by the listing
// describe the entry itself, so they are only used when that is what is wanted.
func (w *Walker) attributes(path string, cached *Attributes) (Attributes, error) {
	if cached != nil && (!w.followLinks || !cached.IsSymlink) {
		return *cached, nil
	}
	attrs, err := w.fsys.Stat(path, w.followLinks)
	if err != nil && w.followLinks {
		// A dangling link is still an entry.
		if lattrs, lerr := w.fsys.Stat(path, false); lerr == nil {
			return lattrs, nil
		}
	}
	return attrs, err
}

// wouldLoop reports whether path is the same directory as one already on the
// stack. Identity keys are compared when both sides have one; otherwise the
// file system decides, and a failure to decide counts as no match.
func (w *Walker) wouldLoop(path string, key any) (string, bool) {
	for i := len(w.stack) - 1; i >= 0; i-- {
		f := w.stack[i]
		if key != nil && f.key != nil {
			if key == f.key {
				return f.path, true
			}
			continue
		}
		same, err := w.fsys.SameFile(path, f.path)
		if err == nil && same {
			return f.path, true
		}
	}
	return "", false
}
