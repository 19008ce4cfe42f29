package stride

import (
	"errors"
	"iter"
)

// Predicate selects entries for Find. attrs are the attributes the traversal
// already fetched; no further metadata call is made.
type Predicate func(path string, attrs Attributes) bool

// Sequence is a lazy, single-pass, closeable sequence of paths. The first failure
// ends it: Next returns false and Err reports the failure. A Sequence is not
// restartable and must be closed to release open directories.
//
//	seq, err := stride.Walk(root, stride.Unlimited, stride.WalkOptions{})
//	if err != nil {
//		return err
//	}
//	defer seq.Close()
//	for seq.Next() {
//		fmt.Println(seq.Path())
//	}
//	return seq.Err()
type Sequence struct {
	pull  func() (string, bool, error)
	close func() error

	path   string
	err    error
	done   bool
	closed bool
}

// Next advances to the next path.
func (s *Sequence) Next() bool {
	if s.done || s.closed {
		return false
	}
	path, ok, err := s.pull()
	if err != nil {
		s.err = err
		s.done = true
		return false
	}
	if !ok {
		s.done = true
		return false
	}
	s.path = path
	return true
}

// Path returns the path produced by the last successful Next.
func (s *Sequence) Path() string { return s.path }

// Err returns the failure that ended the sequence, if any.
func (s *Sequence) Err() error { return s.err }

// Close releases the resources held by the sequence. It is idempotent.
func (s *Sequence) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.close()
}

// All returns the remaining paths as an iterator. The failure that ends the
// sequence, if any, is yielded last with an empty path. Breaking out of the loop
// does not close the sequence.
func (s *Sequence) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for s.Next() {
			if !yield(s.path, nil) {
				return
			}
		}
		if s.err != nil {
			yield("", s.err)
		}
	}
}

// Collect drains the sequence into a slice and closes it.
func (s *Sequence) Collect() ([]string, error) {
	defer s.Close()
	var paths []string
	for s.Next() {
		paths = append(paths, s.path)
	}
	return paths, s.err
}

// Walk returns every location under root, root first, in depth-first pre-order,
// descending at most maxDepth levels.
func Walk(root string, maxDepth int, opts WalkOptions) (*Sequence, error) {
	return Find(root, maxDepth, nil, opts)
}

// Find is Walk restricted to the entries accepted by pred. A nil pred accepts
// everything. Failures are reported regardless of pred.
func Find(root string, maxDepth int, pred Predicate, opts WalkOptions) (*Sequence, error) {
	w, err := NewWalker(opts, maxDepth)
	if err != nil {
		return nil, err
	}
	return find(w, root, pred)
}

// find starts w at root. The walker is closed if it cannot be started.
func find(w *Walker, root string, pred Predicate) (*Sequence, error) {
	cursor, err := NewEventCursor(w, root)
	if err != nil {
		return nil, errors.Join(err, w.Close())
	}
	return &Sequence{
		pull: func() (string, bool, error) {
			for {
				more, err := cursor.HasNext()
				if err != nil || !more {
					return "", false, err
				}
				ev, err := cursor.Next()
				if err != nil {
					return "", false, err
				}
				if pred == nil || pred(ev.Path(), ev.Attributes()) {
					return ev.Path(), true, nil
				}
			}
		},
		close: cursor.Close,
	}, nil
}

// List returns the immediate entries of dir, in listing order. A failure to open
// dir is returned directly; failures while iterating end the sequence with a
// *ListError.
func List(dir string, opts WalkOptions) (*Sequence, error) {
	fsys := opts.fileSystem()
	listing, err := fsys.OpenDir(dir)
	if err != nil {
		return nil, err
	}
	return &Sequence{
		pull: func() (string, bool, error) {
			entry, ok := listing.Next()
			if !ok {
				if err := listing.Err(); err != nil {
					return "", false, &ListError{Dir: dir, Err: err}
				}
				return "", false, nil
			}
			return fsys.Join(dir, entry.Name), true, nil
		},
		close: listing.Close,
	}, nil
}
