package stride

import (
	"context"

	"go.uber.org/zap"
)

// VisitResult tells WalkTree how to continue after a callback.
type VisitResult int

const (
	// Continue the traversal. The zero VisitResult is not valid.
	Continue VisitResult = iota + 1
	// Terminate the traversal immediately.
	Terminate
	// SkipSubtree skips the directory's entries. It only has an effect when
	// returned from PreVisitDirectory; anywhere else it means Continue.
	SkipSubtree
	// SkipSiblings skips the remaining entries of the directory that contains the
	// visited location. When returned from PreVisitDirectory the directory's own
	// entries are skipped as well.
	SkipSiblings
)

var visitResultStrings = [...]string{
	"Continue",
	"Terminate",
	"SkipSubtree",
	"SkipSiblings",
}

func (r VisitResult) String() string {
	if r < Continue || r > SkipSiblings {
		return "Invalid"
	}
	return visitResultStrings[r-1]
}

// Visitor receives the callbacks of WalkTree.
type Visitor interface {
	// PreVisitDirectory is called before the entries of a directory are visited.
	PreVisitDirectory(path string, attrs Attributes) (VisitResult, error)
	// VisitFile is called for every entry that is not descended into.
	VisitFile(path string, attrs Attributes) (VisitResult, error)
	// VisitFileFailed is called when an entry could not be read or opened.
	VisitFileFailed(path string, err error) (VisitResult, error)
	// PostVisitDirectory is called after all entries of a directory were visited.
	// err is non-nil if the listing stopped early.
	PostVisitDirectory(path string, err error) (VisitResult, error)
}

// VisitorFuncs builds a Visitor from optional functions. A missing function
// continues, except that a missing VisitFileFailed or PostVisitDirectory returns
// the failure it was given, stopping the walk.
type VisitorFuncs struct {
	PreVisitDirectoryFunc  func(path string, attrs Attributes) (VisitResult, error)
	VisitFileFunc          func(path string, attrs Attributes) (VisitResult, error)
	VisitFileFailedFunc    func(path string, err error) (VisitResult, error)
	PostVisitDirectoryFunc func(path string, err error) (VisitResult, error)
}

func (v VisitorFuncs) PreVisitDirectory(path string, attrs Attributes) (VisitResult, error) {
	if v.PreVisitDirectoryFunc == nil {
		return Continue, nil
	}
	return v.PreVisitDirectoryFunc(path, attrs)
}

func (v VisitorFuncs) VisitFile(path string, attrs Attributes) (VisitResult, error) {
	if v.VisitFileFunc == nil {
		return Continue, nil
	}
	return v.VisitFileFunc(path, attrs)
}

func (v VisitorFuncs) VisitFileFailed(path string, err error) (VisitResult, error) {
	if v.VisitFileFailedFunc == nil {
		return Terminate, err
	}
	return v.VisitFileFailedFunc(path, err)
}

func (v VisitorFuncs) PostVisitDirectory(path string, err error) (VisitResult, error) {
	if v.PostVisitDirectoryFunc == nil {
		if err != nil {
			return Terminate, err
		}
		return Continue, nil
	}
	return v.PostVisitDirectoryFunc(path, err)
}

// WalkTree walks the tree rooted at root, calling visitor for every event. It
// returns when the tree is exhausted or the visitor returns Terminate, and
// reports the first error a callback returns. Per-entry failures go to
// VisitFileFailed and do not stop the walk by themselves.
func WalkTree(root string, opts WalkOptions, maxDepth int, visitor Visitor) error {
	return WalkTreeContext(context.Background(), root, opts, maxDepth, visitor)
}

// WalkTreeContext is WalkTree with cancellation checked between steps.
func WalkTreeContext(ctx context.Context, root string, opts WalkOptions, maxDepth int, visitor Visitor) error {
	w, err := NewWalker(opts, maxDepth)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			w.log.Debug("closing walker", zap.Error(cerr))
		}
	}()

	ev, err := w.Start(root)
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			w.log.Warn("walk canceled", zap.String("path", ev.Path()))
			return err
		}
		result, err := dispatch(w, ev, visitor)
		if err != nil {
			return err
		}
		if result == Terminate {
			return nil
		}

		var ok bool
		ev, ok, err = w.Advance()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// dispatch invokes the callback for ev and applies the stack operation the
// result calls for.
//
//	event            Continue  Terminate  SkipSubtree  SkipSiblings
//	entry            -         stop       -            skip siblings
//	entry (failed)   -         stop       -            skip siblings
//	start directory  descend   stop       pop          pop, skip siblings
//	end directory    -         stop       -            -
func dispatch(w *Walker, ev Event, visitor Visitor) (VisitResult, error) {
	var (
		result VisitResult
		err    error
	)
	switch ev.Kind() {
	case EventEntry:
		if ev.Err() == nil {
			result, err = visitor.VisitFile(ev.Path(), ev.Attributes())
		} else {
			result, err = visitor.VisitFileFailed(ev.Path(), ev.Err())
		}
	case EventStartDirectory:
		result, err = visitor.PreVisitDirectory(ev.Path(), ev.Attributes())
		if err == nil && (result == SkipSubtree || result == SkipSiblings) {
			w.Pop()
		}
	case EventEndDirectory:
		result, err = visitor.PostVisitDirectory(ev.Path(), ev.Err())
		if result == SkipSiblings {
			// The directory is already closed; its siblings are still wanted.
			result = Continue
		}
	}
	if err != nil {
		return result, err
	}

	switch result {
	case Continue, Terminate, SkipSubtree:
	case SkipSiblings:
		w.SkipSiblings()
	default:
		return result, ErrInvalidVisitResult
	}
	return result, nil
}
