// Package walk is the public API of stridewalk: lazy, depth-first file tree
// traversal with symbolic link loop detection.
//
// Sequences are pulled one path at a time and must be closed:
//
//	seq, err := walk.Walk("/path/to/root", walk.Unlimited, walk.WalkOptions{})
//	if err != nil {
//		return err
//	}
//	defer seq.Close()
//	for seq.Next() {
//		fmt.Println(seq.Path())
//	}
//	return seq.Err()
//
// Visitors steer the traversal with their results:
//
//	err := walk.WalkTree("/path/to/root", walk.WalkOptions{}, walk.Unlimited, walk.VisitorFuncs{
//		PreVisitDirectoryFunc: func(path string, attrs walk.Attributes) (walk.VisitResult, error) {
//			if filepath.Base(path) == ".git" {
//				return walk.SkipSubtree, nil
//			}
//			return walk.Continue, nil
//		},
//	})
//
// Watch Functionality
//
// Watch monitors a directory for changes, registering subdirectories with a
// directory-only Find when Recursive is set:
//
//	opts := walk.WatchOptions{
//		Events:    []walk.WatchEvent{walk.EventCreate, walk.EventModify},
//		Recursive: true,
//	}
//	err := walk.Watch(context.Background(), "/path/to/watch", opts, nil)
//
//	// Format output for each event
//	err := walk.WatchWithFormat(context.Background(), "/path/to/watch", opts, "{event}: {base} at {time}", os.Stdout)
package walk
