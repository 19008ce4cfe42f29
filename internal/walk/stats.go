package stride

import (
	"context"
	"errors"
	"time"
)

// progressInterval is the minimum time between two ProgressFn calls.
const progressInterval = 500 * time.Millisecond

// ProgressFn is called periodically with traversal statistics.
type ProgressFn func(stats Stats)

// Stats holds traversal statistics.
type Stats struct {
	FilesProcessed int64         // Number of non-directory entries visited
	DirsProcessed  int64         // Number of directories entered
	EmptyDirs      int64         // Number of directories without entries
	BytesProcessed int64         // Total size of the files visited
	ErrorCount     int64         // Number of entries that could not be read
	LoopCount      int64         // Number of symbolic link loops detected
	MaxDepth       int           // Deepest level reached below the root
	ElapsedTime    time.Duration // Total time elapsed
	AvgFileSize    int64         // Average file size in bytes
	SpeedMBPerSec  float64       // Processing speed in MB/s
}

// updateDerivedStats calculates derived statistics like averages and speeds.
func (s *Stats) updateDerivedStats() {
	if s.FilesProcessed > 0 {
		s.AvgFileSize = s.BytesProcessed / s.FilesProcessed
	}

	elapsedSec := s.ElapsedTime.Seconds()
	if elapsedSec > 0 && s.BytesProcessed > 0 {
		megabytes := float64(s.BytesProcessed) / (1024.0 * 1024.0)
		s.SpeedMBPerSec = megabytes / elapsedSec
	} else {
		s.SpeedMBPerSec = 0
	}
}

// statsVisitor counts what WalkTree reports.
type statsVisitor struct {
	stats    Stats
	start    time.Time
	last     time.Time
	progress ProgressFn

	// children counts the entries seen so far in each open directory.
	children []int64
}

func (v *statsVisitor) entry() {
	if n := len(v.children); n > 0 {
		v.children[n-1]++
	}
	if depth := len(v.children); depth > v.stats.MaxDepth {
		v.stats.MaxDepth = depth
	}
	v.tick()
}

func (v *statsVisitor) tick() {
	if v.progress == nil {
		return
	}
	now := time.Now()
	if now.Sub(v.last) < progressInterval {
		return
	}
	v.last = now
	v.stats.ElapsedTime = now.Sub(v.start)
	v.stats.updateDerivedStats()
	v.progress(v.stats)
}

func (v *statsVisitor) PreVisitDirectory(path string, attrs Attributes) (VisitResult, error) {
	v.entry()
	v.stats.DirsProcessed++
	v.children = append(v.children, 0)
	return Continue, nil
}

func (v *statsVisitor) VisitFile(path string, attrs Attributes) (VisitResult, error) {
	v.entry()
	if attrs.IsDir {
		// Directories at the depth limit are reported as plain entries.
		v.stats.DirsProcessed++
		return Continue, nil
	}
	v.stats.FilesProcessed++
	v.stats.BytesProcessed += attrs.Size()
	return Continue, nil
}

func (v *statsVisitor) VisitFileFailed(path string, err error) (VisitResult, error) {
	v.entry()
	v.stats.ErrorCount++
	if errors.Is(err, ErrLoop) {
		v.stats.LoopCount++
	}
	return Continue, nil
}

func (v *statsVisitor) PostVisitDirectory(path string, err error) (VisitResult, error) {
	n := len(v.children) - 1
	if v.children[n] == 0 && err == nil {
		v.stats.EmptyDirs++
	}
	v.children = v.children[:n]
	if err != nil {
		v.stats.ErrorCount++
	}
	return Continue, nil
}

// Summarize walks root and returns statistics about the tree. Unreadable entries
// are counted, not returned; the error result is reserved for cancellation and
// invalid arguments. progress, if set, is called at most every 500ms and once
// more at the end.
func Summarize(ctx context.Context, root string, maxDepth int, opts WalkOptions, progress ProgressFn) (Stats, error) {
	now := time.Now()
	v := &statsVisitor{start: now, last: now, progress: progress}

	err := WalkTreeContext(ctx, root, opts, maxDepth, v)

	v.stats.ElapsedTime = time.Since(v.start)
	v.stats.updateDerivedStats()
	if progress != nil {
		progress(v.stats)
	}
	return v.stats, err
}
