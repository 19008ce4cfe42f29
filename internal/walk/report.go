package stride

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultReportTop is the number of files kept in each ranking of a report.
const DefaultReportTop = 10

// StorageReport contains information about storage usage below a root.
type StorageReport struct {
	Root         string               `json:"root"`
	TotalSize    int64                `json:"total_size"`
	FileCount    int                  `json:"file_count"`
	DirCount     int                  `json:"dir_count"`
	TypeStats    map[string]TypeStats `json:"type_stats"`
	LargestFiles []FileInfo           `json:"largest_files"`
	OldestFiles  []FileInfo           `json:"oldest_files"`
	NewestFiles  []FileInfo           `json:"newest_files"`
	Failures     []string             `json:"failures,omitempty"`
}

// TypeStats holds statistics for a file extension.
type TypeStats struct {
	Count int   `json:"count"`
	Size  int64 `json:"size"`
}

// FileInfo describes one ranked file.
type FileInfo struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Extension string    `json:"extension"`
}

// ReportOptions configures BuildReport.
type ReportOptions struct {
	MaxDepth      int   // unlimited when zero or negative
	Top           int   // files per ranking, DefaultReportTop when zero
	MinSize       int64 // ignore smaller files when non-zero
	MaxSize       int64 // ignore larger files when non-zero
	IncludeHidden bool
	Walk          WalkOptions
}

type reportVisitor struct {
	root   string
	opts   ReportOptions
	report *StorageReport
	files  []FileInfo
}

func (v *reportVisitor) PreVisitDirectory(path string, attrs Attributes) (VisitResult, error) {
	if path != v.root && !v.opts.IncludeHidden && isHidden(path) {
		return SkipSubtree, nil
	}
	v.report.DirCount++
	return Continue, nil
}

func (v *reportVisitor) VisitFile(path string, attrs Attributes) (VisitResult, error) {
	if !v.opts.IncludeHidden && isHidden(path) {
		return Continue, nil
	}
	if attrs.IsDir {
		v.report.DirCount++
		return Continue, nil
	}
	size := attrs.Size()
	if (v.opts.MinSize > 0 && size < v.opts.MinSize) || (v.opts.MaxSize > 0 && size > v.opts.MaxSize) {
		return Continue, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = "(no extension)"
	}
	stats := v.report.TypeStats[ext]
	stats.Count++
	stats.Size += size
	v.report.TypeStats[ext] = stats

	v.report.FileCount++
	v.report.TotalSize += size
	v.files = append(v.files, FileInfo{Path: path, Size: size, Modified: attrs.ModTime(), Extension: ext})
	return Continue, nil
}

func (v *reportVisitor) VisitFileFailed(path string, err error) (VisitResult, error) {
	v.report.Failures = append(v.report.Failures, err.Error())
	return Continue, nil
}

func (v *reportVisitor) PostVisitDirectory(path string, err error) (VisitResult, error) {
	if err != nil {
		v.report.Failures = append(v.report.Failures, err.Error())
	}
	return Continue, nil
}

// BuildReport walks root and summarises storage usage by extension, together
// with the largest, oldest and newest files.
func BuildReport(ctx context.Context, root string, opts ReportOptions) (*StorageReport, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = Unlimited
	}
	top := opts.Top
	if top <= 0 {
		top = DefaultReportTop
	}

	v := &reportVisitor{
		root:   root,
		opts:   opts,
		report: &StorageReport{Root: root, TypeStats: make(map[string]TypeStats)},
	}
	if err := WalkTreeContext(ctx, root, opts.Walk, maxDepth, v); err != nil {
		return nil, err
	}

	rank := func(less func(a, b FileInfo) bool) []FileInfo {
		sorted := append([]FileInfo(nil), v.files...)
		sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
		if len(sorted) > top {
			sorted = sorted[:top]
		}
		return sorted
	}
	v.report.LargestFiles = rank(func(a, b FileInfo) bool { return a.Size > b.Size })
	v.report.OldestFiles = rank(func(a, b FileInfo) bool { return a.Modified.Before(b.Modified) })
	v.report.NewestFiles = rank(func(a, b FileInfo) bool { return a.Modified.After(b.Modified) })
	return v.report, nil
}

// ParseSize parses sizes such as "500", "10KB", "1.5MB" or "2G".
func ParseSize(size string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(size))
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	for _, unit := range []struct {
		suffix string
		mult   int64
	}{
		{"TB", 1 << 40}, {"GB", 1 << 30}, {"MB", 1 << 20}, {"KB", 1 << 10},
		{"T", 1 << 40}, {"G", 1 << 30}, {"M", 1 << 20}, {"K", 1 << 10}, {"B", 1},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.mult
			s = strings.TrimSuffix(s, unit.suffix)
			break
		}
	}

	var value float64
	if _, err := fmt.Sscanf(s, "%g", &value); err != nil || value < 0 {
		return 0, fmt.Errorf("invalid size %q", size)
	}
	return int64(value * float64(multiplier)), nil
}

// SaveToFile writes the text form of the report to path.
func (r *StorageReport) SaveToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(r.String())
	return err
}

// String returns a human-readable representation of the report.
func (r *StorageReport) String() string {
	var sb strings.Builder

	sb.WriteString("Storage Report:\n")
	sb.WriteString(fmt.Sprintf("Root: %s\n", r.Root))
	sb.WriteString(fmt.Sprintf("Total Size: %s\n", FormatSize(r.TotalSize)))
	sb.WriteString(fmt.Sprintf("Files: %d\n", r.FileCount))
	sb.WriteString(fmt.Sprintf("Directories: %d\n", r.DirCount))

	if len(r.TypeStats) > 0 {
		exts := make([]string, 0, len(r.TypeStats))
		for ext := range r.TypeStats {
			exts = append(exts, ext)
		}
		sort.Slice(exts, func(i, j int) bool {
			a, b := r.TypeStats[exts[i]], r.TypeStats[exts[j]]
			if a.Size != b.Size {
				return a.Size > b.Size
			}
			return exts[i] < exts[j]
		})
		sb.WriteString("\nBy Extension:\n")
		for _, ext := range exts {
			s := r.TypeStats[ext]
			sb.WriteString(fmt.Sprintf("  %-16s %6d files  %10s\n", ext, s.Count, FormatSize(s.Size)))
		}
	}

	section := func(title string, files []FileInfo) {
		if len(files) == 0 {
			return
		}
		sb.WriteString("\n" + title + ":\n")
		for _, f := range files {
			sb.WriteString(fmt.Sprintf("  %10s  %s  %s\n", FormatSize(f.Size), f.Modified.Format("2006-01-02 15:04"), f.Path))
		}
	}
	section("Largest Files", r.LargestFiles)
	section("Oldest Files", r.OldestFiles)
	section("Newest Files", r.NewestFiles)

	if len(r.Failures) > 0 {
		sb.WriteString(fmt.Sprintf("\nUnreadable Entries: %d\n", len(r.Failures)))
		for _, f := range r.Failures {
			sb.WriteString("  " + f + "\n")
		}
	}
	return sb.String()
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
