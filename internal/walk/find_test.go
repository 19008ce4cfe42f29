package stride

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func createFindTree(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	files := []struct {
		path string
		size int
		time time.Time
	}{
		{filepath.Join(tmpDir, "file1.txt"), 100, time.Now().Add(-48 * time.Hour)},
		{filepath.Join(tmpDir, "file2.txt"), 200, time.Now().Add(-24 * time.Hour)},
		{filepath.Join(tmpDir, "file3.log"), 300, time.Now().Add(-12 * time.Hour)},
		{filepath.Join(tmpDir, "file4.go"), 400, time.Now().Add(-1 * time.Hour)},
		{filepath.Join(tmpDir, "subdir", "file5.txt"), 500, time.Now()},
		{filepath.Join(tmpDir, "subdir", "file6.go"), 600, time.Now()},
		{filepath.Join(tmpDir, ".hidden.txt"), 700, time.Now()},
		{filepath.Join(tmpDir, ".git", "config"), 800, time.Now()},
	}

	for _, file := range files {
		if err := os.MkdirAll(filepath.Dir(file.path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(file.path, make([]byte, file.size), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
		if err := os.Chtimes(file.path, file.time, file.time); err != nil {
			t.Fatalf("Failed to set file time: %v", err)
		}
	}
	return tmpDir
}

func quietOptions() WalkOptions {
	return WalkOptions{Logger: zap.NewNop()}
}

func TestFindEach(t *testing.T) {
	tmpDir := createFindTree(t)

	tests := []struct {
		name     string
		opts     FindOptions
		maxDepth int
		expected int
	}{
		{
			name:     "Find all files",
			opts:     FindOptions{Type: TypeFile},
			expected: 6, // Excludes hidden files and directories by default
		},
		{
			name:     "Find by name pattern",
			opts:     FindOptions{NamePattern: "*.txt"},
			expected: 3, // file1.txt, file2.txt, subdir/file5.txt
		},
		{
			name:     "Find by path pattern",
			opts:     FindOptions{PathPattern: "*/subdir/*"},
			expected: 2, // subdir/file5.txt, subdir/file6.go
		},
		{
			name:     "Find by regex pattern",
			opts:     FindOptions{RegexPattern: regexp.MustCompile(`.*\.go$`)},
			expected: 2, // file4.go, subdir/file6.go
		},
		{
			name:     "Find by older than",
			opts:     FindOptions{Type: TypeFile, OlderThan: 36 * time.Hour},
			expected: 1, // file1.txt
		},
		{
			name:     "Find by newer than",
			opts:     FindOptions{Type: TypeFile, NewerThan: 6 * time.Hour},
			expected: 3, // file4.go, subdir/file5.txt, subdir/file6.go
		},
		{
			name:     "Find by larger size",
			opts:     FindOptions{Type: TypeFile, LargerSize: 350},
			expected: 3, // file4.go, subdir/file5.txt, subdir/file6.go
		},
		{
			name:     "Find by smaller size",
			opts:     FindOptions{Type: TypeFile, SmallerSize: 250},
			expected: 2, // file1.txt, file2.txt
		},
		{
			name:     "Find with max depth",
			opts:     FindOptions{Type: TypeFile},
			maxDepth: 1,
			expected: 4, // file1.txt, file2.txt, file3.log, file4.go
		},
		{
			name:     "Find with include hidden",
			opts:     FindOptions{Type: TypeFile, IncludeHidden: true},
			expected: 8, // All files including .hidden.txt and .git/config
		},
		{
			name:     "Find directories",
			opts:     FindOptions{Type: TypeDir},
			expected: 2, // root and subdir
		},
		{
			name:     "Find with combined filters",
			opts:     FindOptions{NamePattern: "*.txt", OlderThan: 30 * time.Hour},
			expected: 1, // file1.txt
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			maxDepth := test.maxDepth
			if maxDepth == 0 {
				maxDepth = Unlimited
			}

			var found int
			err := FindEach(context.Background(), tmpDir, maxDepth, test.opts, quietOptions(), func(ctx context.Context, result FindResult) error {
				if result.Error != nil {
					return result.Error
				}
				found++
				return nil
			})
			if err != nil {
				t.Fatalf("FindEach failed: %v", err)
			}

			if found != test.expected {
				t.Errorf("Expected to find %d entries, found %d", test.expected, found)
			}
		})
	}
}

func TestFindPredicateMatchesFindEach(t *testing.T) {
	tmpDir := createFindTree(t)
	opts := FindOptions{NamePattern: "*.go"}

	seq, err := Find(tmpDir, Unlimited, opts.Predicate(), quietOptions())
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	paths, err := seq.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	var fromEach []string
	err = FindEach(context.Background(), tmpDir, Unlimited, opts, quietOptions(), func(ctx context.Context, result FindResult) error {
		fromEach = append(fromEach, result.Message.Path)
		return result.Error
	})
	if err != nil {
		t.Fatalf("FindEach failed: %v", err)
	}

	if len(paths) != 2 || len(fromEach) != 2 {
		t.Errorf("Expected 2 matches from both, got %v and %v", paths, fromEach)
	}
}

func TestFindEachHandlerErrorStops(t *testing.T) {
	tmpDir := createFindTree(t)
	stop := errors.New("stop")

	var calls int
	err := FindEach(context.Background(), tmpDir, Unlimited, FindOptions{Type: TypeFile}, quietOptions(), func(ctx context.Context, result FindResult) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Expected handler error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 handler call, got %d", calls)
	}
}

func TestFindEachReportsFailures(t *testing.T) {
	var failures []error
	err := FindEach(context.Background(), "/path/that/does/not/exist", Unlimited, FindOptions{}, quietOptions(), func(ctx context.Context, result FindResult) error {
		if result.Error != nil {
			failures = append(failures, result.Error)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("FindEach failed: %v", err)
	}
	if len(failures) != 1 || !errors.Is(failures[0], os.ErrNotExist) {
		t.Errorf("Expected one not-exist failure, got %v", failures)
	}
}

func TestFindWithExec(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo is not available")
	}
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	var out bytes.Buffer
	err := FindWithExec(context.Background(), tmpDir, Unlimited, FindOptions{NamePattern: "*.txt"}, quietOptions(), "echo found {base}", &out)
	if err != nil {
		t.Fatalf("FindWithExec failed: %v", err)
	}

	if got := out.String(); got != "found test.txt\n" {
		t.Errorf("Expected %q, got %q", "found test.txt\n", got)
	}
}

func TestFindWithFormat(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	var out bytes.Buffer
	err := FindWithFormat(context.Background(), tmpDir, Unlimited, FindOptions{NamePattern: "*.txt"}, quietOptions(), "{base} ({size} bytes) in {\"dir\"}", &out)
	if err != nil {
		t.Fatalf("FindWithFormat failed: %v", err)
	}

	expected := "test.txt (4 bytes) in \"" + tmpDir + "\"\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
}

func TestFormatCommand(t *testing.T) {
	msg := FindMessage{
		Path: "/data/logs/app.log",
		Name: "app.log",
		Dir:  "/data/logs",
		Size: 1234,
		Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	tests := []struct {
		template string
		expected string
	}{
		{"{}", "/data/logs/app.log"},
		{"{base} in {dir}", "app.log in /data/logs"},
		{"{size}", "1234"},
		{"{time}", "2024-01-02T03:04:05Z"},
		{`{""}`, `"/data/logs/app.log"`},
		{`cp {} {"base"}.bak`, `cp /data/logs/app.log "app.log".bak`},
	}

	for _, tc := range tests {
		if got := formatCommand(tc.template, msg); got != tc.expected {
			t.Errorf("formatCommand(%q) = %q, expected %q", tc.template, got, tc.expected)
		}
	}
}

func TestParseEntryType(t *testing.T) {
	for _, s := range []string{"", "f", "d", "l"} {
		if _, err := ParseEntryType(s); err != nil {
			t.Errorf("ParseEntryType(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseEntryType("x"); err == nil || !strings.Contains(err.Error(), "invalid entry type") {
		t.Errorf("Expected invalid entry type error, got %v", err)
	}
}

func TestCompileRegex(t *testing.T) {
	// Decomposed pattern, composed name.
	re, err := CompileRegex("café")
	if err != nil {
		t.Fatalf("CompileRegex failed: %v", err)
	}
	if !re.MatchString("caf\u00e9") {
		t.Errorf("Expected normalised pattern to match composed name")
	}

	if _, err := CompileRegex("("); err == nil {
		t.Errorf("Expected error for invalid regex")
	}
}
