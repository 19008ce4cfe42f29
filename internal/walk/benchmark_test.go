package stride

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// createTestDirectoryStructure creates a tree with the given depth, three
// subdirectories and filesPerDir files per directory.
func createTestDirectoryStructure(b *testing.B, root string, depth, filesPerDir int) {
	if depth <= 0 {
		return
	}

	for i := 0; i < filesPerDir; i++ {
		filename := filepath.Join(root, fmt.Sprintf("file%d.txt", i))
		if err := os.WriteFile(filename, []byte("test"), 0644); err != nil {
			b.Fatalf("Failed to create test file: %v", err)
		}
	}

	for i := 0; i < 3; i++ {
		subdir := filepath.Join(root, fmt.Sprintf("dir%d", i))
		if err := os.Mkdir(subdir, 0755); err != nil {
			b.Fatalf("Failed to create test directory: %v", err)
		}
		createTestDirectoryStructure(b, subdir, depth-1, filesPerDir)
	}
}

func BenchmarkWalkDirComparison(b *testing.B) {
	tmpDir := b.TempDir()
	createTestDirectoryStructure(b, tmpDir, 5, 10)
	opts := WalkOptions{Logger: zap.NewNop()}

	b.ResetTimer()

	b.Run("filepath.WalkDir", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := filepath.WalkDir(tmpDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				count++
				return nil
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("Walk", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			seq, err := Walk(tmpDir, Unlimited, opts)
			if err != nil {
				b.Fatal(err)
			}
			count := 0
			for seq.Next() {
				count++
			}
			if err := seq.Err(); err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})

	b.Run("WalkTree", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := WalkTree(tmpDir, opts, Unlimited, VisitorFuncs{
				VisitFileFunc: func(path string, attrs Attributes) (VisitResult, error) {
					count++
					return Continue, nil
				},
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No files found")
			}
		}
	})
}

// BenchmarkWalkMemFS measures the engine without system calls.
func BenchmarkWalkMemFS(b *testing.B) {
	mem := afero.NewMemMapFs()
	for i := 0; i < 20; i++ {
		for j := 0; j < 50; j++ {
			if err := afero.WriteFile(mem, fmt.Sprintf("/root/dir%d/file%d", i, j), nil, 0644); err != nil {
				b.Fatal(err)
			}
		}
	}
	opts := WalkOptions{FS: NewAferoFS(mem), Logger: zap.NewNop()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stats, err := Summarize(context.Background(), "/root", Unlimited, opts, nil)
		if err != nil {
			b.Fatal(err)
		}
		if stats.FilesProcessed != 1000 {
			b.Fatalf("Expected 1000 files, got %d", stats.FilesProcessed)
		}
	}
}

func BenchmarkFindEach(b *testing.B) {
	tmpDir := b.TempDir()
	createTestDirectoryStructure(b, tmpDir, 4, 10)
	opts := FindOptions{NamePattern: "file1*.txt", Type: TypeFile}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := FindEach(context.Background(), tmpDir, Unlimited, opts, WalkOptions{Logger: zap.NewNop()}, func(ctx context.Context, result FindResult) error {
			return result.Error
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFormatCommand(b *testing.B) {
	msg := FindMessage{Path: "/data/logs/app.log", Name: "app.log", Dir: "/data/logs", Size: 1234}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		formatCommand(`cp {} {"dir"}/{base}.{size}.bak`, msg)
	}
}
