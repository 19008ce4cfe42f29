package stride

import "testing"

func TestPathMatch(t *testing.T) {
	testCases := []struct {
		pattern  string
		path     string
		expected bool
	}{
		// Basic matching
		{"*.go", "file.go", true},
		{"*.go", "path/to/file.go", true},
		{"file.*", "file.go", true},
		{"file.*", "path/to/file.go", false},

		// Directory matching
		{"path/to/*.go", "path/to/file.go", true},
		{"path/to/*.go", "other/path/file.go", false},
		{"*/subdir/*", "/tmp/x/subdir/a.txt", true},
		{"*/subdir/*", "/tmp/x/subdir", false},

		// Exact matching
		{"file.go", "file.go", true},
		{"file.go", "other.go", false},

		// Multiple wildcards
		{"*.*", "file.go", true},
		{"*.*.go", "file.test.go", true},
		{"*.*.go", "file.go", false},

		// Edge cases
		{"", "", true},
		{"*", "anything", true},
		{"*", "", true},
	}

	for _, tc := range testCases {
		if got := pathMatch(tc.pattern, tc.path); got != tc.expected {
			t.Errorf("pathMatch(%q, %q) = %v, expected %v", tc.pattern, tc.path, got, tc.expected)
		}
	}
}

func TestNameMatch(t *testing.T) {
	testCases := []struct {
		pattern  string
		path     string
		expected bool
	}{
		{"*.txt", "/data/notes.txt", true},
		{"*.txt", "/data/notes.md", false},
		{"notes.*", "/data/notes.md", true},
		// A bare component anywhere in the path matches.
		{"vendor", "/src/vendor/lib.go", true},
		{"vend*", "/src/vendor/lib.go", false},
		// Decomposed and composed forms are equal.
		{"cafe\u0301.txt", "/menu/caf\u00e9.txt", true},
		{"caf\u00e9.txt", "/menu/cafe\u0301.txt", true},
		// Malformed patterns never match.
		{"[", "/data/[", false},
	}

	for _, tc := range testCases {
		if got := nameMatch(tc.pattern, tc.path); got != tc.expected {
			t.Errorf("nameMatch(%q, %q) = %v, expected %v", tc.pattern, tc.path, got, tc.expected)
		}
	}
}

func BenchmarkPathMatch(b *testing.B) {
	patterns := []string{"*.go", "path/to/*.go", "*.*.go", "*/subdir/*"}
	paths := []string{"file.go", "path/to/file.go", "file.test.go", "/very/long/path/subdir/to/file.go"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, pattern := range patterns {
			for _, path := range paths {
				pathMatch(pattern, path)
			}
		}
	}
}
