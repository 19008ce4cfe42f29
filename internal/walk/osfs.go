package stride

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
)

// OSFS is the FileSystem backed by the host operating system. Directory entries
// are streamed with godirwalk's Scanner, so a frame holds one small read buffer
// no matter how large the directory is.
type OSFS struct{}

// NewOSFS returns the host file system.
func NewOSFS() OSFS { return OSFS{} }

// OpenDir implements FileSystem.
func (OSFS) OpenDir(path string) (DirListing, error) {
	sc, err := godirwalk.NewScanner(path)
	if err != nil {
		return nil, err
	}
	return &scannerListing{dir: path, sc: sc}, nil
}

// Stat implements FileSystem.
func (OSFS) Stat(path string, followLinks bool) (Attributes, error) {
	var (
		info os.FileInfo
		err  error
	)
	if followLinks {
		info, err = os.Stat(path)
	} else {
		info, err = os.Lstat(path)
	}
	if err != nil {
		return Attributes{}, err
	}
	return attributesOf(info), nil
}

// SameFile implements FileSystem.
func (OSFS) SameFile(a, b string) (bool, error) {
	if a == b {
		return true, nil
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

// Join implements FileSystem.
func (OSFS) Join(dir, name string) string { return filepath.Join(dir, name) }

func attributesOf(info os.FileInfo) Attributes {
	attrs := Attributes{
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
		Info:      info,
	}
	if key, ok := fileKey(info); ok {
		attrs.Key = key
	}
	return attrs
}

// scannerListing adapts a godirwalk.Scanner to DirListing.
type scannerListing struct {
	dir    string
	sc     *godirwalk.Scanner
	done   bool
	err    error
	closed bool
}

func (l *scannerListing) Next() (Entry, bool) {
	if l.done || l.closed {
		return Entry{}, false
	}
	if !l.sc.Scan() {
		l.done = true
		// Err also releases the directory handle.
		if err := l.sc.Err(); err != nil {
			l.err = fmt.Errorf("reading directory %s: %w", l.dir, err)
		}
		return Entry{}, false
	}
	return Entry{Name: l.sc.Name()}, true
}

func (l *scannerListing) Err() error { return l.err }

func (l *scannerListing) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.done {
		return nil
	}
	// The scanner has no Close. Called early, Err releases the directory handle
	// and reports only the failure to close it.
	if err := l.sc.Err(); err != nil {
		return fmt.Errorf("closing directory %s: %w", l.dir, err)
	}
	return nil
}
