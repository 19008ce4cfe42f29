package stride

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// aferoBatch is the number of entries read from an afero directory per call.
const aferoBatch = 64

// AferoFS adapts any afero filesystem (in-memory trees, base-path sandboxes,
// read-only overlays, ...) to FileSystem. Listed entries carry the attributes
// returned by Readdir, so the walker can skip a second metadata call.
type AferoFS struct {
	Fs afero.Fs
}

// NewAferoFS wraps fsys.
func NewAferoFS(fsys afero.Fs) *AferoFS {
	return &AferoFS{Fs: fsys}
}

// OpenDir implements FileSystem.
func (a *AferoFS) OpenDir(path string) (DirListing, error) {
	f, err := a.Fs.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		f.Close()
		return nil, &os.PathError{Op: "opendir", Path: path, Err: ErrNotDir}
	}
	return &aferoListing{dir: path, f: f}, nil
}

// Stat implements FileSystem.
func (a *AferoFS) Stat(path string, followLinks bool) (Attributes, error) {
	var (
		info os.FileInfo
		err  error
	)
	if lst, ok := a.Fs.(afero.Lstater); ok && !followLinks {
		info, _, err = lst.LstatIfPossible(path)
	} else {
		info, err = a.Fs.Stat(path)
	}
	if err != nil {
		return Attributes{}, err
	}
	return attributesOf(info), nil
}

// SameFile implements FileSystem. Backends without inode information only
// compare cleaned paths.
func (a *AferoFS) SameFile(x, y string) (bool, error) {
	xi, err := a.Fs.Stat(x)
	if err != nil {
		return false, err
	}
	yi, err := a.Fs.Stat(y)
	if err != nil {
		return false, err
	}
	if os.SameFile(xi, yi) {
		return true, nil
	}
	return filepath.Clean(x) == filepath.Clean(y), nil
}

// Join implements FileSystem.
func (a *AferoFS) Join(dir, name string) string { return filepath.Join(dir, name) }

type aferoListing struct {
	dir    string
	f      afero.File
	buf    []os.FileInfo
	done   bool
	err    error
	closed bool
}

func (l *aferoListing) Next() (Entry, bool) {
	for len(l.buf) == 0 {
		if l.done || l.closed {
			return Entry{}, false
		}
		infos, err := l.f.Readdir(aferoBatch)
		l.buf = infos
		if err != nil {
			l.done = true
			if !errors.Is(err, io.EOF) {
				l.err = fmt.Errorf("reading directory %s: %w", l.dir, err)
			}
		} else if len(infos) == 0 {
			l.done = true
		}
	}
	info := l.buf[0]
	l.buf = l.buf[1:]
	attrs := attributesOf(info)
	return Entry{Name: info.Name(), Attrs: &attrs}, true
}

func (l *aferoListing) Err() error { return l.err }

func (l *aferoListing) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.buf = nil
	return l.f.Close()
}
