package stride

import (
	"io/fs"
	"time"
)

// Attributes is what a FileSystem reports about one location.
type Attributes struct {
	IsDir     bool
	IsSymlink bool

	// Key uniquely identifies the underlying object when the backend can tell.
	// It must be comparable with ==. A nil Key means "unknown" and cycle checks
	// fall back to FileSystem.SameFile.
	Key any

	// Info is the raw file info, if the backend has one.
	Info fs.FileInfo
}

// Size returns the size in bytes, or 0 when no file info is available.
func (a Attributes) Size() int64 {
	if a.Info == nil {
		return 0
	}
	return a.Info.Size()
}

// ModTime returns the modification time, or the zero time when unknown.
func (a Attributes) ModTime() time.Time {
	if a.Info == nil {
		return time.Time{}
	}
	return a.Info.ModTime()
}

// Mode returns the file mode, or 0 when unknown.
func (a Attributes) Mode() fs.FileMode {
	if a.Info == nil {
		return 0
	}
	return a.Info.Mode()
}

// Entry is one child yielded by a DirListing. Attrs is non-nil when the backend
// obtained the child's attributes as part of listing it; those attributes describe
// the entry itself, never the target of a symbolic link.
type Entry struct {
	Name  string
	Attrs *Attributes
}

// DirListing is a single-pass, unordered cursor over the immediate entries of one
// directory. Next returns false at the end or on failure; Err then reports the
// failure, if any.
type DirListing interface {
	Next() (Entry, bool)
	Err() error
	Close() error
}

// FileSystem is the storage a Walker traverses.
type FileSystem interface {
	// OpenDir opens a directory for listing.
	OpenDir(path string) (DirListing, error)

	// Stat returns the attributes of path, following a final symbolic link when
	// followLinks is set.
	Stat(path string, followLinks bool) (Attributes, error)

	// SameFile reports whether a and b locate the same object.
	SameFile(a, b string) (bool, error)

	// Join builds the location of a child entry.
	Join(dir, name string) string
}
