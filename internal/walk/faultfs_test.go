package stride

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// faultFS is an in-memory FileSystem with symbolic links and injectable
// failures. Links map the location of a link to its target; both are absolute.
type faultFS struct {
	inner *AferoFS
	links map[string]string
	keys  bool // report identity keys

	statErr  map[string]error
	openErr  map[string]error
	drainErr map[string]error
	closeErr map[string]error

	open   int // listings currently open
	opened int
	calls  int // every call that would reach storage
	stats  int
}

// newFaultFS builds a tree; paths ending in "/" are directories.
func newFaultFS(t *testing.T, paths ...string) *faultFS {
	t.Helper()
	mem := afero.NewMemMapFs()
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			require.NoError(t, mem.MkdirAll(p, 0o755))
			continue
		}
		require.NoError(t, mem.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(mem, p, []byte(p), 0o644))
	}
	return &faultFS{
		inner:    NewAferoFS(mem),
		links:    map[string]string{},
		statErr:  map[string]error{},
		openErr:  map[string]error{},
		drainErr: map[string]error{},
		closeErr: map[string]error{},
	}
}

// resolve replaces every link prefix of p with its target.
func (f *faultFS) resolve(p string) string {
	p = filepath.Clean(p)
	for i := 0; i < 32; i++ {
		changed := false
		for link, target := range f.links {
			if p == link {
				p, changed = target, true
			} else if strings.HasPrefix(p, link+"/") {
				p, changed = target+p[len(link):], true
			}
		}
		if !changed {
			break
		}
	}
	return p
}

// self resolves the parent of p but not p itself.
func (f *faultFS) self(p string) string {
	return filepath.Join(f.resolve(filepath.Dir(p)), filepath.Base(p))
}

func (f *faultFS) OpenDir(p string) (DirListing, error) {
	f.calls++
	if err := f.openErr[p]; err != nil {
		return nil, err
	}
	real := f.resolve(p)
	inner, err := f.inner.OpenDir(real)
	if err != nil {
		return nil, err
	}
	var extra []Entry
	for link := range f.links {
		if filepath.Dir(link) == real {
			extra = append(extra, Entry{Name: filepath.Base(link)})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Name < extra[j].Name })
	f.open++
	f.opened++
	return &faultListing{fs: f, path: p, inner: inner, extra: extra}, nil
}

func (f *faultFS) Stat(p string, followLinks bool) (Attributes, error) {
	f.calls++
	f.stats++
	if err := f.statErr[p]; err != nil {
		return Attributes{}, err
	}
	self := f.self(p)
	if _, isLink := f.links[self]; isLink && !followLinks {
		attrs := Attributes{IsSymlink: true}
		if f.keys {
			attrs.Key = self + "@link"
		}
		return attrs, nil
	}
	real := f.resolve(p)
	attrs, err := f.inner.Stat(real, followLinks)
	if err != nil {
		return Attributes{}, err
	}
	if f.keys {
		attrs.Key = real
	}
	return attrs, nil
}

func (f *faultFS) SameFile(a, b string) (bool, error) {
	f.calls++
	return f.resolve(a) == f.resolve(b), nil
}

func (f *faultFS) Join(dir, name string) string { return filepath.Join(dir, name) }

type faultListing struct {
	fs     *faultFS
	path   string
	inner  DirListing
	extra  []Entry
	done   bool
	closed bool
}

func (l *faultListing) Next() (Entry, bool) {
	l.fs.calls++
	if e, ok := l.inner.Next(); ok {
		if l.fs.keys {
			// Force a Stat so that the entry gets its key.
			e.Attrs = nil
		}
		return e, true
	}
	if len(l.extra) > 0 {
		e := l.extra[0]
		l.extra = l.extra[1:]
		return e, true
	}
	l.done = true
	return Entry{}, false
}

func (l *faultListing) Err() error {
	if err := l.fs.drainErr[l.path]; err != nil && l.done {
		return err
	}
	return l.inner.Err()
}

func (l *faultListing) Close() error {
	if !l.closed {
		l.closed = true
		l.fs.open--
	}
	l.inner.Close()
	return l.fs.closeErr[l.path]
}

// opts returns WalkOptions over f with a silent logger.
func (f *faultFS) opts(followLinks bool) WalkOptions {
	return WalkOptions{FS: f, FollowLinks: followLinks, Logger: zap.NewNop()}
}

// trace formats events as "S path", "E path", "E! path" (failed) and "X path".
func trace(ev Event) string {
	switch ev.Kind() {
	case EventStartDirectory:
		return "S " + ev.Path()
	case EventEndDirectory:
		if ev.Err() != nil {
			return "X! " + ev.Path()
		}
		return "X " + ev.Path()
	default:
		if ev.Err() != nil {
			return "E! " + ev.Path()
		}
		return "E " + ev.Path()
	}
}

// drainWalker starts w at root and returns the trace of every event.
func drainWalker(t *testing.T, w *Walker, root string) []string {
	t.Helper()
	ev, err := w.Start(root)
	require.NoError(t, err)
	out := []string{trace(ev)}
	for {
		ev, ok, err := w.Advance()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, trace(ev))
	}
}

// scenarioTree is /r with files a and b and directory c containing d.
func scenarioTree(t *testing.T) *faultFS {
	return newFaultFS(t, "/r/a", "/r/b", "/r/c/d")
}
