package stride

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkScenario(t *testing.T) {
	fsys := scenarioTree(t)
	seq, err := Walk("/r", Unlimited, fsys.opts(false))
	require.NoError(t, err)

	paths, err := seq.Collect()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/r", "/r/a", "/r/b", "/r/c", "/r/c/d"}, paths)
	assert.Equal(t, "/r", paths[0])

	index := map[string]int{}
	for i, p := range paths {
		index[p] = i
	}
	assert.Less(t, index["/r/c"], index["/r/c/d"])
	assert.Equal(t, 0, fsys.open)
}

func TestWalkDepthBound(t *testing.T) {
	fsys := newFaultFS(t, "/r/a/b/c/d/file")
	for depth := 0; depth <= 5; depth++ {
		seq, err := Walk("/r", depth, fsys.opts(false))
		require.NoError(t, err)
		paths, err := seq.Collect()
		require.NoError(t, err)

		for _, p := range paths {
			below := strings.Count(strings.TrimPrefix(p, "/r"), "/")
			assert.LessOrEqual(t, below, depth, "%s is deeper than %d", p, depth)
		}
		assert.Len(t, paths, depth+1)
	}
}

func TestWalkNegativeDepth(t *testing.T) {
	_, err := Walk("/r", -1, WalkOptions{})
	assert.ErrorIs(t, err, ErrNegativeDepth)
}

func TestWalkSurfacesFirstFailure(t *testing.T) {
	boom := errors.New("cannot open")
	fsys := scenarioTree(t)
	fsys.openErr["/r/c"] = boom

	seq, err := Walk("/r", Unlimited, fsys.opts(false))
	require.NoError(t, err)
	defer seq.Close()

	var paths []string
	for seq.Next() {
		paths = append(paths, seq.Path())
	}
	assert.ErrorIs(t, seq.Err(), boom)
	assert.Equal(t, []string{"/r", "/r/a", "/r/b"}, paths)
	assert.False(t, seq.Next(), "sequence must stay finished after a failure")
}

func TestWalkLoopWithFollowLinks(t *testing.T) {
	fsys := scenarioTree(t)
	fsys.links["/r/c/loop"] = "/r"

	seq, err := Walk("/r", Unlimited, fsys.opts(true))
	require.NoError(t, err)
	_, err = seq.Collect()
	assert.ErrorIs(t, err, ErrLoop)

	seq, err = Walk("/r", Unlimited, fsys.opts(false))
	require.NoError(t, err)
	paths, err := seq.Collect()
	require.NoError(t, err)
	assert.Contains(t, paths, "/r/c/loop")
}

func TestWalkMissingRoot(t *testing.T) {
	fsys := scenarioTree(t)
	seq, err := Walk("/missing", Unlimited, fsys.opts(false))
	require.NoError(t, err)

	_, err = seq.Collect()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWalkPartialConsumptionReleasesFrames(t *testing.T) {
	fsys := newFaultFS(t, "/r/a/b/c/file", "/r/z")
	seq, err := Walk("/r", Unlimited, fsys.opts(false))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.True(t, seq.Next())
	}
	assert.Equal(t, "/r/a/b/c", seq.Path())
	assert.Equal(t, 4, fsys.open)

	require.NoError(t, seq.Close())
	assert.Equal(t, 0, fsys.open)
	assert.False(t, seq.Next())
	require.NoError(t, seq.Close())
}

func TestFindUsesFetchedAttributes(t *testing.T) {
	fsys := newFaultFS(t, "/r/a.txt", "/r/b.go", "/r/sub/c.txt", "/r/sub/d/")

	var seen []string
	pred := func(path string, attrs Attributes) bool {
		seen = append(seen, path)
		return !attrs.IsDir && strings.HasSuffix(path, ".txt")
	}
	seq, err := Find("/r", Unlimited, pred, fsys.opts(false))
	require.NoError(t, err)
	paths, err := seq.Collect()
	require.NoError(t, err)

	assert.Equal(t, []string{"/r/a.txt", "/r/sub/c.txt"}, paths)
	assert.Len(t, seen, 6)
	assert.Equal(t, 1, fsys.stats, "Find must not fetch attributes twice")
}

func TestFindReportsFailuresRegardlessOfPredicate(t *testing.T) {
	boom := errors.New("cannot open")
	fsys := scenarioTree(t)
	fsys.openErr["/r/c"] = boom

	seq, err := Find("/r", Unlimited, func(string, Attributes) bool { return false }, fsys.opts(false))
	require.NoError(t, err)
	paths, err := seq.Collect()
	assert.Empty(t, paths)
	assert.ErrorIs(t, err, boom)
}

func TestSequenceAll(t *testing.T) {
	fsys := scenarioTree(t)
	seq, err := Walk("/r", Unlimited, fsys.opts(false))
	require.NoError(t, err)
	defer seq.Close()

	var paths []string
	for p, err := range seq.All() {
		require.NoError(t, err)
		paths = append(paths, p)
		if p == "/r/b" {
			break
		}
	}
	assert.Equal(t, []string{"/r", "/r/a", "/r/b"}, paths)

	// The sequence resumes where the loop stopped.
	require.True(t, seq.Next())
	assert.Equal(t, "/r/c", seq.Path())
}

func TestSequenceAllYieldsFailure(t *testing.T) {
	boom := errors.New("cannot open")
	fsys := scenarioTree(t)
	fsys.openErr["/r/c"] = boom

	seq, err := Walk("/r", Unlimited, fsys.opts(false))
	require.NoError(t, err)
	defer seq.Close()

	var last error
	for _, err := range seq.All() {
		last = err
	}
	assert.ErrorIs(t, last, boom)
}

func TestList(t *testing.T) {
	fsys := scenarioTree(t)
	seq, err := List("/r", fsys.opts(false))
	require.NoError(t, err)

	paths, err := seq.Collect()
	require.NoError(t, err)
	assert.Equal(t, []string{"/r/a", "/r/b", "/r/c"}, paths)
	assert.Equal(t, 0, fsys.open)
}

func TestListFailures(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		fsys := scenarioTree(t)
		_, err := List("/r/a", fsys.opts(false))
		assert.ErrorIs(t, err, ErrNotDir)

		_, err = List("/missing", fsys.opts(false))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("iteration", func(t *testing.T) {
		boom := errors.New("read failed")
		fsys := scenarioTree(t)
		fsys.drainErr["/r"] = boom

		seq, err := List("/r", fsys.opts(false))
		require.NoError(t, err)
		paths, err := seq.Collect()
		assert.Len(t, paths, 3)

		var listErr *ListError
		require.ErrorAs(t, err, &listErr)
		assert.Equal(t, "/r", listErr.Dir)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("close early", func(t *testing.T) {
		fsys := scenarioTree(t)
		seq, err := List("/r", fsys.opts(false))
		require.NoError(t, err)
		require.True(t, seq.Next())
		assert.Equal(t, 1, fsys.open)
		require.NoError(t, seq.Close())
		assert.Equal(t, 0, fsys.open)
	})
}

func TestFindClosesWalkerThatCannotStart(t *testing.T) {
	boom := errors.New("close failed")
	fsys := scenarioTree(t)
	fsys.closeErr["/r"] = boom

	w, err := NewWalker(fsys.opts(false), Unlimited)
	require.NoError(t, err)
	_, err = w.Start("/r")
	require.NoError(t, err)
	require.Equal(t, 1, fsys.open)

	seq, err := find(w, "/r", nil)
	assert.Nil(t, seq)
	assert.ErrorIs(t, err, ErrAlreadyStarted)
	assert.ErrorIs(t, err, boom)
	assert.False(t, w.IsOpen())
	assert.Equal(t, 0, fsys.open)
}
