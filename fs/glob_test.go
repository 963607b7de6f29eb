package fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobExcludesDotfilesUnlessPatternIsDot(t *testing.T) {
	h := newTestHandle(t)
	snap := rootSnapshot(t, h, "main")

	snap, err := snap.Write("a.txt", []byte("a"), 0)
	require.NoError(t, err)
	snap, err = snap.Write(".hidden", []byte("h"), 0)
	require.NoError(t, err)

	matches, err := snap.Glob("*")
	require.NoError(t, err)
	require.Contains(t, matches, "a.txt")
	require.NotContains(t, matches, ".hidden")

	matches, err = snap.Glob(".*")
	require.NoError(t, err)
	require.Contains(t, matches, ".hidden")
}

func TestGlobDoubleStarMatchesNestedSegments(t *testing.T) {
	h := newTestHandle(t)
	snap := rootSnapshot(t, h, "main")

	snap, err := snap.Write("dir/sub/file.go", []byte("x"), 0)
	require.NoError(t, err)
	snap, err = snap.Write("top.go", []byte("x"), 0)
	require.NoError(t, err)

	matches, err := snap.Glob("**/*.go")
	require.NoError(t, err)
	require.Contains(t, matches, "dir/sub/file.go")
}

func TestGlobResultsAreSortedAndDeduplicated(t *testing.T) {
	h := newTestHandle(t)
	snap := rootSnapshot(t, h, "main")

	snap, err := snap.Write("b.txt", []byte("b"), 0)
	require.NoError(t, err)
	snap, err = snap.Write("a.txt", []byte("a"), 0)
	require.NoError(t, err)

	matches, err := snap.Glob("*.txt")
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt"}, matches)
}
