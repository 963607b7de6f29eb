package vostpath

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/voserr"
)

func TestNormalizeStripsSlashesAndAcceptsRoot(t *testing.T) {
	p, err := Normalize("/a/b/")
	require.NoError(t, err)
	require.Equal(t, "a/b", p)

	p, err = Normalize("")
	require.NoError(t, err)
	require.Equal(t, Root, p)

	p, err = Normalize("///")
	require.NoError(t, err)
	require.Equal(t, Root, p)
}

func TestNormalizeRejectsDotSegments(t *testing.T) {
	for _, bad := range []string{"a/./b", "a/../b", "a//b"} {
		_, err := Normalize(bad)
		require.Error(t, err, bad)
		require.True(t, voserr.IsInvalidPath(err), bad)
	}
}

func TestSegmentsAndJoinAndSplit(t *testing.T) {
	require.Nil(t, Segments(Root))
	require.Equal(t, []string{"a", "b"}, Segments("a/b"))

	require.Equal(t, "a", Join(Root, "a"))
	require.Equal(t, "a/b", Join("a", "b"))

	dir, base := Split("a/b")
	require.Equal(t, "a", dir)
	require.Equal(t, "b", base)

	dir, base = Split("a")
	require.Equal(t, Root, dir)
	require.Equal(t, "a", base)

	dir, base = Split(Root)
	require.Equal(t, Root, dir)
	require.Equal(t, Root, base)
}

func TestIsDotfile(t *testing.T) {
	require.True(t, IsDotfile(".hidden"))
	require.False(t, IsDotfile("visible"))
}
