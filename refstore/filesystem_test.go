package refstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/voserr"
)

func someHash(b byte) hash.Hash {
	var h hash.Hash
	h[0] = b
	return h
}

func TestSetGetDelete(t *testing.T) {
	b := NewFilesystem(t.TempDir())
	name := BranchRef("main")

	_, ok, err := b.Get(name)
	require.NoError(t, err)
	require.False(t, ok)

	h := someHash(1)
	require.NoError(t, b.Set(name, h))

	got, ok, err := b.Get(name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, h, got)

	require.NoError(t, b.Delete(name))
	_, ok, err = b.Get(name)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCompareAndSwap(t *testing.T) {
	b := NewFilesystem(t.TempDir())
	name := BranchRef("main")
	h1, h2 := someHash(1), someHash(2)

	require.NoError(t, b.Set(name, h1))
	require.NoError(t, b.CompareAndSwap(name, true, h1, h2))

	got, ok, err := b.Get(name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, h2, got)

	err = b.CompareAndSwap(name, true, h1, someHash(3))
	require.Error(t, err)
	require.True(t, voserr.IsStaleSnapshot(err))
}

func TestCompareAndSwapCreate(t *testing.T) {
	b := NewFilesystem(t.TempDir())
	name := BranchRef("feature")
	h1 := someHash(9)

	require.NoError(t, b.CompareAndSwap(name, false, hash.Hash{}, h1))
	got, ok, err := b.Get(name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, h1, got)

	err = b.CompareAndSwap(name, false, hash.Hash{}, someHash(10))
	require.Error(t, err)
	require.True(t, voserr.IsStaleSnapshot(err))
}

func TestHEAD(t *testing.T) {
	b := NewFilesystem(t.TempDir())
	_, ok, err := b.HEAD()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, b.SetHEAD(BranchRef("main")))
	target, ok, err := b.HEAD()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, BranchRef("main"), target)
}

func TestList(t *testing.T) {
	b := NewFilesystem(t.TempDir())
	require.NoError(t, b.Set(BranchRef("main"), someHash(1)))
	require.NoError(t, b.Set(BranchRef("dev"), someHash(2)))
	require.NoError(t, b.Set(TagRef("v1"), someHash(3)))

	refs, err := b.List("refs/heads")
	require.NoError(t, err)
	require.Len(t, refs, 2)
}

func TestValidateNameRejectsForbiddenCharacters(t *testing.T) {
	for _, bad := range []string{"has space", "has:colon", "has\ttab", "has\nnewline"} {
		require.Error(t, ValidateName(bad), bad)
	}
	require.NoError(t, ValidateName("feature/sub.branch"))
}
