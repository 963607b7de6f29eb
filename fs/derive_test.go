package fs

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/refstore"
)

func newTestHandle(t *testing.T) *Handle {
	t.Helper()
	dir := t.TempDir()
	store, err := odb.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	refs := refstore.NewFilesystem(dir)
	return NewHandle(dir, store, refs, object.Signature{Name: "Tester", Email: "t@example.com"}, logrus.New())
}

func rootSnapshot(t *testing.T, h *Handle, branch string) *Snapshot {
	t.Helper()
	name := refstore.BranchRef(branch)
	emptyRoot, err := h.Store.Write(&object.Tree{})
	require.NoError(t, err)
	sig := h.signatureNow()
	c := &object.Commit{Tree: emptyRoot, Author: sig, Committer: sig, Message: "root"}
	oid, err := h.Store.Write(c)
	require.NoError(t, err)
	require.NoError(t, h.Refs.Set(name, oid))
	snap, err := FromBranch(h, name)
	require.NoError(t, err)
	return snap
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	h := newTestHandle(t)
	snap := rootSnapshot(t, h, "main")

	next, err := snap.Write("dir/a.txt", []byte("hello"), 0)
	require.NoError(t, err)

	got, err := next.Read("dir/a.txt", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestRemoveAbsentPathIsNoOpOnSnapshot(t *testing.T) {
	h := newTestHandle(t)
	snap := rootSnapshot(t, h, "main")

	same, err := snap.Remove("missing.txt")
	require.NoError(t, err)
	require.Equal(t, snap.CommitHash(), same.CommitHash())
}

func TestMoveIntoDirectoryKeepsBasenames(t *testing.T) {
	h := newTestHandle(t)
	snap := rootSnapshot(t, h, "main")

	snap, err := snap.Write("a.txt", []byte("a"), 0)
	require.NoError(t, err)
	snap, err = snap.Write("b.txt", []byte("b"), 0)
	require.NoError(t, err)

	moved, err := snap.Move([]string{"a.txt", "b.txt"}, "dest/", false, false, "")
	require.NoError(t, err)

	existsA, err := moved.Exists("dest/a.txt")
	require.NoError(t, err)
	require.True(t, existsA)
	existsOld, err := moved.Exists("a.txt")
	require.NoError(t, err)
	require.False(t, existsOld)
}

func TestCopyFromRefCopiesAndDeletes(t *testing.T) {
	h := newTestHandle(t)
	src := rootSnapshot(t, h, "src")
	dst := rootSnapshot(t, h, "dst")

	src, err := src.Write("keep/x.txt", []byte("x"), 0)
	require.NoError(t, err)

	dst, err = dst.Write("keep/stale.txt", []byte("stale"), 0)
	require.NoError(t, err)

	dst, err = dst.CopyFromRef(src, "keep", "keep", true, false, "")
	require.NoError(t, err)

	existsX, err := dst.Exists("keep/x.txt")
	require.NoError(t, err)
	require.True(t, existsX)

	existsStale, err := dst.Exists("keep/stale.txt")
	require.NoError(t, err)
	require.False(t, existsStale)
}
