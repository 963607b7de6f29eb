package batch

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/fs"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/refstore"
)

func rootSnapshot(t *testing.T) *fs.Snapshot {
	t.Helper()
	dir := t.TempDir()
	store, err := odb.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	refs := refstore.NewFilesystem(dir)
	h := fs.NewHandle(dir, store, refs, object.Signature{Name: "Tester", Email: "t@example.com"}, logrus.New())

	emptyRoot, err := store.Write(&object.Tree{})
	require.NoError(t, err)
	sig := object.Signature{Name: "Tester", Email: "t@example.com"}
	c := &object.Commit{Tree: emptyRoot, Author: sig, Committer: sig, Message: "root"}
	oid, err := store.Write(c)
	require.NoError(t, err)
	name := refstore.BranchRef("main")
	require.NoError(t, refs.Set(name, oid))

	snap, err := fs.FromBranch(h, name)
	require.NoError(t, err)
	return snap
}

func TestBatchCommitsAllStagedChangesAtomically(t *testing.T) {
	parent := rootSnapshot(t)
	b := New(parent, "")

	require.NoError(t, b.Write("a.txt", []byte("a"), 0))
	require.NoError(t, b.Write("b.txt", []byte("b"), 0))
	require.NoError(t, b.Remove("a.txt")) // superseded by nothing, but then re-written below
	require.NoError(t, b.Write("a.txt", []byte("a2"), 0))

	require.NoError(t, b.Close())
	require.True(t, b.Closed())

	result := b.FS()
	require.NotNil(t, result)

	got, err := result.Read("a.txt", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []byte("a2"), got)

	got, err = result.Read("b.txt", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []byte("b"), got)
}

func TestBatchEmptyCloseLeavesParentUnchanged(t *testing.T) {
	parent := rootSnapshot(t)
	b := New(parent, "")
	require.NoError(t, b.Close())
	require.Equal(t, parent.CommitHash(), b.FS().CommitHash())
}

func TestOperationsAfterCloseFail(t *testing.T) {
	parent := rootSnapshot(t)
	b := New(parent, "")
	require.NoError(t, b.Close())

	err := b.Write("late.txt", []byte("x"), 0)
	require.Error(t, err)
}

func TestWritableFileStagesOnClose(t *testing.T) {
	parent := rootSnapshot(t)
	b := New(parent, "")

	f, err := b.Open("streamed.txt", 0)
	require.NoError(t, err)
	_, err = f.Write([]byte("streamed content"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, b.Close())
	got, err := b.FS().Read("streamed.txt", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []byte("streamed content"), got)
}

func TestRetryAfterStaleSnapshot(t *testing.T) {
	parent := rootSnapshot(t)
	other, err := fs.FromBranch(parent.Handle(), *parent.Ref())
	require.NoError(t, err)

	// Advance the branch behind the batch's back.
	_, err = other.Write("concurrent.txt", []byte("c"), 0)
	require.NoError(t, err)

	b := New(parent, "")
	require.NoError(t, b.Write("a.txt", []byte("a"), 0))

	err = b.Close()
	require.Error(t, err)
	require.False(t, b.Closed())

	freshParent, err := fs.FromBranch(parent.Handle(), *parent.Ref())
	require.NoError(t, err)
	require.NoError(t, b.Retry(freshParent))
	require.True(t, b.Closed())
}
