package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
)

func newStore(t *testing.T) *odb.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := odb.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func write(t *testing.T, store *odb.Store, parent *hash.Hash, writes map[string]WriteOp, removes map[string]struct{}) hash.Hash {
	t.Helper()
	h, err := RebuildTree(store, parent, writes, removes)
	require.NoError(t, err)
	return h
}

func TestRebuildTreeNoOpEquality(t *testing.T) {
	store := newStore(t)
	root := write(t, store, nil, map[string]WriteOp{"a.txt": {Content: []byte("a"), Mode: object.Regular}}, nil)

	again, err := RebuildTree(store, &root, nil, nil)
	require.NoError(t, err)
	require.Equal(t, root, again)
}

func TestRebuildTreePreservesSiblingSubtreeOIDs(t *testing.T) {
	store := newStore(t)
	root := write(t, store, nil, map[string]WriteOp{
		"a/x.txt": {Content: []byte("x"), Mode: object.Regular},
		"b/y.txt": {Content: []byte("y"), Mode: object.Regular},
	}, nil)

	bBefore, ok := mustEntry(t, store, root, "b")
	require.True(t, ok)

	root2 := write(t, store, &root, map[string]WriteOp{"a/x.txt": {Content: []byte("x2"), Mode: object.Regular}}, nil)
	require.NotEqual(t, root, root2)

	bAfter, ok := mustEntry(t, store, root2, "b")
	require.True(t, ok)
	require.Equal(t, bBefore.Hash, bAfter.Hash)
}

func TestRemoveAbsentPathIsNoOp(t *testing.T) {
	store := newStore(t)
	root := write(t, store, nil, map[string]WriteOp{"a.txt": {Content: []byte("a"), Mode: object.Regular}}, nil)

	same, err := RebuildTree(store, &root, nil, map[string]struct{}{"missing.txt": {}})
	require.NoError(t, err)
	require.Equal(t, root, same)
}

func TestRemovingLastChildPrunesDirectory(t *testing.T) {
	store := newStore(t)
	root := write(t, store, nil, map[string]WriteOp{"a/x.txt": {Content: []byte("x"), Mode: object.Regular}}, nil)

	root2 := write(t, store, &root, nil, map[string]struct{}{"a/x.txt": {}})
	exists, err := ExistsAt(store, root2, "a")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestOverwriteFileToDirAndDirToFile(t *testing.T) {
	store := newStore(t)
	root := write(t, store, nil, map[string]WriteOp{"a": {Content: []byte("blob"), Mode: object.Regular}}, nil)

	root2 := write(t, store, &root, map[string]WriteOp{"a/b.txt": {Content: []byte("b"), Mode: object.Regular}}, nil)
	isDir, err := isDirAt(store, root2, "a")
	require.NoError(t, err)
	require.True(t, isDir)

	root3 := write(t, store, &root2, map[string]WriteOp{"a": {Content: []byte("blob2"), Mode: object.Regular}}, nil)
	isDir, err = isDirAt(store, root3, "a")
	require.NoError(t, err)
	require.False(t, isDir)
}

func TestExistsAtReflectsWritesAndRemoves(t *testing.T) {
	store := newStore(t)
	root := write(t, store, nil, map[string]WriteOp{"keep.txt": {Content: []byte("k"), Mode: object.Regular}}, nil)

	root2 := write(t, store, &root, map[string]WriteOp{"new.txt": {Content: []byte("n"), Mode: object.Regular}}, map[string]struct{}{"keep.txt": {}})

	existsNew, err := ExistsAt(store, root2, "new.txt")
	require.NoError(t, err)
	require.True(t, existsNew)

	existsKeep, err := ExistsAt(store, root2, "keep.txt")
	require.NoError(t, err)
	require.False(t, existsKeep)
}

func mustEntry(t *testing.T, store *odb.Store, root hash.Hash, name string) (Entry, bool) {
	t.Helper()
	entries, err := ListTreeAt(store, root, "")
	require.NoError(t, err)
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func isDirAt(store *odb.Store, root hash.Hash, path string) (bool, error) {
	mode, _, err := resolve(store, root, path)
	if err != nil {
		return false, err
	}
	return mode.IsDir(), nil
}
