package odb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/object"
)

func TestStoreWriteReadRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	blob := &object.Blob{Content: []byte("hello, vost")}
	h, err := store.Write(blob)
	require.NoError(t, err)
	assert.True(t, store.Has(h))

	var out object.Blob
	require.NoError(t, store.Read(h, &out))
	assert.Equal(t, blob.Content, out.Content)
}

func TestStoreWriteIsIdempotent(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	blob := &object.Blob{Content: []byte("same content")}
	h1, err := store.Write(blob)
	require.NoError(t, err)
	h2, err := store.Write(blob)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestStoreReadWrongTypeErrors(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	h, err := store.Write(&object.Blob{Content: []byte("x")})
	require.NoError(t, err)

	var tree object.Tree
	err = store.Read(h, &tree)
	require.Error(t, err)
	var ut *object.UnexpectedType
	assert.ErrorAs(t, err, &ut)
}

func TestStoreTreeRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	blobHash, err := store.Write(&object.Blob{Content: []byte("contents")})
	require.NoError(t, err)

	tree := &object.Tree{Entries: []object.TreeEntry{
		{Name: "file.txt", Mode: object.Regular, Hash: blobHash},
	}}
	tree.Sort()
	treeHash, err := store.Write(tree)
	require.NoError(t, err)

	var out object.Tree
	require.NoError(t, store.Read(treeHash, &out))
	assert.True(t, tree.Equal(&out))
}
