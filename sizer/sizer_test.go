package sizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
)

func TestSizeOfLooseBlobMatchesContentLength(t *testing.T) {
	store, err := odb.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	content := []byte("the quick brown fox jumps over the lazy dog")
	h, err := store.Write(&object.Blob{Content: content})
	require.NoError(t, err)

	s := New(store)
	size, err := s.Size(h)
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), size)
}

func TestSizeOfEmptyBlob(t *testing.T) {
	store, err := odb.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h, err := store.Write(&object.Blob{Content: []byte{}})
	require.NoError(t, err)

	s := New(store)
	size, err := s.Size(h)
	require.NoError(t, err)
	require.Equal(t, int64(0), size)
}
