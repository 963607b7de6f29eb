package pack

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/hash"
)

func buildV2Index(t *testing.T, names []hash.Hash) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0x74, 0x4f, 0x63})
	binary.Write(&buf, binary.BigEndian, uint32(2))

	counts := make([]uint32, indexFanoutEntries)
	for _, h := range names {
		counts[h.Bytes()[0]]++
	}
	var running uint32
	for i := 0; i < indexFanoutEntries; i++ {
		running += counts[i]
		binary.Write(&buf, binary.BigEndian, running)
	}

	for _, h := range names {
		buf.Write(h.Bytes())
	}
	for range names {
		binary.Write(&buf, binary.BigEndian, uint32(0)) // crc, unused
	}
	for i := range names {
		binary.Write(&buf, binary.BigEndian, uint32(i*37)) // arbitrary offsets
	}
	return buf.Bytes()
}

func TestDecodeIndexV2RoundTrip(t *testing.T) {
	names := []hash.Hash{
		hash.FromHex("1111111111111111111111111111111111111111"),
		hash.FromHex("2222222222222222222222222222222222222222"),
		hash.FromHex("3333333333333333333333333333333333333333"),
	}
	raw := buildV2Index(t, names)

	idx, err := DecodeIndex(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, len(names), idx.Count())

	for i, h := range names {
		off, ok := idx.Offset(h)
		require.True(t, ok)
		assert.EqualValues(t, i*37, off)
	}

	_, ok := idx.Offset(hash.FromHex("4444444444444444444444444444444444444444"))
	assert.False(t, ok)
}

func TestDecodeIndexEmptyContents(t *testing.T) {
	_, err := DecodeIndex(bytes.NewReader(nil))
	assert.Error(t, err)
}
