package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHexRoundTrip(t *testing.T) {
	const s = "356a192b7913b04c54574d18c28d46e6395428ab"
	h, err := FromHexStrict(s)
	require.NoError(t, err)
	assert.Equal(t, s, h.String())
	assert.False(t, h.IsZero())
}

func TestFromHexStrictRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "abc", "zz56a192b7913b04c54574d18c28d46e6395428a", "356a192b7913b04c54574d18c28d46e6395428abb"} {
		_, err := FromHexStrict(s)
		assert.Error(t, err, s)
	}
}

func TestZeroIsZero(t *testing.T) {
	assert.True(t, Zero.IsZero())
	assert.Equal(t, "0000000000000000000000000000000000000000", Zero.String())
}

func TestHasherMatchesGitBlobHash(t *testing.T) {
	// git hash-object for an empty blob: "blob 0\0"
	h := New()
	_, _ = h.Write([]byte("blob 0\x00"))
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", h.Sum().String())
}

func TestSort(t *testing.T) {
	a := FromHex("ffffffffffffffffffffffffffffffffffffffff")
	b := FromHex("0000000000000000000000000000000000000001")
	hs := []Hash{a, b}
	Sort(hs)
	assert.Equal(t, b, hs[0])
	assert.Equal(t, a, hs[1])
}
