package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeDeltaSize(n int64) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			break
		}
	}
	return out
}

func TestApplyDeltaInsertOnly(t *testing.T) {
	base := []byte("hello")
	target := []byte("hello, vost")

	var delta []byte
	delta = append(delta, encodeDeltaSize(int64(len(base)))...)
	delta = append(delta, encodeDeltaSize(int64(len(target)))...)
	delta = append(delta, byte(len(target))) // insert instruction: literal bytes follow
	delta = append(delta, target...)

	out, err := applyDelta(base, delta)
	require.NoError(t, err)
	assert.Equal(t, target, out)
}

func TestApplyDeltaCopyAndInsert(t *testing.T) {
	base := []byte("the quick brown fox")
	// copy "the quick " (offset 0, size 10), then insert "slow ", then copy
	// "brown fox" (offset 10, size 9)
	target := "the quick slow brown fox"

	var delta []byte
	delta = append(delta, encodeDeltaSize(int64(len(base)))...)
	delta = append(delta, encodeDeltaSize(int64(len(target)))...)

	// copy op: offset=0 (omit all offset bytes -> flags none), size=10 (one byte)
	delta = append(delta, 0x80|0x10, 10)

	// insert "slow "
	delta = append(delta, 5)
	delta = append(delta, []byte("slow ")...)

	// copy op: offset=10 (one byte), size=9 (one byte)
	delta = append(delta, 0x80|0x01|0x10, 10, 9)

	out, err := applyDelta(base, delta)
	require.NoError(t, err)
	assert.Equal(t, target, string(out))
}
