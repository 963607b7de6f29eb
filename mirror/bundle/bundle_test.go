package bundle

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/hash"
)

func someHash(b byte) hash.Hash {
	var h hash.Hash
	h[0] = b
	return h
}

func TestWriteReadRoundTrips(t *testing.T) {
	refs := Refs{
		"refs/heads/main": someHash(1),
		"refs/tags/v1":    someHash(2),
	}
	pack := []byte("PACK\x00\x00\x00\x02fake-pack-payload")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, refs, bytes.NewReader(pack)))

	gotRefs, packReader, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, refs, gotRefs)

	rest, err := io.ReadAll(packReader)
	require.NoError(t, err)
	require.Equal(t, pack, rest)
}

func TestWriteEmitsGitBundleV2Header(t *testing.T) {
	refs := Refs{"refs/heads/main": someHash(1)}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, refs, bytes.NewReader(nil)))

	lines := strings.SplitN(buf.String(), "\n", 4)
	require.Equal(t, "# v2 git bundle", lines[0])
	require.Equal(t, someHash(1).String()+" refs/heads/main", lines[1])
	require.Equal(t, "", lines[2])
}

func TestWriteSortsRefLines(t *testing.T) {
	refs := Refs{
		"refs/tags/v1":    someHash(2),
		"refs/heads/main": someHash(1),
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, refs, bytes.NewReader(nil)))

	mainAt := strings.Index(buf.String(), "refs/heads/main")
	tagAt := strings.Index(buf.String(), "refs/tags/v1")
	require.True(t, mainAt >= 0 && tagAt >= 0 && mainAt < tagAt)
}

func TestReadRejectsBadSignature(t *testing.T) {
	_, _, err := Read(strings.NewReader("not-a-bundle\n"))
	require.Error(t, err)
}

func TestReadRejectsPrerequisites(t *testing.T) {
	input := signature + "-" + strings.Repeat("a", hash.HexSize) + " base commit\n\n"
	_, _, err := Read(strings.NewReader(input))
	require.Error(t, err)
}
