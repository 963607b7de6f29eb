package object

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/hash"
)

func TestBlobEncodeDecodeRoundTrip(t *testing.T) {
	b := &Blob{Content: []byte("hello, vost")}
	var buf bytes.Buffer
	n, err := b.Encode(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, len(b.Content), n)

	var out Blob
	require.NoError(t, out.Decode(&buf, int64(len(b.Content))))
	assert.Equal(t, b.Content, out.Content)
}

func TestBlobHashMatchesGit(t *testing.T) {
	h, body, err := Encode(&Blob{Content: []byte("hello, vost")})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello, vost"), body)
	assert.False(t, h.IsZero())
	assert.Equal(t, "00c7d17c2f14c0f3d04ecf7f5624c30149db5241", h.String())
}

func TestEmptyBlobHashIsGitEmptyBlobHash(t *testing.T) {
	h, _, err := Encode(&Blob{})
	require.NoError(t, err)
	assert.Equal(t, "e69de29bb2d1d6434b8b29ae775ad8c2e48c5391", h.String())
}

func TestTreeSortOrdersDirectoriesBySlashSuffix(t *testing.T) {
	// git quirk: a file named "foo.txt" sorts before a directory named
	// "foo", because the directory's sort key is "foo/" which is greater
	// than "foo.txt".
	tr := &Tree{Entries: []TreeEntry{
		{Name: "foo", Mode: Dir, Hash: hash.FromHex("1111111111111111111111111111111111111111")},
		{Name: "foo.txt", Mode: Regular, Hash: hash.FromHex("2222222222222222222222222222222222222222")},
	}}
	tr.Sort()
	require.Len(t, tr.Entries, 2)
	assert.Equal(t, "foo.txt", tr.Entries[0].Name)
	assert.Equal(t, "foo", tr.Entries[1].Name)
}

func TestTreeEncodeDecodeRoundTrip(t *testing.T) {
	tr := &Tree{Entries: []TreeEntry{
		{Name: "a.txt", Mode: Regular, Hash: hash.FromHex("1111111111111111111111111111111111111111")},
		{Name: "bin", Mode: Executable, Hash: hash.FromHex("2222222222222222222222222222222222222222")},
		{Name: "link", Mode: Symlink, Hash: hash.FromHex("3333333333333333333333333333333333333333")},
		{Name: "sub", Mode: Dir, Hash: hash.FromHex("4444444444444444444444444444444444444444")},
	}}
	tr.Sort()

	var buf bytes.Buffer
	n, err := tr.Encode(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)

	var out Tree
	require.NoError(t, out.Decode(&buf, int64(buf.Len())))
	assert.True(t, tr.Equal(&out))
}

func TestTreeWithAndWithout(t *testing.T) {
	tr := &Tree{}
	tr = tr.With(TreeEntry{Name: "a", Mode: Regular, Hash: hash.FromHex("1111111111111111111111111111111111111111")})
	tr = tr.With(TreeEntry{Name: "b", Mode: Regular, Hash: hash.FromHex("2222222222222222222222222222222222222222")})
	_, ok := tr.Entry("a")
	assert.True(t, ok)

	tr2 := tr.Without("a")
	_, ok = tr2.Entry("a")
	assert.False(t, ok)
	_, ok = tr2.Entry("b")
	assert.True(t, ok)
}

func sig(name, email string, unix int64) Signature {
	return Signature{Name: name, Email: email, When: time.Unix(unix, 0).In(time.FixedZone("", 0))}
}

func TestSignatureEncodeParseRoundTrip(t *testing.T) {
	s := sig("Ada Lovelace", "ada@example.com", 1700000000)
	line := s.Encode()
	parsed, err := ParseSignature(line)
	require.NoError(t, err)
	assert.Equal(t, s.Name, parsed.Name)
	assert.Equal(t, s.Email, parsed.Email)
	assert.Equal(t, s.When.Unix(), parsed.When.Unix())
}

func TestCommitEncodeDecodeRoundTrip(t *testing.T) {
	parent := hash.FromHex("1111111111111111111111111111111111111111")
	c := &Commit{
		Tree:      hash.FromHex("2222222222222222222222222222222222222222"),
		Parent:    &parent,
		Author:    sig("Ada Lovelace", "ada@example.com", 1700000000),
		Committer: sig("Ada Lovelace", "ada@example.com", 1700000000),
		Message:   "initial commit\n",
	}

	var buf bytes.Buffer
	_, err := c.Encode(&buf)
	require.NoError(t, err)

	var out Commit
	require.NoError(t, out.Decode(&buf, int64(buf.Len())))
	assert.Equal(t, c.Tree, out.Tree)
	require.NotNil(t, out.Parent)
	assert.Equal(t, *c.Parent, *out.Parent)
	assert.Equal(t, c.Message, out.Message)
	assert.Equal(t, c.Author.Name, out.Author.Name)
}

func TestCommitWithoutParentOmitsParentHeader(t *testing.T) {
	c := &Commit{
		Tree:      hash.FromHex("2222222222222222222222222222222222222222"),
		Author:    sig("Ada Lovelace", "ada@example.com", 1700000000),
		Committer: sig("Ada Lovelace", "ada@example.com", 1700000000),
		Message:   "root commit\n",
	}
	var buf bytes.Buffer
	_, err := c.Encode(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "parent")

	var out Commit
	require.NoError(t, out.Decode(&buf, int64(buf.Len())))
	assert.Nil(t, out.Parent)
}

func TestTagEncodeDecodeRoundTrip(t *testing.T) {
	tag := &Tag{
		Object:     hash.FromHex("3333333333333333333333333333333333333333"),
		ObjectType: CommitType,
		Name:       "v1.0.0",
		Tagger:     sig("Ada Lovelace", "ada@example.com", 1700000000),
		Message:    "release 1.0.0\n",
	}
	var buf bytes.Buffer
	_, err := tag.Encode(&buf)
	require.NoError(t, err)

	var out Tag
	require.NoError(t, out.Decode(&buf, int64(buf.Len())))
	assert.Equal(t, tag.Object, out.Object)
	assert.Equal(t, tag.ObjectType, out.ObjectType)
	assert.Equal(t, tag.Name, out.Name)
	assert.Equal(t, tag.Message, out.Message)
}
