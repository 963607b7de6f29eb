package object

import (
	"fmt"
	"io"

	"github.com/vost-dev/vost/hash"
)

// Type identifies which of the four git object kinds a loose or packed
// object encodes.
type Type string

const (
	BlobType   Type = "blob"
	TreeType   Type = "tree"
	CommitType Type = "commit"
	TagType    Type = "tag"
)

func (t Type) String() string { return string(t) }

// TypeFromString parses the type field of an object header or tag header.
func TypeFromString(s string) (Type, error) {
	switch Type(s) {
	case BlobType, TreeType, CommitType, TagType:
		return Type(s), nil
	default:
		return "", fmt.Errorf("object: unknown object type %q", s)
	}
}

// Object is satisfied by Blob, Tree, Commit, and Tag. Encode writes the
// object's body (without the "<type> <size>\0" header — the object store
// adds that) and Decode reads it back given the already-parsed size.
type Object interface {
	Type() Type
	Encode(w io.Writer) (int64, error)
	Decode(r io.Reader, size int64) error
}

// UnexpectedType is returned when an object is read but does not have the
// type the caller expected.
type UnexpectedType struct {
	Got, Wanted Type
}

func (e *UnexpectedType) Error() string {
	return fmt.Sprintf("object: unexpected object type, got %q, wanted %q", e.Got, e.Wanted)
}

// Encode computes the hash of an object's canonical encoding, the way it
// would be stored in the object database: "<type> <size>\0<body>".
func Encode(o Object) (hash.Hash, []byte, error) {
	var buf writeCounter
	if _, err := o.Encode(&buf); err != nil {
		return hash.Hash{}, nil, err
	}
	body := buf.Bytes()
	h := hash.New()
	header := fmt.Sprintf("%s %d\x00", o.Type(), len(body))
	_, _ = h.Write([]byte(header))
	_, _ = h.Write(body)
	return h.Sum(), body, nil
}

// writeCounter is a tiny growable buffer; kept local to avoid pulling in
// bytes.Buffer's larger surface where not needed.
type writeCounter struct {
	data []byte
}

func (w *writeCounter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *writeCounter) Bytes() []byte { return w.data }
