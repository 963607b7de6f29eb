package object

import "io"

// Blob is the content object type: an opaque byte string held in memory.
// The object database reads and writes blob bodies whole (see
// odb.Store.Read), so Blob is a thin holder for the full content.
type Blob struct {
	Content []byte
}

func (b *Blob) Type() Type { return BlobType }

func (b *Blob) Encode(w io.Writer) (int64, error) {
	n, err := w.Write(b.Content)
	return int64(n), err
}

func (b *Blob) Decode(r io.Reader, size int64) error {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	b.Content = buf
	return nil
}
