// Package batch implements the batch transaction: accumulate writes and
// removes against a parent snapshot, with last-op-wins semantics, and
// commit them as a single atomic change on Close. It follows the
// scoped-resource idiom used throughout this module's object-store code
// (open, deferred close, guaranteed release on every exit path), applied
// to an explicit accumulator type rather than an index/worktree model.
package batch

import (
	"bytes"

	"github.com/vost-dev/vost/changeset"
	"github.com/vost-dev/vost/fs"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/tree"
	"github.com/vost-dev/vost/voserr"
	"github.com/vost-dev/vost/vostpath"
)

// Batch accumulates writes and removes against a parent snapshot. It must
// be closed exactly once;
// after Close succeeds or fails with anything other than
// voserr.ErrStaleSnapshot, further operations fail with
// voserr.ErrInvalidState.
type Batch struct {
	parent  *fs.Snapshot
	writes  map[string]tree.WriteOp
	removes map[string]struct{}
	message string
	closed  bool
	result  *fs.Snapshot
}

// New returns a Batch bound to parent, which must be a writable snapshot.
// message is rendered against the final change set's placeholder grammar
// when the batch commits.
func New(parent *fs.Snapshot, message string) *Batch {
	return &Batch{
		parent:  parent,
		writes:  map[string]tree.WriteOp{},
		removes: map[string]struct{}{},
		message: message,
	}
}

// Write stages a write of path to content under mode (object.Regular if
// zero). A later Write or Remove on the same path supersedes this one.
func (b *Batch) Write(path string, content []byte, mode object.FileMode) error {
	if b.closed {
		return voserr.InvalidState("batch is closed")
	}
	p, err := vostpath.Normalize(path)
	if err != nil {
		return err
	}
	if mode == 0 {
		mode = object.Regular
	}
	delete(b.removes, p)
	b.writes[p] = tree.WriteOp{Content: content, Mode: mode}
	return nil
}

// WriteSymlink stages a symlink write at path pointing at target.
func (b *Batch) WriteSymlink(path, target string) error {
	if b.closed {
		return voserr.InvalidState("batch is closed")
	}
	p, err := vostpath.Normalize(path)
	if err != nil {
		return err
	}
	delete(b.removes, p)
	b.writes[p] = tree.WriteOp{Content: []byte(target), Mode: object.Symlink}
	return nil
}

// Remove stages a removal of path. A later Write on the same path
// supersedes this one.
func (b *Batch) Remove(path string) error {
	if b.closed {
		return voserr.InvalidState("batch is closed")
	}
	p, err := vostpath.Normalize(path)
	if err != nil {
		return err
	}
	delete(b.writes, p)
	b.removes[p] = struct{}{}
	return nil
}

// Open returns a WritableFile; the bytes written to it before Close are
// staged into the batch as a write, as of that close time.
func (b *Batch) Open(path string, mode object.FileMode) (*WritableFile, error) {
	if b.closed {
		return nil, voserr.InvalidState("batch is closed")
	}
	p, err := vostpath.Normalize(path)
	if err != nil {
		return nil, err
	}
	if mode == 0 {
		mode = object.Regular
	}
	return &WritableFile{batch: b, path: p, mode: mode}, nil
}

// WritableFile is an in-memory io.WriteCloser; its content is staged into
// the owning batch only once Close is called.
type WritableFile struct {
	batch  *Batch
	path   string
	mode   object.FileMode
	buf    bytes.Buffer
	closed bool
}

func (f *WritableFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, voserr.InvalidState("file is closed")
	}
	return f.buf.Write(p)
}

// Close stages the accumulated bytes into the owning batch as a write.
func (f *WritableFile) Close() error {
	if f.closed {
		return voserr.InvalidState("file is already closed")
	}
	f.closed = true
	return f.batch.Write(f.path, f.buf.Bytes(), f.mode)
}

// Close commits the batch: empty writes and removes leave the parent
// snapshot untouched (FS() then returns parent); otherwise it builds the
// new root tree and a commit, and advances the parent's bound branch.
// A voserr.ErrStaleSnapshot leaves the batch NOT closed — call Retry with
// a freshly-fetched parent to try again.
func (b *Batch) Close() error {
	if b.closed {
		return voserr.InvalidState("batch already closed")
	}
	if len(b.writes) == 0 && len(b.removes) == 0 {
		b.closed = true
		b.result = b.parent
		return nil
	}

	cs := &changeset.Set{}
	for p := range b.writes {
		existed, err := b.parent.Exists(p)
		if err != nil {
			b.closed = true
			return err
		}
		if existed {
			cs.Add(p, changeset.Update)
		} else {
			cs.Add(p, changeset.Add)
		}
	}
	for p := range b.removes {
		existed, err := b.parent.Exists(p)
		if err != nil {
			b.closed = true
			return err
		}
		if existed {
			cs.Add(p, changeset.Delete)
		}
	}

	result, err := fs.Commit(b.parent, b.writes, b.removes, b.message, "", cs)
	if err != nil {
		if voserr.IsStaleSnapshot(err) {
			return err // not closed; caller may Retry
		}
		b.closed = true
		return err
	}
	b.closed = true
	b.result = result
	return nil
}

// Retry re-points the batch at a freshly-fetched parent snapshot and
// attempts Close again, the recovery path for a StaleSnapshot failure.
func (b *Batch) Retry(newParent *fs.Snapshot) error {
	if b.closed {
		return voserr.InvalidState("batch already closed")
	}
	b.parent = newParent
	return b.Close()
}

// FS returns the committed snapshot after a successful Close, or nil if
// Close has not yet succeeded.
func (b *Batch) FS() *fs.Snapshot {
	return b.result
}

// Closed reports whether the batch has been closed (successfully, or with
// a non-stale error).
func (b *Batch) Closed() bool {
	return b.closed
}
