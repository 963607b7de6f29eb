package fs

import (
	"github.com/vost-dev/vost/changeset"
	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/refstore"
	"github.com/vost-dev/vost/voserr"
)

// Snapshot is an immutable view of one commit as a filesystem. A snapshot
// obtained from a branch is writable; one obtained from a
// tag or a detached commit OID is read-only. Changes is non-nil only on
// snapshots produced by dry-run derive operations.
type Snapshot struct {
	h        *Handle
	commit   hash.Hash
	ref      *refstore.Name // branch name this snapshot is bound to, nil if detached/tag
	writable bool
	changes  *changeset.Set
}

// AtCommit constructs a detached, read-only snapshot at an arbitrary
// commit OID.
func AtCommit(h *Handle, commit hash.Hash) *Snapshot {
	return &Snapshot{h: h, commit: commit}
}

// FromBranch resolves name (a refs/heads/* ref) to its current commit and
// returns a writable snapshot bound to that branch.
func FromBranch(h *Handle, name refstore.Name) (*Snapshot, error) {
	target, ok, err := h.Refs.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, voserr.NotFound(string(name))
	}
	return &Snapshot{h: h, commit: target, ref: &name, writable: true}, nil
}

// FromTag resolves name (a refs/tags/* ref) to a commit and returns a
// read-only snapshot. An annotated tag (pointing at a Tag object) is
// dereferenced to its underlying commit; a tag pointing at anything other
// than a commit or a tag-of-a-commit fails with voserr.ErrInvalidTag.
func FromTag(h *Handle, name refstore.Name) (*Snapshot, error) {
	target, ok, err := h.Refs.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, voserr.NotFound(string(name))
	}
	commit, err := dereferenceToCommit(h, name, target)
	if err != nil {
		return nil, err
	}
	return &Snapshot{h: h, commit: commit}, nil
}

func dereferenceToCommit(h *Handle, name refstore.Name, oid hash.Hash) (hash.Hash, error) {
	typ, err := h.Store.Type(oid)
	if err != nil {
		return hash.Hash{}, err
	}
	switch typ {
	case object.CommitType:
		return oid, nil
	case object.TagType:
		var t object.Tag
		if err := h.Store.Read(oid, &t); err != nil {
			return hash.Hash{}, err
		}
		if t.ObjectType != object.CommitType {
			return hash.Hash{}, voserr.InvalidTag(string(name), string(t.ObjectType))
		}
		return t.Object, nil
	default:
		return hash.Hash{}, voserr.InvalidTag(string(name), string(typ))
	}
}

// Handle returns the repo handle this snapshot is bound to. Used by repo
// and batch to reach the store/refs without re-threading them.
func (s *Snapshot) Handle() *Handle { return s.h }

// Writable reports whether derive operations are permitted on s.
func (s *Snapshot) Writable() bool { return s.writable }

// Ref returns the branch ref name this snapshot is bound to, or nil if
// it's a tag or detached snapshot.
func (s *Snapshot) Ref() *refstore.Name { return s.ref }

// Changes returns the predicted change set for a dry-run snapshot, or nil
// for an ordinary one.
func (s *Snapshot) Changes() *changeset.Set { return s.changes }

// CommitHash returns the commit OID this snapshot is pinned to.
func (s *Snapshot) CommitHash() hash.Hash { return s.commit }

func (s *Snapshot) commitObject() (*object.Commit, error) {
	return s.h.readCommit(s.commit)
}

// Commit returns the decoded commit object s is pinned to, for callers
// (the CLI's log command) that need the author/message rather than just
// the tree.
func (s *Snapshot) Commit() (*object.Commit, error) {
	return s.commitObject()
}

// TreeHash returns the root tree OID of the pinned commit.
func (s *Snapshot) TreeHash() (hash.Hash, error) {
	c, err := s.commitObject()
	if err != nil {
		return hash.Hash{}, err
	}
	return c.Tree, nil
}

// Parent returns a read-only snapshot of the pinned commit's parent, or
// nil if the pinned commit is a root commit.
func (s *Snapshot) Parent() (*Snapshot, error) {
	c, err := s.commitObject()
	if err != nil {
		return nil, err
	}
	if c.Parent == nil {
		return nil, nil
	}
	return AtCommit(s.h, *c.Parent), nil
}

// Back returns the snapshot n commits behind s (Back(0) returns s itself),
// failing with voserr.ErrNotEnoughHistory if the chain is shorter than n.
func (s *Snapshot) Back(n int) (*Snapshot, error) {
	cur := s
	for i := 0; i < n; i++ {
		p, err := cur.Parent()
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, voserr.NotEnoughHistory(n, i)
		}
		cur = p
	}
	return cur, nil
}

// LogIter lazily walks a snapshot's ancestor chain, newest first.
type LogIter struct {
	cur *Snapshot
	err error
}

// Log returns an iterator over s and its ancestors, newest (s) first.
func (s *Snapshot) Log() *LogIter {
	return &LogIter{cur: s}
}

// Next returns the next snapshot in the chain, or (nil, nil) once
// exhausted. A non-nil error means reading the next commit failed.
func (it *LogIter) Next() (*Snapshot, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.cur == nil {
		return nil, nil
	}
	out := it.cur
	next, err := out.Parent()
	if err != nil {
		it.err = err
		return nil, err
	}
	it.cur = next
	return out, nil
}
