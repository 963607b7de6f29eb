// Package refstore is the ref store: get/set/delete named refs under
// refs/heads/* and refs/tags/*, ref-name validation, and the
// compare-and-swap update the commit layer uses to serialize concurrent
// branch advances. The interface (Get/Set/CompareAndSwap/Delete/List/
// HEAD/SetHEAD) is narrowed to exactly what's needed:
// this package is deliberately policy-free (it does not know "tags are
// write-once" — repo enforces that, keeping Branch-vs-Tag polymorphism
// out of the storage layer).
package refstore

import (
	"strings"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/voserr"
)

// Name is a full ref name, e.g. "refs/heads/main" or "refs/tags/v1".
type Name string

const (
	headsPrefix = "refs/heads/"
	tagsPrefix  = "refs/tags/"
	// HEAD is the repo's symbolic default-branch pointer.
	HEAD Name = "HEAD"
)

// BranchRef returns the full ref name for branch short name.
func BranchRef(short string) Name { return Name(headsPrefix + short) }

// TagRef returns the full ref name for tag short name.
func TagRef(short string) Name { return Name(tagsPrefix + short) }

// IsBranch reports whether n is under refs/heads/.
func (n Name) IsBranch() bool { return strings.HasPrefix(string(n), headsPrefix) }

// IsTag reports whether n is under refs/tags/.
func (n Name) IsTag() bool { return strings.HasPrefix(string(n), tagsPrefix) }

// Short returns the branch or tag short name, stripping whichever prefix
// matches; names outside both namespaces are returned unchanged.
func (n Name) Short() string {
	switch {
	case n.IsBranch():
		return strings.TrimPrefix(string(n), headsPrefix)
	case n.IsTag():
		return strings.TrimPrefix(string(n), tagsPrefix)
	default:
		return string(n)
	}
}

// ValidateName rejects forbidden characters in a ref name: colon,
// whitespace, tab, and newline. '/' and '.' are explicitly allowed.
func ValidateName(name string) error {
	if name == "" {
		return voserr.InvalidRefName(name)
	}
	for _, r := range name {
		switch r {
		case ':', ' ', '\t', '\n', '\r':
			return voserr.InvalidRefName(name)
		}
	}
	return nil
}

// Ref is one resolved (name, target OID) pair.
type Ref struct {
	Name   Name
	Target hash.Hash
}

// Backend is the storage interface a ref store implements: get/set/delete
// of hash-valued refs plus the HEAD symbolic ref and an optimistic-
// concurrency compare-and-swap used by the commit layer's atomic branch
// advance.
type Backend interface {
	// Get returns the current target of name, and ok=false if it does not
	// exist.
	Get(name Name) (h hash.Hash, ok bool, err error)

	// Set unconditionally creates or overwrites name. Used for tag
	// creation (enforced write-once one layer up, in repo) and for the
	// first write of a new branch.
	Set(name Name, h hash.Hash) error

	// CompareAndSwap atomically sets name to next, failing with
	// voserr.ErrStaleSnapshot if name's current value is not expected.
	// expectExists=false means "name must not currently exist"; a
	// conflicting pre-existing value also fails with ErrStaleSnapshot.
	CompareAndSwap(name Name, expectExists bool, expected, next hash.Hash) error

	// Delete removes name. Deleting an absent ref is a no-op.
	Delete(name Name) error

	// List returns every ref whose name has the given prefix (e.g.
	// "refs/heads/"), in no particular order.
	List(prefix string) ([]Ref, error)

	// HEAD returns the branch ref name HEAD currently points to, and
	// ok=false if HEAD is dangling (not yet set).
	HEAD() (target Name, ok bool, err error)

	// SetHEAD points the symbolic HEAD ref at target (must be a
	// refs/heads/* name).
	SetHEAD(target Name) error
}
