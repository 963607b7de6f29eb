// Package mirror implements the ref-level mirror protocol: a three-way
// ref diff (add/update/delete) between a local
// repo and a remote, applied either direction, over the git smart
// protocol or a bundle file.
package mirror

import (
	"sort"
	"strings"

	"github.com/vost-dev/vost/hash"
)

// Direction selects which side is "src" (whose refs are authoritative)
// when diffing.
type Direction int

const (
	// Push treats the local repo as src, the remote as dest (backup).
	Push Direction = iota
	// Pull treats the remote as src, the local repo as dest (restore).
	Pull
)

// RefChange is one ref's observed difference between src and dest.
// OldTarget is nil when the ref doesn't exist in dest (an Add); NewTarget
// is nil when the ref doesn't exist in src (a Delete).
type RefChange struct {
	Ref       string
	OldTarget *hash.Hash
	NewTarget *hash.Hash
}

// MirrorDiff is the three-way classification of every ref under
// consideration.
type MirrorDiff struct {
	Add    []RefChange
	Update []RefChange
	Delete []RefChange
}

// InSync reports whether the diff carries no changes.
func (d *MirrorDiff) InSync() bool {
	return len(d.Add) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// Total returns the sum of all three change lists' lengths.
func (d *MirrorDiff) Total() int {
	return len(d.Add) + len(d.Update) + len(d.Delete)
}

// Diff computes the three-way ref diff between local and remote for the
// given direction. HEAD and peeled-tag refs (suffixed "^{}") are excluded
// from both sides before diffing, symmetrically, rather than only from
// the remote side.
func Diff(local, remote map[string]hash.Hash, direction Direction) *MirrorDiff {
	src, dest := local, remote
	if direction == Pull {
		src, dest = remote, local
	}
	src = excludeSpecial(src)
	dest = excludeSpecial(dest)

	diff := &MirrorDiff{}
	for name, target := range src {
		t := target
		if dt, ok := dest[name]; !ok {
			diff.Add = append(diff.Add, RefChange{Ref: name, NewTarget: &t})
		} else if dt != target {
			old := dt
			diff.Update = append(diff.Update, RefChange{Ref: name, OldTarget: &old, NewTarget: &t})
		}
	}
	for name, target := range dest {
		if _, ok := src[name]; !ok {
			old := target
			diff.Delete = append(diff.Delete, RefChange{Ref: name, OldTarget: &old})
		}
	}

	sortByRef(diff.Add)
	sortByRef(diff.Update)
	sortByRef(diff.Delete)
	return diff
}

func sortByRef(cs []RefChange) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Ref < cs[j].Ref })
}

func excludeSpecial(refs map[string]hash.Hash) map[string]hash.Hash {
	out := make(map[string]hash.Hash, len(refs))
	for name, h := range refs {
		if name == "HEAD" || strings.HasSuffix(name, "^{}") {
			continue
		}
		out[name] = h
	}
	return out
}
