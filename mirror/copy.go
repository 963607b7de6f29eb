package mirror

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/refstore"
)

// refCopyConcurrency bounds how many ref tips' reachable sets are walked
// at once: enough to overlap I/O across independent commit chains without
// opening unbounded file descriptors against the pack/loose stores.
const refCopyConcurrency = 4

// refMap reads every branch and tag ref (and nothing else — HEAD and
// peeled tags are excluded by Diff, not here) out of a Backend into the
// flat name->target map Diff operates on.
func refMap(refs refstore.Backend) (map[string]hash.Hash, error) {
	out := map[string]hash.Hash{}
	for _, prefix := range []string{"refs/heads", "refs/tags"} {
		list, err := refs.List(prefix)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			out[string(r.Name)] = r.Target
		}
	}
	return out, nil
}

// seenSet is the visited-object set shared by concurrently-walking
// goroutines. add is the only synchronized operation: walkers spend their
// time in store I/O, not in the critical section.
type seenSet struct {
	mu sync.Mutex
	m  map[hash.Hash]bool
}

func newSeenSet() *seenSet {
	return &seenSet{m: map[hash.Hash]bool{}}
}

// add marks h visited, reporting whether it was not already. A false
// return means another walker owns (or has finished) h's subgraph.
func (s *seenSet) add(h hash.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[h] {
		return false
	}
	s.m[h] = true
	return true
}

// collectReachable walks h and everything it transitively references
// (same traversal as copyReachable) into seen, without copying anywhere —
// used to build the object set a bundle or a pushed packfile needs to
// carry.
func collectReachable(store *odb.Store, h hash.Hash, seen *seenSet) error {
	if !seen.add(h) {
		return nil
	}

	typ, err := store.Type(h)
	if err != nil {
		return err
	}
	switch typ {
	case object.TreeType:
		var t object.Tree
		if err := store.Read(h, &t); err != nil {
			return err
		}
		for _, e := range t.Entries {
			if err := collectReachable(store, e.Hash, seen); err != nil {
				return err
			}
		}
	case object.CommitType:
		var c object.Commit
		if err := store.Read(h, &c); err != nil {
			return err
		}
		if err := collectReachable(store, c.Tree, seen); err != nil {
			return err
		}
		if c.Parent != nil {
			if err := collectReachable(store, *c.Parent, seen); err != nil {
				return err
			}
		}
	case object.TagType:
		var tg object.Tag
		if err := store.Read(h, &tg); err != nil {
			return err
		}
		if err := collectReachable(store, tg.Object, seen); err != nil {
			return err
		}
	}
	return nil
}

// copyReachable copies h and everything it transitively references (a
// commit's tree and parent chain, a tree's entries, a tag's target) from
// src to dst, skipping objects dst already has. seen dedups work across
// all walkers sharing it: an object claimed by another walker is skipped
// here and is guaranteed copied once every walker has returned.
func copyReachable(src, dst *odb.Store, h hash.Hash, seen *seenSet) error {
	if !seen.add(h) {
		return nil
	}
	if dst.Has(h) {
		return nil
	}

	typ, err := src.Type(h)
	if err != nil {
		return err
	}
	switch typ {
	case object.BlobType:
		var b object.Blob
		if err := src.Read(h, &b); err != nil {
			return err
		}
		_, err := dst.Write(&b)
		return err

	case object.TreeType:
		var t object.Tree
		if err := src.Read(h, &t); err != nil {
			return err
		}
		for _, e := range t.Entries {
			if err := copyReachable(src, dst, e.Hash, seen); err != nil {
				return err
			}
		}
		_, err := dst.Write(&t)
		return err

	case object.CommitType:
		var c object.Commit
		if err := src.Read(h, &c); err != nil {
			return err
		}
		if err := copyReachable(src, dst, c.Tree, seen); err != nil {
			return err
		}
		if c.Parent != nil {
			if err := copyReachable(src, dst, *c.Parent, seen); err != nil {
				return err
			}
		}
		_, err := dst.Write(&c)
		return err

	case object.TagType:
		var tg object.Tag
		if err := src.Read(h, &tg); err != nil {
			return err
		}
		if err := copyReachable(src, dst, tg.Object, seen); err != nil {
			return err
		}
		_, err := dst.Write(&tg)
		return err

	default:
		return nil
	}
}

// copyReachableMulti copies the closure of every target, one goroutine per
// ref tip (bounded by refCopyConcurrency). The walkers traverse
// concurrently and share only the visited set, synchronized per insert: an
// object reachable from two tips is copied exactly once. The store needs
// no locking of its own here — pack reads go through ReadAt, loose reads
// open a handle per call, and writes are content-addressed (a racing
// duplicate write lands on the same path via an atomic rename).
func copyReachableMulti(src, dst *odb.Store, targets []hash.Hash) error {
	seen := newSeenSet()
	g := new(errgroup.Group)
	g.SetLimit(refCopyConcurrency)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			return copyReachable(src, dst, target, seen)
		})
	}
	return g.Wait()
}

// collectReachableMulti is copyReachableMulti's read-only counterpart,
// used to build the object set a bundle or pushed packfile needs to carry
// from several changed ref tips at once.
func collectReachableMulti(store *odb.Store, targets []hash.Hash) (map[hash.Hash]bool, error) {
	seen := newSeenSet()
	g := new(errgroup.Group)
	g.SetLimit(refCopyConcurrency)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			return collectReachable(store, target, seen)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return seen.m, nil
}
