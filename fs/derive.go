package fs

import (
	"strings"

	"github.com/vost-dev/vost/changeset"
	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/tree"
	"github.com/vost-dev/vost/voserr"
	"github.com/vost-dev/vost/vostpath"
)

// commitChange is the common tail of every derive operation: rebuild the
// root tree, and either (dry run) return a snapshot sharing the parent
// commit OID with changes populated, or build and commit a new tree and
// advance the bound branch via refstore's compare-and-swap. A rebuild that
// changes nothing (tree.RebuildTree returns the
// unchanged parent OID) commits nothing and returns s itself.
func commitChange(s *Snapshot, writes map[string]tree.WriteOp, removes map[string]struct{}, tmpl, op string, cs *changeset.Set, dryRun bool) (*Snapshot, error) {
	if !s.writable {
		return nil, voserr.PermissionDenied("derive operation on a read-only snapshot")
	}
	if dryRun {
		return &Snapshot{h: s.h, commit: s.commit, ref: s.ref, writable: s.writable, changes: cs}, nil
	}

	oldRoot, err := s.TreeHash()
	if err != nil {
		return nil, err
	}
	newRoot, err := tree.RebuildTree(s.h.Store, &oldRoot, writes, removes)
	if err != nil {
		return nil, err
	}
	if newRoot == oldRoot {
		return s, nil
	}

	msg, err := changeset.Render(tmpl, op, cs)
	if err != nil {
		return nil, err
	}

	sig := s.h.signatureNow()
	parent := s.commit
	commitObj := &object.Commit{Tree: newRoot, Parent: &parent, Author: sig, Committer: sig, Message: msg}
	newCommit, err := s.h.Store.Write(commitObj)
	if err != nil {
		return nil, err
	}

	if err := s.h.Refs.CompareAndSwap(*s.ref, true, s.commit, newCommit); err != nil {
		return nil, err
	}
	return &Snapshot{h: s.h, commit: newCommit, ref: s.ref, writable: true}, nil
}

// Commit applies writes/removes against parent in a single commit via the
// same path commitChange uses, advancing parent's bound branch through the
// usual compare-and-swap. Exported for package batch, which accumulates a
// set of changes and commits them atomically on Close.
func Commit(parent *Snapshot, writes map[string]tree.WriteOp, removes map[string]struct{}, message, op string, cs *changeset.Set) (*Snapshot, error) {
	return commitChange(parent, writes, removes, message, op, cs, false)
}

// Write creates or replaces the file at path with content under mode
// (object.Regular if zero). Returns a new snapshot.
func (s *Snapshot) Write(path string, content []byte, mode object.FileMode) (*Snapshot, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return nil, err
	}
	if mode == 0 {
		mode = object.Regular
	}
	existed, err := s.Exists(p)
	if err != nil {
		return nil, err
	}
	cs := &changeset.Set{}
	if existed {
		cs.Add(p, changeset.Update)
	} else {
		cs.Add(p, changeset.Add)
	}
	writes := map[string]tree.WriteOp{p: {Content: content, Mode: mode}}
	return commitChange(s, writes, nil, "", "", cs, false)
}

// WriteSymlink creates or replaces the symlink at path pointing at target.
func (s *Snapshot) WriteSymlink(path, target string) (*Snapshot, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return nil, err
	}
	existed, err := s.Exists(p)
	if err != nil {
		return nil, err
	}
	cs := &changeset.Set{}
	if existed {
		cs.Add(p, changeset.Update)
	} else {
		cs.Add(p, changeset.Add)
	}
	writes := map[string]tree.WriteOp{p: {Content: []byte(target), Mode: object.Symlink}}
	return commitChange(s, writes, nil, "", "", cs, false)
}

// Remove deletes the file at path. Removing an absent path is a no-op
// that returns s unchanged.
func (s *Snapshot) Remove(path string) (*Snapshot, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return nil, err
	}
	if !s.writable {
		return nil, voserr.PermissionDenied("derive operation on a read-only snapshot")
	}
	existed, err := s.Exists(p)
	if err != nil {
		return nil, err
	}
	if !existed {
		return s, nil
	}
	cs := &changeset.Set{}
	cs.Add(p, changeset.Delete)
	removes := map[string]struct{}{p: {}}
	return commitChange(s, nil, removes, "", "", cs, false)
}

// leafEntry is one file/symlink leaf discovered while walking a subtree,
// with its path relative to the repo root.
type leafEntry struct {
	path string
	mode object.FileMode
	hash hash.Hash
}

// leavesUnder lists every file/symlink leaf under the directory base,
// recursively. base must name a directory (or the root).
func leavesUnder(store *odb.Store, root hash.Hash, base string) ([]leafEntry, error) {
	entries, err := tree.ListTreeAt(store, root, base)
	if err != nil {
		return nil, err
	}
	var out []leafEntry
	for _, e := range entries {
		p := vostpath.Join(base, e.Name)
		if e.Mode.IsDir() {
			sub, err := leavesUnder(store, root, p)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		} else {
			out = append(out, leafEntry{path: p, mode: e.Mode, hash: e.Hash})
		}
	}
	return out, nil
}

func readBlobByHash(store *odb.Store, h hash.Hash) ([]byte, error) {
	var b object.Blob
	if err := store.Read(h, &b); err != nil {
		return nil, err
	}
	return b.Content, nil
}

// Move relocates each of srcs to dst. dst ending in '/'
// (or more than one source) means "into this directory, keeping each
// source's basename"; otherwise dst is the exact destination path of the
// single source. Moving a directory requires recursive=true. All moved
// paths are folded into a single commit.
func (s *Snapshot) Move(srcs []string, dst string, recursive, dryRun bool, message string) (*Snapshot, error) {
	if !s.writable {
		return nil, voserr.PermissionDenied("derive operation on a read-only snapshot")
	}
	intoDir := strings.HasSuffix(dst, "/") || len(srcs) > 1
	dstNorm, err := vostpath.Normalize(dst)
	if err != nil {
		return nil, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return nil, err
	}

	writes := map[string]tree.WriteOp{}
	removes := map[string]struct{}{}
	cs := &changeset.Set{}

	for _, raw := range srcs {
		src, err := vostpath.Normalize(raw)
		if err != nil {
			return nil, err
		}
		var dstPath string
		if intoDir {
			_, base := vostpath.Split(src)
			dstPath = vostpath.Join(dstNorm, base)
		} else {
			dstPath = dstNorm
		}
		if src == dstPath {
			return nil, voserr.InvalidArgument("move source and destination are the same path")
		}

		isDir, err := s.IsDir(src)
		if err != nil {
			return nil, err
		}
		if isDir {
			if !recursive {
				return nil, voserr.IsDirectory(src)
			}
			leaves, err := leavesUnder(s.h.Store, root, src)
			if err != nil {
				return nil, err
			}
			for _, leaf := range leaves {
				rel := strings.TrimPrefix(leaf.path, src+"/")
				destFile := vostpath.Join(dstPath, rel)
				content, err := readBlobByHash(s.h.Store, leaf.hash)
				if err != nil {
					return nil, err
				}
				writes[destFile] = tree.WriteOp{Content: content, Mode: leaf.mode}
				removes[leaf.path] = struct{}{}
				cs.Add(destFile, changeset.Add)
				cs.Add(leaf.path, changeset.Delete)
			}
		} else {
			content, mode, err := tree.ReadBlobAt(s.h.Store, root, src)
			if err != nil {
				return nil, err
			}
			writes[dstPath] = tree.WriteOp{Content: content, Mode: mode}
			removes[src] = struct{}{}
			cs.Add(dstPath, changeset.Add)
			cs.Add(src, changeset.Delete)
		}
	}

	return commitChange(s, writes, removes, message, "move", cs, dryRun)
}

// CopyFromRef copies files from other (a snapshot in the same repository)
// under srcPath into this snapshot under dstPath. Entries
// present in other but absent here become adds; entries differing become
// updates; when delete is true, entries present here but absent in other
// are removed. A source identical to the destination is a no-op.
func (s *Snapshot) CopyFromRef(other *Snapshot, srcPath, dstPath string, del, dryRun bool, message string) (*Snapshot, error) {
	if !s.writable {
		return nil, voserr.PermissionDenied("derive operation on a read-only snapshot")
	}
	if other.h.Store != s.h.Store {
		return nil, voserr.InvalidArgument("copy_from_ref requires snapshots from the same repository")
	}
	srcPath, err := vostpath.Normalize(srcPath)
	if err != nil {
		return nil, err
	}
	dstPath, err = vostpath.Normalize(dstPath)
	if err != nil {
		return nil, err
	}

	otherRoot, err := other.TreeHash()
	if err != nil {
		return nil, err
	}
	ourRoot, err := s.TreeHash()
	if err != nil {
		return nil, err
	}

	srcLeaves, err := leavesUnder(other.h.Store, otherRoot, srcPath)
	if err != nil {
		return nil, err
	}
	dstLeaves, err := leavesUnder(s.h.Store, ourRoot, dstPath)
	if err != nil {
		if !voserr.IsNotFound(err) {
			return nil, err
		}
		dstLeaves = nil
	}

	relOf := func(base, full string) string {
		if base == vostpath.Root {
			return full
		}
		return strings.TrimPrefix(full, base+"/")
	}

	srcByRel := map[string]leafEntry{}
	for _, e := range srcLeaves {
		srcByRel[relOf(srcPath, e.path)] = e
	}
	dstByRel := map[string]leafEntry{}
	for _, e := range dstLeaves {
		dstByRel[relOf(dstPath, e.path)] = e
	}

	writes := map[string]tree.WriteOp{}
	removes := map[string]struct{}{}
	cs := &changeset.Set{}

	for rel, se := range srcByRel {
		destFull := vostpath.Join(dstPath, rel)
		if de, ok := dstByRel[rel]; ok && de.hash == se.hash && de.mode == se.mode {
			continue
		}
		content, err := readBlobByHash(other.h.Store, se.hash)
		if err != nil {
			return nil, err
		}
		writes[destFull] = tree.WriteOp{Content: content, Mode: se.mode}
		if _, ok := dstByRel[rel]; ok {
			cs.Add(destFull, changeset.Update)
		} else {
			cs.Add(destFull, changeset.Add)
		}
	}
	if del {
		for rel := range dstByRel {
			if _, ok := srcByRel[rel]; !ok {
				destFull := vostpath.Join(dstPath, rel)
				removes[destFull] = struct{}{}
				cs.Add(destFull, changeset.Delete)
			}
		}
	}

	return commitChange(s, writes, removes, message, "copy_from_ref", cs, dryRun)
}
