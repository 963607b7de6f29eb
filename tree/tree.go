// Package tree implements the tree engine: incremental root-tree
// rebuilding from a parent tree plus a set of writes
// and removes, preserving structural sharing at every unchanged subtree,
// plus the read-side helpers that walk a root tree OID by path.
package tree

import (
	"sort"
	"strings"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/voserr"
	"github.com/vost-dev/vost/vostpath"
)

// WriteOp is one entry of the writes map passed to RebuildTree: new
// content plus the file mode it should carry. Mode must be
// one of object.Regular, object.Executable, or object.Symlink — never
// object.Dir, which tree.go manufactures itself for subtrees.
type WriteOp struct {
	Content []byte
	Mode    object.FileMode
}

// RebuildTree rebuilds a root tree from parent (nil for an empty starting
// tree) plus writes and removes, both keyed by normalized non-root path.
// It returns the parent OID unchanged when the rebuild is
// a no-op: empty writes and removes, or writes whose content already
// matches what's there.
func RebuildTree(store *odb.Store, parent *hash.Hash, writes map[string]WriteOp, removes map[string]struct{}) (hash.Hash, error) {
	if len(writes) == 0 && len(removes) == 0 {
		if parent != nil {
			return *parent, nil
		}
		return writeTree(store, nil)
	}
	return rebuild(store, parent, writes, removes)
}

// group collects, for one first-path-segment, the changes that target it
// directly (tail == "") and the changes that target something beneath it
// (tail != "", handed down to the recursive call for that subtree).
type group struct {
	writeHere  *WriteOp
	removeHere bool
	subWrites  map[string]WriteOp
	subRemoves map[string]struct{}
}

func rebuild(store *odb.Store, parent *hash.Hash, writes map[string]WriteOp, removes map[string]struct{}) (hash.Hash, error) {
	parentTree, err := loadTree(store, parent)
	if err != nil {
		return hash.Hash{}, err
	}

	groups := map[string]*group{}
	get := func(name string) *group {
		g, ok := groups[name]
		if !ok {
			g = &group{subWrites: map[string]WriteOp{}, subRemoves: map[string]struct{}{}}
			groups[name] = g
		}
		return g
	}
	for path, op := range writes {
		head, tail := splitFirst(path)
		g := get(head)
		if tail == "" {
			opCopy := op
			g.writeHere = &opCopy
		} else {
			g.subWrites[tail] = op
		}
	}
	for path := range removes {
		head, tail := splitFirst(path)
		g := get(head)
		if tail == "" {
			// Remove-then-write at the same path yields the write.
			if g.writeHere == nil {
				g.removeHere = true
			}
		} else {
			g.subRemoves[tail] = struct{}{}
		}
	}

	newEntries := make([]object.TreeEntry, 0, len(parentTree.Entries))
	touched := map[string]bool{}
	for name := range groups {
		touched[name] = true
	}
	for _, e := range parentTree.Entries {
		if !touched[e.Name] {
			newEntries = append(newEntries, e)
		}
	}

	for name, g := range groups {
		existing, hadExisting := parentTree.Entry(name)

		switch {
		case g.writeHere != nil:
			blobHash, err := store.Write(&object.Blob{Content: g.writeHere.Content})
			if err != nil {
				return hash.Hash{}, err
			}
			newEntries = append(newEntries, object.TreeEntry{Name: name, Mode: g.writeHere.Mode, Hash: blobHash})
			continue
		case g.removeHere:
			// Entry dropped entirely; nothing to append, and any
			// subWrites/subRemoves on the same key would be impossible
			// here since removeHere is only set when there was no direct
			// write and no deeper path can coexist with a bare remove of
			// the same full path in a well-formed writes/removes map.
			continue
		}

		var subParent *hash.Hash
		if hadExisting && existing.Mode.IsDir() {
			h := existing.Hash
			subParent = &h
		}
		// A blob-or-absent entry being written into becomes a fresh tree
		// (writing a/b when a is currently a blob replaces a with a tree);
		// subParent stays nil in that case.

		childOID, err := rebuild(store, subParent, g.subWrites, g.subRemoves)
		if err != nil {
			return hash.Hash{}, err
		}
		childTree, err := loadTree(store, &childOID)
		if err != nil {
			return hash.Hash{}, err
		}
		if len(childTree.Entries) == 0 {
			// Prune: empty trees are never persisted.
			continue
		}
		newEntries = append(newEntries, object.TreeEntry{Name: name, Mode: object.Dir, Hash: childOID})
	}

	newTree := &object.Tree{Entries: newEntries}
	newTree.Sort()
	if parent != nil && newTree.Equal(parentTree) {
		return *parent, nil
	}
	return store.Write(newTree)
}

// splitFirst splits a normalized non-root path into its first segment and
// the remaining tail (empty if path is exactly one segment).
func splitFirst(path string) (head, tail string) {
	head, tail, _ = strings.Cut(path, "/")
	return head, tail
}

func loadTree(store *odb.Store, oid *hash.Hash) (*object.Tree, error) {
	if oid == nil {
		return &object.Tree{}, nil
	}
	var t object.Tree
	if err := store.Read(*oid, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func writeTree(store *odb.Store, entries []object.TreeEntry) (hash.Hash, error) {
	t := &object.Tree{Entries: entries}
	t.Sort()
	return store.Write(t)
}

// resolve walks root by normalized path, returning the entry's mode and
// OID. The root itself (vostpath.Root) resolves to (object.Dir, root).
func resolve(store *odb.Store, root hash.Hash, path string) (object.FileMode, hash.Hash, error) {
	if path == vostpath.Root {
		return object.Dir, root, nil
	}
	cur := root
	segments := vostpath.Segments(path)
	for i, seg := range segments {
		t, err := loadTree(store, &cur)
		if err != nil {
			return 0, hash.Hash{}, err
		}
		e, ok := t.Entry(seg)
		if !ok {
			return 0, hash.Hash{}, voserr.NotFound(path)
		}
		if i < len(segments)-1 && !e.Mode.IsDir() {
			return 0, hash.Hash{}, voserr.NotDirectory(path)
		}
		cur = e.Hash
		if i == len(segments)-1 {
			return e.Mode, e.Hash, nil
		}
	}
	return object.Dir, cur, nil
}

// ExistsAt reports whether path exists under root.
func ExistsAt(store *odb.Store, root hash.Hash, path string) (bool, error) {
	_, _, err := resolve(store, root, path)
	if err != nil {
		if voserr.IsNotFound(err) || voserr.IsNotDirectory(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadBlobAt reads the full content of the blob or symlink at path under
// root.
func ReadBlobAt(store *odb.Store, root hash.Hash, path string) ([]byte, object.FileMode, error) {
	mode, h, err := resolve(store, root, path)
	if err != nil {
		return nil, 0, err
	}
	if mode.IsDir() {
		return nil, 0, voserr.IsDirectory(path)
	}
	var b object.Blob
	if err := store.Read(h, &b); err != nil {
		return nil, 0, err
	}
	return b.Content, mode, nil
}

// Entry is one directory listing row.
type Entry struct {
	Name string
	Mode object.FileMode
	Hash hash.Hash
}

// ListTreeAt lists the immediate children of path (vostpath.Root for the
// whole tree), sorted by name.
func ListTreeAt(store *odb.Store, root hash.Hash, path string) ([]Entry, error) {
	mode, h, err := resolve(store, root, path)
	if err != nil {
		return nil, err
	}
	if !mode.IsDir() {
		return nil, voserr.NotDirectory(path)
	}
	t, err := loadTree(store, &h)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, Entry{Name: e.Name, Mode: e.Mode, Hash: e.Hash})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// WalkEntry is one post-order walk step: dirpath plus the names of its
// subdirectories and regular/symlink files, as a "(dirpath, subdirs,
// files)" triple.
type WalkEntry struct {
	Dir     string
	Subdirs []string
	Files   []string
}

// WalkTree performs a post-order traversal of path (vostpath.Root for the
// whole tree) under root, invoking visit once per directory (including
// path itself) after all of its descendants have been visited.
func WalkTree(store *odb.Store, root hash.Hash, path string, visit func(WalkEntry) error) error {
	entries, err := ListTreeAt(store, root, path)
	if err != nil {
		return err
	}
	var subdirs, files []string
	for _, e := range entries {
		child := vostpath.Join(path, e.Name)
		if e.Mode.IsDir() {
			subdirs = append(subdirs, e.Name)
			if err := WalkTree(store, root, child, visit); err != nil {
				return err
			}
		} else {
			files = append(files, e.Name)
		}
	}
	return visit(WalkEntry{Dir: path, Subdirs: subdirs, Files: files})
}
