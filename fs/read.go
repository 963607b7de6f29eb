package fs

import (
	"time"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/tree"
	"github.com/vost-dev/vost/voserr"
	"github.com/vost-dev/vost/vostpath"
)

// Read returns the bytes of the file at path in [offset, offset+size), or
// the remainder of the file if size < 0 ("missing size" means to end).
// offset and size are non-negative (size may be -1); a
// read past the end of the file returns a short (possibly empty) result.
func (s *Snapshot) Read(path string, offset, size int64) ([]byte, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return nil, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return nil, err
	}
	content, _, err := tree.ReadBlobAt(s.h.Store, root, p)
	if err != nil {
		return nil, err
	}
	return sliceRange(content, offset, size), nil
}

func sliceRange(content []byte, offset, size int64) []byte {
	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(content)) {
		return []byte{}
	}
	end := int64(len(content))
	if size >= 0 && offset+size < end {
		end = offset + size
	}
	out := make([]byte, end-offset)
	copy(out, content[offset:end])
	return out
}

// ReadByHash reads an arbitrary blob by OID, bypassing path resolution.
func (s *Snapshot) ReadByHash(oid hash.Hash, offset, size int64) ([]byte, error) {
	var b object.Blob
	if err := s.h.Store.Read(oid, &b); err != nil {
		return nil, err
	}
	return sliceRange(b.Content, offset, size), nil
}

// Exists reports whether path exists.
func (s *Snapshot) Exists(path string) (bool, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return false, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return false, err
	}
	return tree.ExistsAt(s.h.Store, root, p)
}

// IsDir reports whether path exists and is a directory.
func (s *Snapshot) IsDir(path string) (bool, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return false, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return false, err
	}
	if _, err := tree.ListTreeAt(s.h.Store, root, p); err != nil {
		if voserr.IsNotDirectory(err) || voserr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Ls returns the sorted names of path's immediate children (vostpath.Root
// for the snapshot root).
func (s *Snapshot) Ls(path string) ([]string, error) {
	entries, err := s.Listdir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// Listdir returns path's immediate children as typed entries.
func (s *Snapshot) Listdir(path string) ([]tree.Entry, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return nil, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return nil, err
	}
	return tree.ListTreeAt(s.h.Store, root, p)
}

// Readlink returns a symlink's target.
func (s *Snapshot) Readlink(path string) (string, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return "", err
	}
	root, err := s.TreeHash()
	if err != nil {
		return "", err
	}
	content, mode, err := tree.ReadBlobAt(s.h.Store, root, p)
	if err != nil {
		return "", err
	}
	if !mode.IsLink() {
		return "", voserr.NotLink(path)
	}
	return string(content), nil
}

// ObjectHash returns the OID of the object at path (a blob, symlink blob,
// or tree), without reading its content.
func (s *Snapshot) ObjectHash(path string) (hash.Hash, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return hash.Hash{}, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return hash.Hash{}, err
	}
	if p == vostpath.Root {
		return root, nil
	}
	entries, err := tree.ListTreeAt(s.h.Store, root, parentOf(p))
	if err != nil {
		if voserr.IsNotDirectory(err) {
			return hash.Hash{}, voserr.NotFound(path)
		}
		return hash.Hash{}, err
	}
	_, base := vostpath.Split(p)
	for _, e := range entries {
		if e.Name == base {
			return e.Hash, nil
		}
	}
	return hash.Hash{}, voserr.NotFound(path)
}

func parentOf(p string) string {
	dir, _ := vostpath.Split(p)
	return dir
}

// Size returns the byte size of the file at path: a symlink's size is the
// length of its target string; a regular/executable file's size comes
// from the sizer probe rather than a full read.
func (s *Snapshot) Size(path string) (int64, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return 0, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return 0, err
	}
	if p == vostpath.Root {
		return 0, voserr.IsDirectory(path)
	}
	entries, err := tree.ListTreeAt(s.h.Store, root, parentOf(p))
	if err != nil {
		// A parent segment that is a regular file means the path cannot
		// exist, same as Stat reports it.
		if voserr.IsNotDirectory(err) {
			return 0, voserr.NotFound(path)
		}
		return 0, err
	}
	_, base := vostpath.Split(p)
	for _, e := range entries {
		if e.Name == base {
			if e.Mode.IsDir() {
				return 0, voserr.IsDirectory(path)
			}
			return s.h.Sizer.Size(e.Hash)
		}
	}
	return 0, voserr.NotFound(path)
}

// StatResult is the metadata table returned from Stat.
type StatResult struct {
	Mode     object.FileMode
	FileType object.Type
	Size     int64
	Hash     hash.Hash
	NLink    int
	Mtime    time.Time
}

// Stat returns metadata for path (vostpath.Root for the snapshot root).
// Mtime is always the pinned commit's timestamp: all paths share the
// commit's timestamp.
func (s *Snapshot) Stat(path string) (StatResult, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return StatResult{}, err
	}
	c, err := s.commitObject()
	if err != nil {
		return StatResult{}, err
	}
	if p == vostpath.Root {
		root, err := s.TreeHash()
		if err != nil {
			return StatResult{}, err
		}
		entries, err := tree.ListTreeAt(s.h.Store, root, vostpath.Root)
		if err != nil {
			return StatResult{}, err
		}
		return StatResult{
			Mode: object.Dir, FileType: object.TreeType, Hash: root,
			NLink: 2 + countSubdirs(entries), Mtime: c.Committer.When,
		}, nil
	}

	entries, err := tree.ListTreeAt(s.h.Store, c.Tree, parentOf(p))
	if err != nil {
		if voserr.IsNotDirectory(err) {
			return StatResult{}, voserr.NotFound(path)
		}
		return StatResult{}, err
	}
	_, base := vostpath.Split(p)
	for _, e := range entries {
		if e.Name != base {
			continue
		}
		if e.Mode.IsDir() {
			children, err := tree.ListTreeAt(s.h.Store, c.Tree, p)
			if err != nil {
				return StatResult{}, err
			}
			return StatResult{
				Mode: object.Dir, FileType: object.TreeType, Hash: e.Hash,
				NLink: 2 + countSubdirs(children), Mtime: c.Committer.When,
			}, nil
		}
		size, typ, err := statLeaf(s, e)
		if err != nil {
			return StatResult{}, err
		}
		return StatResult{Mode: e.Mode, FileType: typ, Size: size, Hash: e.Hash, NLink: 1, Mtime: c.Committer.When}, nil
	}
	return StatResult{}, voserr.NotFound(path)
}

func statLeaf(s *Snapshot, e tree.Entry) (int64, object.Type, error) {
	if e.Mode.IsLink() {
		var b object.Blob
		if err := s.h.Store.Read(e.Hash, &b); err != nil {
			return 0, "", err
		}
		return int64(len(b.Content)), object.BlobType, nil
	}
	size, err := s.h.Sizer.Size(e.Hash)
	if err != nil {
		return 0, "", err
	}
	return size, object.BlobType, nil
}

func countSubdirs(entries []tree.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Mode.IsDir() {
			n++
		}
	}
	return n
}

// Walk post-order walks path (vostpath.Root for the whole tree), collecting
// every step before it returns; the iterator then yields them in order.
func (s *Snapshot) Walk(path string) (*WalkIter, error) {
	p, err := vostpath.Normalize(path)
	if err != nil {
		return nil, err
	}
	root, err := s.TreeHash()
	if err != nil {
		return nil, err
	}
	var entries []tree.WalkEntry
	if err := tree.WalkTree(s.h.Store, root, p, func(e tree.WalkEntry) error {
		entries = append(entries, e)
		return nil
	}); err != nil {
		return nil, err
	}
	return &WalkIter{entries: entries}, nil
}

// WalkIter is a restartable, finite iterator over a walk's post-order
// (dirpath, subdirs, files) triples.
type WalkIter struct {
	entries []tree.WalkEntry
	pos     int
}

// Next returns the next walk step, or (tree.WalkEntry{}, false) once
// exhausted.
func (it *WalkIter) Next() (tree.WalkEntry, bool) {
	if it.pos >= len(it.entries) {
		return tree.WalkEntry{}, false
	}
	e := it.entries[it.pos]
	it.pos++
	return e, true
}
