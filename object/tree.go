package object

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vost-dev/vost/hash"
)

// TreeEntry is one (name, mode, child OID) triple, trimmed to the fields
// the git tree wire format actually carries.
type TreeEntry struct {
	Name string
	Mode FileMode
	Hash hash.Hash
}

// Tree is an ordered set of entries, unique by name. Entries
// are always kept sorted in git's tree order (directories compare as if
// name had a trailing '/') so that Encode is deterministic and two equal
// trees always hash identically.
type Tree struct {
	Entries []TreeEntry
}

func (t *Tree) Type() Type { return TreeType }

// sortKey returns the byte string git uses to order a tree entry: the name,
// with a trailing '/' appended for directory entries. This makes "foo" (a
// file) sort before "foo.x" but "foo/" (a directory) sort after "foo.x" —
// git's actual tree ordering, required for two logically-equal trees to
// hash identically regardless of which implementation wrote them.
func sortKey(name string, mode FileMode) string {
	if mode.IsDir() {
		return name + "/"
	}
	return name
}

// Sort orders entries in git's canonical tree order.
func (t *Tree) Sort() {
	sort.Slice(t.Entries, func(i, j int) bool {
		return sortKey(t.Entries[i].Name, t.Entries[i].Mode) < sortKey(t.Entries[j].Name, t.Entries[j].Mode)
	})
}

// Entry returns the entry named name, or false if absent.
func (t *Tree) Entry(name string) (TreeEntry, bool) {
	// Entries are few enough per directory that a linear scan beats
	// maintaining a parallel map.
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// With returns a copy of t with entry replacing any existing entry of the
// same name, or appended if none exists, re-sorted.
func (t *Tree) With(entry TreeEntry) *Tree {
	out := &Tree{Entries: make([]TreeEntry, 0, len(t.Entries)+1)}
	replaced := false
	for _, e := range t.Entries {
		if e.Name == entry.Name {
			out.Entries = append(out.Entries, entry)
			replaced = true
			continue
		}
		out.Entries = append(out.Entries, e)
	}
	if !replaced {
		out.Entries = append(out.Entries, entry)
	}
	out.Sort()
	return out
}

// Without returns a copy of t with the entry named name removed, if present.
func (t *Tree) Without(name string) *Tree {
	out := &Tree{Entries: make([]TreeEntry, 0, len(t.Entries))}
	for _, e := range t.Entries {
		if e.Name != name {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Equal reports whether two trees have identical entries (order-sensitive,
// since both are always kept in canonical order).
func (t *Tree) Equal(other *Tree) bool {
	if len(t.Entries) != len(other.Entries) {
		return false
	}
	for i := range t.Entries {
		a, b := t.Entries[i], other.Entries[i]
		if a.Name != b.Name || a.Mode != b.Mode || a.Hash != b.Hash {
			return false
		}
	}
	return true
}

// Encode writes the canonical git tree body: for each entry (in sort
// order), "<octal mode> <name>\x00<20 raw hash bytes>".
func (t *Tree) Encode(w io.Writer) (int64, error) {
	var n int64
	for _, e := range t.Entries {
		line := fmt.Sprintf("%s %s\x00", strconv.FormatUint(uint64(e.Mode), 8), e.Name)
		wn, err := io.WriteString(w, line)
		n += int64(wn)
		if err != nil {
			return n, err
		}
		hn, err := w.Write(e.Hash.Bytes())
		n += int64(hn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// Decode parses a canonical git tree body of the given size.
func (t *Tree) Decode(r io.Reader, size int64) error {
	br := bufio.NewReader(io.LimitReader(r, size))
	t.Entries = nil
	for {
		modeAndName, err := br.ReadString(0)
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		modeAndName = modeAndName[:len(modeAndName)-1] // drop NUL
		sp := bytes.IndexByte([]byte(modeAndName), ' ')
		if sp < 0 {
			return fmt.Errorf("object: malformed tree entry header %q", modeAndName)
		}
		mode, err := ParseFileMode(modeAndName[:sp])
		if err != nil {
			return err
		}
		name := modeAndName[sp+1:]
		raw := make([]byte, hash.Size)
		if _, err := io.ReadFull(br, raw); err != nil {
			return fmt.Errorf("object: short tree entry hash for %q: %w", name, err)
		}
		h, err := hash.FromBytes(raw)
		if err != nil {
			return err
		}
		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: mode, Hash: h})
	}
	return nil
}
