package refstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/reflock"
	"github.com/vost-dev/vost/voserr"
)

const symrefPrefix = "ref: "

// FilesystemBackend stores each ref as a loose file under the repo
// directory (refs/heads/<name>, refs/tags/<name>, and a top-level HEAD),
// a one-file-per-ref layout, without packed-refs compaction: only the
// logical get/set/delete/CAS contract is required, not an on-disk
// compaction format.
type FilesystemBackend struct {
	root string // repo directory, the parent of "refs/" and "HEAD"
}

// NewFilesystem returns a Backend rooted at the bare repository directory
// root.
func NewFilesystem(root string) *FilesystemBackend {
	return &FilesystemBackend{root: root}
}

func (b *FilesystemBackend) path(name Name) string {
	return filepath.Join(b.root, filepath.FromSlash(string(name)))
}

func (b *FilesystemBackend) Get(name Name) (hash.Hash, bool, error) {
	data, err := os.ReadFile(b.path(name))
	if os.IsNotExist(err) {
		return hash.Hash{}, false, nil
	}
	if err != nil {
		return hash.Hash{}, false, err
	}
	h, ok := parseLooseRef(data)
	if !ok {
		return hash.Hash{}, false, fmt.Errorf("refstore: malformed ref %s", name)
	}
	return h, true, nil
}

func (b *FilesystemBackend) Set(name Name, h hash.Hash) error {
	if err := ValidateName(name.Short()); err != nil {
		return err
	}
	return writeLooseRef(b.path(name), h)
}

func (b *FilesystemBackend) CompareAndSwap(name Name, expectExists bool, expected, next hash.Hash) error {
	return reflock.With(b.root, func() error {
		cur, ok, err := b.Get(name)
		if err != nil {
			return err
		}
		if ok != expectExists || (ok && cur != expected) {
			return voserr.StaleSnapshot(string(name), expected.String(), cur.String())
		}
		return writeLooseRef(b.path(name), next)
	})
}

func (b *FilesystemBackend) Delete(name Name) error {
	err := os.Remove(b.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *FilesystemBackend) List(prefix string) ([]Ref, error) {
	dir := filepath.Join(b.root, filepath.FromSlash(prefix))
	var out []Ref
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, p)
		if err != nil {
			return err
		}
		name := Name(filepath.ToSlash(rel))
		h, ok, err := b.Get(name)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, Ref{Name: name, Target: h})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *FilesystemBackend) HEAD() (Name, bool, error) {
	data, err := os.ReadFile(filepath.Join(b.root, "HEAD"))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	text := strings.TrimSpace(string(data))
	if !strings.HasPrefix(text, symrefPrefix) {
		return "", false, fmt.Errorf("refstore: HEAD is not a symbolic ref (detached HEAD unsupported)")
	}
	target := Name(strings.TrimPrefix(text, symrefPrefix))
	if !target.IsBranch() {
		return "", false, fmt.Errorf("refstore: HEAD target %s is not a branch", target)
	}
	return target, true, nil
}

func (b *FilesystemBackend) SetHEAD(target Name) error {
	if !target.IsBranch() {
		return voserr.InvalidRefName(string(target))
	}
	return reflock.With(b.root, func() error {
		path := filepath.Join(b.root, "HEAD")
		return atomicWrite(path, []byte(symrefPrefix+string(target)+"\n"))
	})
}

func parseLooseRef(data []byte) (hash.Hash, bool) {
	text := strings.TrimSpace(string(data))
	if !hash.Valid(text) {
		return hash.Hash{}, false
	}
	return hash.FromHex(text), true
}

func writeLooseRef(path string, h hash.Hash) error {
	return atomicWrite(path, []byte(h.String()+"\n"))
}

func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-ref-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
