// Package odb is the object store adaptor: read/write of blobs, trees,
// commits, and tags, transparently falling
// back from loose objects to enumerated packs.
package odb

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb/pack"
)

// Store is a filesystem-backed object database rooted at a bare
// repository's "objects" directory: loose objects under objects/xx/yyyy...
// and, if present, packs under objects/pack/*.{idx,pack}.
type Store struct {
	root string

	mu    sync.Mutex
	packs []*pack.Pack // lazily opened, closed together on Close
}

// Open returns a Store rooted at objectsDir (typically "<repo>/objects").
func Open(objectsDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(objectsDir, "pack"), 0o755); err != nil {
		return nil, err
	}
	return &Store{root: objectsDir}, nil
}

// Close releases any open pack file handles.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, p := range s.packs {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.packs = nil
	return firstErr
}

func (s *Store) loosePath(h hash.Hash) string {
	hex := h.String()
	return filepath.Join(s.root, hex[:2], hex[2:])
}

// Has reports whether h is present as either a loose or a packed object.
func (s *Store) Has(h hash.Hash) bool {
	if _, err := os.Stat(s.loosePath(h)); err == nil {
		return true
	}
	packs, err := s.openPacks()
	if err != nil {
		return false
	}
	for _, p := range packs {
		if p.Has(h) {
			return true
		}
	}
	return false
}

// Write encodes o, stores it (loose, zlib-compressed), and returns its OID.
// Writing an object that already exists is a no-op beyond the hash/encode
// work, matching git's content-addressed dedup.
func (s *Store) Write(o object.Object) (hash.Hash, error) {
	h, body, err := object.Encode(o)
	if err != nil {
		return hash.Hash{}, err
	}
	if s.Has(h) {
		return h, nil
	}
	if err := s.writeLoose(h, o.Type(), body); err != nil {
		return hash.Hash{}, err
	}
	return h, nil
}

func (s *Store) writeLoose(h hash.Hash, typ object.Type, body []byte) error {
	path := s.loosePath(h)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-obj-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	zw := zlib.NewWriter(tmp)
	header := fmt.Sprintf("%s %d\x00", typ, len(body))
	if _, err := zw.Write([]byte(header)); err != nil {
		return err
	}
	if _, err := zw.Write(body); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Read decodes the object named h into into, which must be a pointer to
// one of Blob, Tree, Commit, or Tag.
func (s *Store) Read(h hash.Hash, into object.Object) error {
	typ, body, err := s.readRaw(h)
	if err != nil {
		return err
	}
	if typ != into.Type() {
		return &object.UnexpectedType{Got: typ, Wanted: into.Type()}
	}
	return into.Decode(bytes.NewReader(body), int64(len(body)))
}

// Type returns the object kind of h without decoding its body.
func (s *Store) Type(h hash.Hash) (object.Type, error) {
	typ, _, err := s.readRaw(h)
	return typ, err
}

// ReadRaw returns h's type and undecoded body bytes, the form the mirror
// package's packfile codec needs to re-frame an object for transport
// without round-tripping it through a typed struct first.
func (s *Store) ReadRaw(h hash.Hash) (object.Type, []byte, error) {
	return s.readRaw(h)
}

func (s *Store) readRaw(h hash.Hash) (object.Type, []byte, error) {
	f, err := os.Open(s.loosePath(h))
	if err == nil {
		defer f.Close()
		return decodeLoose(f)
	}
	if !os.IsNotExist(err) {
		return "", nil, err
	}

	packs, perr := s.openPacks()
	if perr != nil {
		return "", nil, perr
	}
	for _, p := range packs {
		if p.Has(h) {
			return p.Object(h)
		}
	}
	return "", nil, fmt.Errorf("odb: object %s not found", h)
}

// LoosePath returns the on-disk path a loose object named h would have,
// whether or not it currently exists. The sizer uses this to peek at an
// object's header without asking the store to decompress the whole body.
func (s *Store) LoosePath(h hash.Hash) string {
	return s.loosePath(h)
}

// Locate reports where h lives: as a loose file, or at an offset within one
// of the enumerated packs. Used by the sizer to probe an object's declared
// size without materializing its body.
func (s *Store) Locate(h hash.Hash) (p *pack.Pack, offset int64, found bool, err error) {
	if _, err := os.Stat(s.loosePath(h)); err == nil {
		return nil, 0, true, nil
	}
	packs, err := s.openPacks()
	if err != nil {
		return nil, 0, false, err
	}
	for _, pk := range packs {
		if off, ok := pk.Offset(h); ok {
			return pk, off, true, nil
		}
	}
	return nil, 0, false, nil
}

func decodeLoose(r io.Reader) (object.Type, []byte, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return "", nil, err
	}
	defer zr.Close()

	all, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, err
	}
	nul := bytes.IndexByte(all, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("odb: malformed loose object header")
	}
	header := string(all[:nul])
	sp := strings.IndexByte(header, ' ')
	if sp < 0 {
		return "", nil, fmt.Errorf("odb: malformed loose object header %q", header)
	}
	typ, err := object.TypeFromString(header[:sp])
	if err != nil {
		return "", nil, err
	}
	return typ, all[nul+1:], nil
}

// openPacks enumerates and lazily opens every pack under objects/pack,
// caching the handles for reuse.
func (s *Store) openPacks() ([]*pack.Pack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.packs != nil {
		return s.packs, nil
	}

	dir := filepath.Join(s.root, "pack")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.packs = []*pack.Pack{}
			return s.packs, nil
		}
		return nil, err
	}

	var packs []*pack.Pack
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".idx") {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ".idx")
		idxFile, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		idx, err := pack.DecodeIndex(idxFile)
		_ = idxFile.Close()
		if err != nil {
			return nil, fmt.Errorf("odb: decoding %s: %w", e.Name(), err)
		}
		p, err := pack.Open(filepath.Join(dir, base+".pack"), idx)
		if err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	s.packs = packs
	return packs, nil
}

// PackPaths lists the .pack files currently enumerated, for diagnostic use.
func (s *Store) PackPaths() ([]string, error) {
	packs, err := s.openPacks()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(packs))
	for _, p := range packs {
		paths = append(paths, p.Path())
	}
	return paths, nil
}
