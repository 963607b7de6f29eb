package pack

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
)

// packObjType is the 3-bit type tag carried in a packed object's header.
type packObjType uint8

const (
	typeCommit   packObjType = 1
	typeTree     packObjType = 2
	typeBlob     packObjType = 3
	typeTag      packObjType = 4
	typeOfsDelta packObjType = 6
	typeRefDelta packObjType = 7
)

func (t packObjType) objectType() (object.Type, bool) {
	switch t {
	case typeCommit:
		return object.CommitType, true
	case typeTree:
		return object.TreeType, true
	case typeBlob:
		return object.BlobType, true
	case typeTag:
		return object.TagType, true
	default:
		return "", false
	}
}

// Pack is one opened packfile paired with its index, supporting random
// object lookup by OID, following the git pack header-varint scheme and
// the OFS_DELTA/REF_DELTA chain-walk pattern used to resolve delta
// objects.
type Pack struct {
	path string
	f    *os.File
	idx  *Index
}

// Open opens the packfile at packPath using the already-decoded index idx.
func Open(packPath string, idx *Index) (*Pack, error) {
	f, err := os.Open(packPath)
	if err != nil {
		return nil, err
	}
	return &Pack{path: packPath, f: f, idx: idx}, nil
}

// Close releases the underlying file handle.
func (p *Pack) Close() error { return p.f.Close() }

// Path returns the on-disk path of the packfile.
func (p *Pack) Path() string { return p.path }

// Index returns the pack's parsed index, for callers (the sizer) that
// need the offset of an object without materializing it.
func (p *Pack) Index() *Index { return p.idx }

// Has reports whether h is present in this pack without reading it.
func (p *Pack) Has(h hash.Hash) bool {
	_, ok := p.idx.Offset(h)
	return ok
}

// Offset returns h's byte offset into the packfile, if present.
func (p *Pack) Offset(h hash.Hash) (int64, bool) {
	off, ok := p.idx.Offset(h)
	return int64(off), ok
}

// Header reads the type and uncompressed size of the object at offset
// without resolving any delta chain. For a delta object, the size returned
// is the delta's own target size (only meaningful after resolution); the
// caller should use this only for non-delta objects and fall back to
// Object for anything else.
func (p *Pack) Header(offset int64) (object.Type, int64, bool, error) {
	typ, size, _, err := p.readObjHeader(offset)
	if err != nil {
		return "", 0, false, err
	}
	ty, ok := typ.objectType()
	return ty, size, ok, nil
}

// Object fully materializes the object named h, resolving any delta chain.
func (p *Pack) Object(h hash.Hash) (object.Type, []byte, error) {
	offset, ok := p.idx.Offset(h)
	if !ok {
		return "", nil, fmt.Errorf("pack: object %s not found", h)
	}
	return p.objectAt(int64(offset), 0)
}

const maxDeltaDepth = 64

func (p *Pack) objectAt(offset int64, depth int) (object.Type, []byte, error) {
	if depth > maxDeltaDepth {
		return "", nil, fmt.Errorf("pack: delta chain too deep at offset %d", offset)
	}

	typ, size, dataOffset, err := p.readObjHeader(offset)
	if err != nil {
		return "", nil, err
	}

	if ty, ok := typ.objectType(); ok {
		body, err := p.inflateAt(dataOffset, size)
		if err != nil {
			return "", nil, err
		}
		return ty, body, nil
	}

	switch typ {
	case typeOfsDelta:
		baseRelOffset, n, err := readOfsDeltaBase(p.f, dataOffset)
		if err != nil {
			return "", nil, err
		}
		baseOffset := offset - baseRelOffset
		baseType, baseBody, err := p.objectAt(baseOffset, depth+1)
		if err != nil {
			return "", nil, err
		}
		deltaBody, err := p.inflateAt(dataOffset+n, size)
		if err != nil {
			return "", nil, err
		}
		out, err := applyDelta(baseBody, deltaBody)
		return baseType, out, err
	case typeRefDelta:
		raw := make([]byte, hash.Size)
		if _, err := p.f.ReadAt(raw, dataOffset); err != nil {
			return "", nil, err
		}
		baseHash, err := hash.FromBytes(raw)
		if err != nil {
			return "", nil, err
		}
		baseType, baseBody, err := p.Object(baseHash)
		if err != nil {
			return "", nil, err
		}
		deltaBody, err := p.inflateAt(dataOffset+hash.Size, size)
		if err != nil {
			return "", nil, err
		}
		out, err := applyDelta(baseBody, deltaBody)
		return baseType, out, err
	default:
		return "", nil, fmt.Errorf("pack: unsupported packed object type %d", typ)
	}
}

// readObjHeader parses the variable-length type+size header at offset,
// returning the type, the *uncompressed target* size the header declares,
// and the file offset immediately following the header (where the
// zlib-compressed payload, or for deltas the base reference, begins).
func (p *Pack) readObjHeader(offset int64) (packObjType, int64, int64, error) {
	var b [1]byte
	cur := offset
	if _, err := p.f.ReadAt(b[:], cur); err != nil {
		return 0, 0, 0, err
	}
	cur++

	typ := packObjType((b[0] >> 4) & 0x7)
	size := int64(b[0] & 0x0f)
	shift := uint(4)
	for b[0]&0x80 != 0 {
		if _, err := p.f.ReadAt(b[:], cur); err != nil {
			return 0, 0, 0, err
		}
		cur++
		size |= int64(b[0]&0x7f) << shift
		shift += 7
	}
	return typ, size, cur, nil
}

// readOfsDeltaBase parses an OFS_DELTA's backwards offset encoding: each
// byte contributes 7 bits, continuation in the high bit, with the "+1"
// adjustment git's format requires between continuation bytes.
func readOfsDeltaBase(f *os.File, offset int64) (rel int64, consumed int64, err error) {
	var b [1]byte
	cur := offset
	if _, err = f.ReadAt(b[:], cur); err != nil {
		return 0, 0, err
	}
	cur++
	rel = int64(b[0] & 0x7f)
	for b[0]&0x80 != 0 {
		if _, err = f.ReadAt(b[:], cur); err != nil {
			return 0, 0, err
		}
		cur++
		rel = ((rel + 1) << 7) | int64(b[0]&0x7f)
	}
	return rel, cur - offset, nil
}

func (p *Pack) inflateAt(offset int64, size int64) ([]byte, error) {
	zr, err := zlib.NewReader(&sectionAt{f: p.f, offset: offset})
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	body := make([]byte, size)
	if _, err := io.ReadFull(zr, body); err != nil {
		return nil, err
	}
	return body, nil
}

// sectionAt adapts os.File.ReadAt into a streaming io.Reader starting at a
// fixed offset, advancing as it is read — what zlib.NewReader needs since
// it only takes an io.Reader.
type sectionAt struct {
	f      *os.File
	offset int64
}

func (s *sectionAt) Read(p []byte) (int, error) {
	n, err := s.f.ReadAt(p, s.offset)
	s.offset += int64(n)
	return n, err
}

// ReadHeader parses a packfile's 12-byte header ("PACK", version, count).
func ReadHeader(r io.Reader) (version uint32, count uint32, err error) {
	br := bufio.NewReader(r)
	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return 0, 0, err
	}
	if string(magic[:]) != "PACK" {
		return 0, 0, fmt.Errorf("pack: bad packfile signature %q", magic)
	}
	var rest [8]byte
	if _, err := io.ReadFull(br, rest[:]); err != nil {
		return 0, 0, err
	}
	return binary.BigEndian.Uint32(rest[:4]), binary.BigEndian.Uint32(rest[4:]), nil
}
