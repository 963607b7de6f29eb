package mirror

import (
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/packfile"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
)

// encodePack writes a packfile containing exactly oids, read from store,
// staging them through an in-memory go-git storer the way a real git
// client builds a push payload, reusing go-git/go-git/v5's
// packfile.Encoder rather than hand-rolling pack framing.
func encodePack(w io.Writer, store *odb.Store, oids []hash.Hash) error {
	mem := memory.NewStorage()
	hashes := make([]plumbing.Hash, 0, len(oids))
	for _, h := range oids {
		typ, body, err := store.ReadRaw(h)
		if err != nil {
			return err
		}
		eo := mem.NewEncodedObject()
		eo.SetType(toPlumbingType(typ))
		eo.SetSize(int64(len(body)))
		ow, err := eo.Writer()
		if err != nil {
			return err
		}
		if _, err := ow.Write(body); err != nil {
			_ = ow.Close()
			return err
		}
		if err := ow.Close(); err != nil {
			return err
		}
		if _, err := mem.SetEncodedObject(eo); err != nil {
			return err
		}
		hashes = append(hashes, plumbing.NewHash(h.String()))
	}
	enc := packfile.NewEncoder(w, mem, false)
	_, err := enc.Encode(hashes, 10)
	return err
}

// decodePack reads a packfile from r and writes every object it contains
// into dst, the receiving half of a push or the result of a fetch.
func decodePack(r io.Reader, dst *odb.Store) error {
	mem := memory.NewStorage()
	if err := packfile.UpdateObjectStorage(mem, r); err != nil {
		return err
	}
	iter, err := mem.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return err
	}
	return iter.ForEach(func(eo plumbing.EncodedObject) error {
		obj, err := fromPlumbing(eo)
		if err != nil {
			return err
		}
		_, err = dst.Write(obj)
		return err
	})
}

func toPlumbingType(t object.Type) plumbing.ObjectType {
	switch t {
	case object.BlobType:
		return plumbing.BlobObject
	case object.TreeType:
		return plumbing.TreeObject
	case object.CommitType:
		return plumbing.CommitObject
	case object.TagType:
		return plumbing.TagObject
	default:
		return plumbing.InvalidObject
	}
}

func fromPlumbing(eo plumbing.EncodedObject) (object.Object, error) {
	r, err := eo.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var obj object.Object
	switch eo.Type() {
	case plumbing.BlobObject:
		obj = &object.Blob{}
	case plumbing.TreeObject:
		obj = &object.Tree{}
	case plumbing.CommitObject:
		obj = &object.Commit{}
	case plumbing.TagObject:
		obj = &object.Tag{}
	default:
		return nil, fmt.Errorf("mirror: unsupported packed object type %v", eo.Type())
	}
	if err := obj.Decode(r, eo.Size()); err != nil {
		return nil, err
	}
	return obj, nil
}
