// Package fs implements the snapshot filesystem: an immutable,
// path-addressable view over one commit, with history
// navigation and non-mutating derivations. Derive operations produce new
// snapshots by committing against the bound branch; they never mutate the
// snapshot they are called on.
package fs

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/refstore"
	"github.com/vost-dev/vost/sizer"
)

// Handle is the shared repo state every Snapshot carries a reference to:
// the object store, the ref store, the on-disk repo path (for the
// reflock-guarded CAS), a signature factory for new commits, and an
// injected logger. Snapshots never own a Handle, only reference it — the
// repo package owns its lifetime.
type Handle struct {
	Path   string // bare repository directory, for reflock
	Store  *odb.Store
	Refs   refstore.Backend
	Sizer  *sizer.Sizer
	Author object.Signature // template; When is stamped fresh per commit
	Log    *logrus.Logger
}

// NewHandle returns a Handle with a discard logger if log is nil, the
// nil-safe-logger convention this codebase uses throughout, so library
// consumers are never forced onto process-wide logging.
func NewHandle(path string, store *odb.Store, refs refstore.Backend, author object.Signature, log *logrus.Logger) *Handle {
	if log == nil {
		log = logrus.New()
		log.SetOutput(discardWriter{})
	}
	return &Handle{Path: path, Store: store, Refs: refs, Sizer: sizer.New(store), Author: author, Log: log}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// signatureNow stamps h.Author with the current time.
func (h *Handle) signatureNow() object.Signature {
	sig := h.Author
	sig.When = time.Now()
	return sig
}

// readCommit decodes the commit object named oid.
func (h *Handle) readCommit(oid hash.Hash) (*object.Commit, error) {
	var c object.Commit
	if err := h.Store.Read(oid, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
