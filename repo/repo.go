// Package repo is the repo facade: owns the branch and tag ref
// dictionaries and the repo-wide default branch (HEAD), on top of the
// policy-free refstore.Backend. It models branches and tags as an explicit
// Branch-vs-Tag polymorphism: branches are mutable refs producing writable
// snapshots, tags are write-once refs producing read-only ones, and this
// package — not refstore — is what enforces that split.
package repo

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vost-dev/vost/fs"
	"github.com/vost-dev/vost/object"
	"github.com/vost-dev/vost/odb"
	"github.com/vost-dev/vost/refstore"
	"github.com/vost-dev/vost/tree"
	"github.com/vost-dev/vost/voserr"
	"github.com/vost-dev/vost/vostconfig"
)

// Repo is an open bare repository: a Handle (object store + ref store)
// plus the on-disk configuration it was opened with.
type Repo struct {
	*fs.Handle
	Config *vostconfig.Config
}

// Options configures Open.
type Options struct {
	// Branch, if non-empty, is the branch Open ensures exists (creating
	// an empty root commit for it if Create is true and it's missing)
	// and points HEAD at if HEAD is currently dangling.
	Branch string
	// Create creates the repository directory structure if it does not
	// already exist.
	Create bool
	Log    *logrus.Logger
}

// Open opens (and optionally creates) the bare repository at path.
func Open(path string, opts Options) (*Repo, error) {
	if opts.Create {
		if err := initLayout(path); err != nil {
			return nil, err
		}
	}

	cfg, err := vostconfig.Load(filepath.Join(path, "config"))
	if err != nil {
		return nil, err
	}

	store, err := odb.Open(filepath.Join(path, "objects"))
	if err != nil {
		return nil, err
	}
	refs := refstore.NewFilesystem(path)
	author := object.Signature{Name: cfg.User.Name, Email: cfg.User.Email}
	h := fs.NewHandle(path, store, refs, author, opts.Log)

	r := &Repo{Handle: h, Config: cfg}
	if opts.Branch != "" {
		if err := r.ensureBranch(opts.Branch, opts.Create); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Close releases the repo's object store file handles.
func (r *Repo) Close() error {
	return r.Handle.Store.Close()
}

func initLayout(path string) error {
	for _, dir := range []string{"objects/pack", "refs/heads", "refs/tags"} {
		if err := os.MkdirAll(filepath.Join(path, dir), 0o755); err != nil {
			return err
		}
	}
	cfgPath := filepath.Join(path, "config")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := vostconfig.Save(cfgPath, vostconfig.Default()); err != nil {
			return err
		}
	}
	return nil
}

// ensureBranch creates an empty root commit for name if it doesn't exist
// and create is true, and points a dangling HEAD at it.
func (r *Repo) ensureBranch(name string, create bool) error {
	ref := refstore.BranchRef(name)
	_, ok, err := r.Refs.Get(ref)
	if err != nil {
		return err
	}
	if !ok && create {
		emptyRoot, err := tree.RebuildTree(r.Store, nil, nil, nil)
		if err != nil {
			return err
		}
		sig := r.signatureNow()
		commit := &object.Commit{Tree: emptyRoot, Author: sig, Committer: sig, Message: "Initialize repository"}
		oid, err := r.Store.Write(commit)
		if err != nil {
			return err
		}
		if err := r.Refs.Set(ref, oid); err != nil {
			return err
		}
	}
	if _, headSet, err := r.Refs.HEAD(); err != nil {
		return err
	} else if !headSet {
		return r.Refs.SetHEAD(ref)
	}
	return nil
}

func (r *Repo) signatureNow() object.Signature {
	return object.Signature{Name: r.Config.User.Name, Email: r.Config.User.Email, When: time.Now()}
}

// Branch returns a writable snapshot at branch name's current commit.
func (r *Repo) Branch(name string) (*fs.Snapshot, error) {
	return fs.FromBranch(r.Handle, refstore.BranchRef(name))
}

// SetBranch creates or advances branch name to snap's commit. snap must
// belong to this repo.
func (r *Repo) SetBranch(name string, snap *fs.Snapshot) error {
	if snap.Handle() != r.Handle {
		return voserr.InvalidArgument("snapshot belongs to a different repository")
	}
	target := refstore.BranchRef(name)
	cur, ok, err := r.Refs.Get(target)
	if err != nil {
		return err
	}
	if ok {
		return r.Refs.CompareAndSwap(target, true, cur, snap.CommitHash())
	}
	return r.Refs.Set(target, snap.CommitHash())
}

// DeleteBranch removes branch name.
func (r *Repo) DeleteBranch(name string) error {
	return r.Refs.Delete(refstore.BranchRef(name))
}

// ListBranches returns every branch's short name, sorted.
func (r *Repo) ListBranches() ([]string, error) {
	return r.listShortNames("refs/heads")
}

// DefaultBranch returns HEAD's target branch short name, and ok=false if
// HEAD is dangling.
func (r *Repo) DefaultBranch() (string, bool, error) {
	target, ok, err := r.Refs.HEAD()
	if err != nil || !ok {
		return "", ok, err
	}
	return target.Short(), true, nil
}

// SetDefaultBranch points HEAD at branch name.
func (r *Repo) SetDefaultBranch(name string) error {
	return r.Refs.SetHEAD(refstore.BranchRef(name))
}

// Tag returns a read-only snapshot at tag name's commit.
func (r *Repo) Tag(name string) (*fs.Snapshot, error) {
	return fs.FromTag(r.Handle, refstore.TagRef(name))
}

// SetTag creates tag name pointing at snap's commit. Overwriting an
// existing tag fails with voserr.ErrAlreadyExists: tags are write-once.
func (r *Repo) SetTag(name string, snap *fs.Snapshot) error {
	if snap.Handle() != r.Handle {
		return voserr.InvalidArgument("snapshot belongs to a different repository")
	}
	target := refstore.TagRef(name)
	_, ok, err := r.Refs.Get(target)
	if err != nil {
		return err
	}
	if ok {
		return voserr.AlreadyExists(name)
	}
	return r.Refs.Set(target, snap.CommitHash())
}

// DeleteTag removes tag name. Deleting and re-creating a tag is allowed.
func (r *Repo) DeleteTag(name string) error {
	return r.Refs.Delete(refstore.TagRef(name))
}

// ListTags returns every tag's short name, sorted.
func (r *Repo) ListTags() ([]string, error) {
	return r.listShortNames("refs/tags")
}

func (r *Repo) listShortNames(prefix string) ([]string, error) {
	refs, err := r.Refs.List(prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name.Short())
	}
	sort.Strings(names)
	return names, nil
}
