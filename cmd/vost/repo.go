package main

import (
	"github.com/vost-dev/vost/fs"
	"github.com/vost-dev/vost/repo"
	"github.com/vost-dev/vost/voserr"
)

func openRepo(create bool) (*repo.Repo, error) {
	return repo.Open(repoPath, repo.Options{Create: create})
}

// resolveSnapshot resolves a ref-path's ref/ancestor portion (rp.Path is
// left for the caller) against r, defaulting to HEAD's branch when
// rp.Ref is empty.
func resolveSnapshot(r *repo.Repo, rp refPath) (*fs.Snapshot, error) {
	name := rp.Ref
	if name == "" {
		def, ok, err := r.DefaultBranch()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, voserr.InvalidArgument("HEAD is dangling; specify a ref explicitly")
		}
		name = def
	}

	snap, err := r.Branch(name)
	if err != nil {
		if !voserr.IsNotFound(err) {
			return nil, err
		}
		snap, err = r.Tag(name)
		if err != nil {
			return nil, err
		}
	}
	if rp.Ancestor > 0 {
		snap, err = snap.Back(rp.Ancestor)
		if err != nil {
			return nil, err
		}
	}
	return snap, nil
}
