package mirror

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/vost-dev/vost/hash"
	"github.com/vost-dev/vost/mirror/bundle"
	"github.com/vost-dev/vost/refstore"
	"github.com/vost-dev/vost/repo"
	"github.com/vost-dev/vost/voserr"
)

// Options configures a Backup or Restore call. Refs, if
// non-empty, restricts the mirror to that subset of full ref names (e.g.
// "refs/heads/main"); nil/empty means every branch and tag. Username and
// Password are opaque credential strings handed to the transport (HTTP
// basic auth or SSH password auth, depending on the URL scheme); both
// empty means anonymous.
type Options struct {
	DryRun   bool
	Refs     []string
	Progress func(string)
	Username string
	Password string
}

func (o Options) log(msg string) {
	if o.Progress != nil {
		o.Progress(msg)
	}
}

// Backup mirrors local's branches and tags to url (push direction):
// local is authoritative, and url ends up a superset-free copy of it:
// every ref url has that local lacks is deleted, unless DryRun. Supports
// a local bare-repo path, a *.bundle
// file, or a network endpoint (http(s)/git/ssh/file) via go-git's
// transport clients.
func Backup(local *repo.Repo, url string, opts Options) (*MirrorDiff, error) {
	localRefs, err := refMap(local.Refs)
	if err != nil {
		return nil, err
	}
	localRefs = filterRefs(localRefs, opts.Refs)

	if isBundlePath(url) {
		return backupToBundle(local, url, localRefs, opts)
	}

	kind, err := classifyURL(url)
	if err != nil {
		return nil, err
	}
	if kind == kindLocal {
		return backupToLocal(local, url, localRefs, opts)
	}
	return backupToTransport(local, url, localRefs, opts)
}

// Restore mirrors url's branches and tags into local (pull direction):
// url is authoritative — every local ref url lacks is deleted, unless
// DryRun.
func Restore(local *repo.Repo, url string, opts Options) (*MirrorDiff, error) {
	localRefs, err := refMap(local.Refs)
	if err != nil {
		return nil, err
	}
	localRefs = filterRefs(localRefs, opts.Refs)

	if isBundlePath(url) {
		return restoreFromBundle(local, url, localRefs, opts)
	}

	kind, err := classifyURL(url)
	if err != nil {
		return nil, err
	}
	if kind == kindLocal {
		return restoreFromLocal(local, url, localRefs, opts)
	}
	return restoreFromTransport(local, url, localRefs, opts)
}

func filterRefs(refs map[string]hash.Hash, allow []string) map[string]hash.Hash {
	if len(allow) == 0 {
		return refs
	}
	set := make(map[string]bool, len(allow))
	for _, r := range allow {
		set[r] = true
	}
	out := map[string]hash.Hash{}
	for name, h := range refs {
		if set[name] {
			out[name] = h
		}
	}
	return out
}

// --- local <-> local bare repo ---

func backupToLocal(local *repo.Repo, path string, localRefs map[string]hash.Hash, opts Options) (*MirrorDiff, error) {
	dest, err := repo.Open(path, repo.Options{Create: true})
	if err != nil {
		return nil, err
	}
	defer dest.Close()

	remoteRefs, err := refMap(dest.Refs)
	if err != nil {
		return nil, err
	}
	remoteRefs = filterRefs(remoteRefs, opts.Refs)

	diff := Diff(localRefs, remoteRefs, Push)
	if opts.DryRun || diff.InSync() {
		return diff, nil
	}

	changed := append(append([]RefChange{}, diff.Add...), diff.Update...)
	targets := make([]hash.Hash, len(changed))
	for i, ch := range changed {
		targets[i] = *ch.NewTarget
	}
	opts.log("copying reachable objects")
	if err := copyReachableMulti(local.Store, dest.Store, targets); err != nil {
		return nil, err
	}
	for _, ch := range changed {
		if err := dest.Refs.Set(refstore.Name(ch.Ref), *ch.NewTarget); err != nil {
			return nil, err
		}
	}
	for _, ch := range diff.Delete {
		opts.log("deleting " + ch.Ref)
		if err := dest.Refs.Delete(refstore.Name(ch.Ref)); err != nil {
			return nil, err
		}
	}
	return diff, nil
}

func restoreFromLocal(local *repo.Repo, path string, localRefs map[string]hash.Hash, opts Options) (*MirrorDiff, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, voserr.NotFound(path)
		}
		return nil, err
	}
	src, err := repo.Open(path, repo.Options{})
	if err != nil {
		return nil, err
	}
	defer src.Close()

	remoteRefs, err := refMap(src.Refs)
	if err != nil {
		return nil, err
	}
	remoteRefs = filterRefs(remoteRefs, opts.Refs)

	diff := Diff(localRefs, remoteRefs, Pull)
	if opts.DryRun || diff.InSync() {
		return diff, nil
	}

	changed := append(append([]RefChange{}, diff.Add...), diff.Update...)
	targets := make([]hash.Hash, len(changed))
	for i, ch := range changed {
		targets[i] = *ch.NewTarget
	}
	opts.log("fetching reachable objects")
	if err := copyReachableMulti(src.Store, local.Store, targets); err != nil {
		return nil, err
	}
	for _, ch := range changed {
		if err := local.Refs.Set(refstore.Name(ch.Ref), *ch.NewTarget); err != nil {
			return nil, err
		}
	}
	for _, ch := range diff.Delete {
		opts.log("removing " + ch.Ref)
		if err := local.Refs.Delete(refstore.Name(ch.Ref)); err != nil {
			return nil, err
		}
	}
	return diff, nil
}

// --- bundle file ---

func backupToBundle(local *repo.Repo, path string, localRefs map[string]hash.Hash, opts Options) (*MirrorDiff, error) {
	diff := &MirrorDiff{}
	for name, h := range localRefs {
		t := h
		diff.Add = append(diff.Add, RefChange{Ref: name, NewTarget: &t})
	}
	sortByRef(diff.Add)
	if opts.DryRun {
		return diff, nil
	}

	targets := make([]hash.Hash, 0, len(localRefs))
	for _, h := range localRefs {
		targets = append(targets, h)
	}
	seen, err := collectReachableMulti(local.Store, targets)
	if err != nil {
		return nil, err
	}
	oids := make([]hash.Hash, 0, len(seen))
	for h := range seen {
		oids = append(oids, h)
	}
	var pack bytes.Buffer
	if err := encodePack(&pack, local.Store, oids); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := bundle.Write(f, localRefs, &pack); err != nil {
		return nil, err
	}
	return diff, nil
}

func restoreFromBundle(local *repo.Repo, path string, localRefs map[string]hash.Hash, opts Options) (*MirrorDiff, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, voserr.NotFound(path)
		}
		return nil, err
	}
	defer f.Close()

	refs, pack, err := bundle.Read(f)
	if err != nil {
		return nil, err
	}
	remoteRefs := filterRefs(map[string]hash.Hash(refs), opts.Refs)

	diff := Diff(localRefs, remoteRefs, Pull)
	if opts.DryRun || diff.InSync() {
		return diff, nil
	}

	if err := decodePack(pack, local.Store); err != nil {
		return nil, err
	}
	for _, ch := range append(append([]RefChange{}, diff.Add...), diff.Update...) {
		if err := local.Refs.Set(refstore.Name(ch.Ref), *ch.NewTarget); err != nil {
			return nil, err
		}
	}
	for _, ch := range diff.Delete {
		if err := local.Refs.Delete(refstore.Name(ch.Ref)); err != nil {
			return nil, err
		}
	}
	return diff, nil
}

// --- network transport (http(s)/git/ssh/file via go-git) ---

func backupToTransport(local *repo.Repo, url string, localRefs map[string]hash.Hash, opts Options) (*MirrorDiff, error) {
	tc, err := newTransportClient(url, authFor(url, opts))
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	remoteRefs, err := tc.lsRefs(ctx)
	if err != nil {
		return nil, err
	}
	remoteRefs = filterRefs(remoteRefs, opts.Refs)

	diff := Diff(localRefs, remoteRefs, Push)
	if opts.DryRun || diff.InSync() {
		return diff, nil
	}

	changed := append(append([]RefChange{}, diff.Add...), diff.Update...)
	changedTargets := make([]hash.Hash, len(changed))
	for i, ch := range changed {
		changedTargets[i] = *ch.NewTarget
	}
	seen, err := collectReachableMulti(local.Store, changedTargets)
	if err != nil {
		return nil, err
	}
	oids := make([]hash.Hash, 0, len(seen))
	for h := range seen {
		oids = append(oids, h)
	}

	var buf bytes.Buffer
	if len(oids) > 0 {
		if err := encodePack(&buf, local.Store, oids); err != nil {
			return nil, err
		}
	}

	updates := append(changed, diff.Delete...)
	if err := tc.pushPack(ctx, updates, io.NopCloser(&buf)); err != nil {
		return nil, voserr.Transport(url, err)
	}
	return diff, nil
}

func restoreFromTransport(local *repo.Repo, url string, localRefs map[string]hash.Hash, opts Options) (*MirrorDiff, error) {
	tc, err := newTransportClient(url, authFor(url, opts))
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	remoteRefs, err := tc.lsRefs(ctx)
	if err != nil {
		return nil, err
	}
	remoteRefs = filterRefs(remoteRefs, opts.Refs)

	diff := Diff(localRefs, remoteRefs, Pull)
	if opts.DryRun || diff.InSync() {
		return diff, nil
	}

	changed := append(append([]RefChange{}, diff.Add...), diff.Update...)
	wants := make([]hash.Hash, 0, len(changed))
	for _, ch := range changed {
		wants = append(wants, *ch.NewTarget)
	}
	haves := make([]hash.Hash, 0, len(localRefs))
	for _, h := range localRefs {
		haves = append(haves, h)
	}

	if len(wants) > 0 {
		pack, err := tc.fetchPack(ctx, wants, haves)
		if err != nil {
			return nil, voserr.Transport(url, err)
		}
		defer pack.Close()
		if err := decodePack(pack, local.Store); err != nil {
			return nil, err
		}
	}

	for _, ch := range changed {
		if err := local.Refs.Set(refstore.Name(ch.Ref), *ch.NewTarget); err != nil {
			return nil, err
		}
	}
	for _, ch := range diff.Delete {
		if err := local.Refs.Delete(refstore.Name(ch.Ref)); err != nil {
			return nil, err
		}
	}
	return diff, nil
}
