package mirror

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/repo"
)

func openMirrorRepo(t *testing.T, branch string) *repo.Repo {
	t.Helper()
	r, err := repo.Open(filepath.Join(t.TempDir(), "r"), repo.Options{Create: true, Branch: branch})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestBackupToLocalBareRepoRoundTrips(t *testing.T) {
	src := openMirrorRepo(t, "main")
	snap, err := src.Branch("main")
	require.NoError(t, err)
	snap, err = snap.Write("a.txt", []byte("hello"), 0)
	require.NoError(t, err)
	require.NoError(t, src.SetBranch("main", snap))

	destPath := filepath.Join(t.TempDir(), "mirror")
	diff, err := Backup(src, destPath, Options{})
	require.NoError(t, err)
	require.Len(t, diff.Add, 1)

	dest, err := repo.Open(destPath, repo.Options{})
	require.NoError(t, err)
	defer dest.Close()

	destSnap, err := dest.Branch("main")
	require.NoError(t, err)
	got, err := destSnap.Read("a.txt", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestBackupTwiceIsIdempotentOnUnchangedRefs(t *testing.T) {
	src := openMirrorRepo(t, "main")
	snap, err := src.Branch("main")
	require.NoError(t, err)
	snap, err = snap.Write("a.txt", []byte("hello"), 0)
	require.NoError(t, err)
	require.NoError(t, src.SetBranch("main", snap))

	destPath := filepath.Join(t.TempDir(), "mirror")
	_, err = Backup(src, destPath, Options{})
	require.NoError(t, err)

	diff, err := Backup(src, destPath, Options{})
	require.NoError(t, err)
	require.True(t, diff.InSync())
}

func TestRestoreFromBundleRoundTrips(t *testing.T) {
	src := openMirrorRepo(t, "main")
	snap, err := src.Branch("main")
	require.NoError(t, err)
	snap, err = snap.Write("a.txt", []byte("hello"), 0)
	require.NoError(t, err)
	require.NoError(t, src.SetBranch("main", snap))

	bundlePath := filepath.Join(t.TempDir(), "out.bundle")
	_, err = Backup(src, bundlePath, Options{})
	require.NoError(t, err)

	dest := openMirrorRepo(t, "")
	diff, err := Restore(dest, bundlePath, Options{})
	require.NoError(t, err)
	require.Len(t, diff.Add, 1)

	destSnap, err := dest.Branch("main")
	require.NoError(t, err)
	got, err := destSnap.Read("a.txt", 0, -1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestDryRunMirrorDoesNotMutateDestination(t *testing.T) {
	src := openMirrorRepo(t, "main")
	snap, err := src.Branch("main")
	require.NoError(t, err)
	snap, err = snap.Write("a.txt", []byte("hello"), 0)
	require.NoError(t, err)
	require.NoError(t, src.SetBranch("main", snap))

	destPath := filepath.Join(t.TempDir(), "mirror")
	diff, err := Backup(src, destPath, Options{DryRun: true})
	require.NoError(t, err)
	require.Len(t, diff.Add, 1)

	dest, err := repo.Open(destPath, repo.Options{})
	require.NoError(t, err)
	defer dest.Close()
	_, err = dest.Branch("main")
	require.Error(t, err)
}
