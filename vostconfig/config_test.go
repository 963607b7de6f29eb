package vostconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	want := &Config{Core: Core{Hash: "sha1"}, User: User{Name: "Ada", Email: "ada@example.com"}}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestOverwriteOnlyReplacesSetFields(t *testing.T) {
	base := Default()
	base.Overwrite(&Config{User: User{Name: "Grace"}})
	require.Equal(t, "Grace", base.User.Name)
	require.Equal(t, "vost@localhost", base.User.Email)
	require.Equal(t, "sha1", base.Core.Hash)
}
