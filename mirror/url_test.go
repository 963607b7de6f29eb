package mirror

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/voserr"
)

func TestClassifyURLSchemes(t *testing.T) {
	cases := map[string]endpointKind{
		"http://example.com/repo":  kindHTTP,
		"https://example.com/repo": kindHTTPS,
		"git://example.com/repo":   kindGit,
		"ssh://example.com/repo":   kindSSH,
		"file:///srv/repo":         kindFile,
		"/srv/bare/repo":           kindLocal,
		"../relative/repo":         kindLocal,
		`C:\repos\mine`:            kindLocal,
		"D:/repos/mine":            kindLocal,
	}
	for raw, want := range cases {
		got, err := classifyURL(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}
}

func TestClassifyURLRejectsSCPStyle(t *testing.T) {
	_, err := classifyURL("git@github.com:owner/repo.git")
	require.Error(t, err)
	require.True(t, voserr.IsInvalidArgument(err))
}

func TestClassifyURLRejectsUnknownScheme(t *testing.T) {
	_, err := classifyURL("ftp://example.com/repo")
	require.Error(t, err)
	require.True(t, voserr.IsInvalidArgument(err))
}

func TestIsBundlePath(t *testing.T) {
	require.True(t, isBundlePath("out.bundle"))
	require.False(t, isBundlePath("out.tar"))
}
