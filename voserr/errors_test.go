package voserr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEachConstructorMatchesItsPredicateOnly(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		is    func(error) bool
		other func(error) bool
	}{
		{"NotFound", NotFound("p"), IsNotFound, IsInvalidPath},
		{"IsDirectory", IsDirectory("p"), IsIsDirectory, IsNotDirectory},
		{"NotDirectory", NotDirectory("p"), IsNotDirectory, IsIsDirectory},
		{"NotLink", NotLink("p"), IsNotLink, IsNotFound},
		{"InvalidPath", InvalidPath("p", "why"), IsInvalidPath, IsInvalidRefName},
		{"InvalidRefName", InvalidRefName("n"), IsInvalidRefName, IsInvalidPath},
		{"InvalidTag", InvalidTag("n", "blob"), IsInvalidTag, IsAlreadyExists},
		{"AlreadyExists", AlreadyExists("n"), IsAlreadyExists, IsInvalidTag},
		{"PermissionDenied", PermissionDenied("r"), IsPermissionDenied, IsInvalidState},
		{"StaleSnapshot", StaleSnapshot("b", "x", "y"), IsStaleSnapshot, IsNotEnoughHistory},
		{"InvalidArgument", InvalidArgument("r"), IsInvalidArgument, IsInvalidState},
		{"InvalidState", InvalidState("r"), IsInvalidState, IsInvalidArgument},
		{"InvalidMessage", InvalidMessage("nope"), IsInvalidMessage, IsInvalidArgument},
		{"NotEnoughHistory", NotEnoughHistory(3, 1), IsNotEnoughHistory, IsStaleSnapshot},
		{"Transport", Transport("url", errors.New("boom")), IsTransport, IsNotGitRepository},
		{"NotGitRepository", NotGitRepository("p"), IsNotGitRepository, IsTransport},
	}
	for _, c := range cases {
		require.True(t, c.is(c.err), c.name)
		require.False(t, c.other(c.err), c.name)
		require.False(t, c.is(errors.New("plain")), c.name)
	}
}

func TestTransportUnwrapsUnderlyingError(t *testing.T) {
	underlying := errors.New("dial failed")
	err := Transport("https://example.com/repo", underlying)
	require.True(t, errors.Is(err, underlying))
}
