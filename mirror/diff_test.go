package mirror

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vost-dev/vost/hash"
)

func h(b byte) hash.Hash {
	var out hash.Hash
	out[0] = b
	return out
}

func TestDiffClassifiesAddUpdateDelete(t *testing.T) {
	local := map[string]hash.Hash{
		"refs/heads/main": h(1),
		"refs/heads/new":  h(2),
	}
	remote := map[string]hash.Hash{
		"refs/heads/main": h(9),
		"refs/heads/gone": h(3),
	}

	diff := Diff(local, remote, Push)
	require.Len(t, diff.Add, 1)
	require.Equal(t, "refs/heads/new", diff.Add[0].Ref)
	require.Len(t, diff.Update, 1)
	require.Equal(t, "refs/heads/main", diff.Update[0].Ref)
	require.Equal(t, h(9), *diff.Update[0].OldTarget)
	require.Equal(t, h(1), *diff.Update[0].NewTarget)
	require.Len(t, diff.Delete, 1)
	require.Equal(t, "refs/heads/gone", diff.Delete[0].Ref)
}

func TestDiffExcludesHEADAndPeeledTagsSymmetrically(t *testing.T) {
	local := map[string]hash.Hash{
		"HEAD":            h(1),
		"refs/tags/v1":    h(2),
		"refs/tags/v1^{}": h(3),
		"refs/heads/main": h(4),
	}
	remote := map[string]hash.Hash{
		"HEAD":            h(9),
		"refs/tags/v1^{}": h(9),
	}

	diff := Diff(local, remote, Push)
	var refs []string
	for _, c := range diff.Add {
		refs = append(refs, c.Ref)
	}
	require.ElementsMatch(t, []string{"refs/tags/v1", "refs/heads/main"}, refs)
}

func TestDiffInSyncWhenIdentical(t *testing.T) {
	refs := map[string]hash.Hash{"refs/heads/main": h(1)}
	diff := Diff(refs, refs, Push)
	require.True(t, diff.InSync())
	require.Equal(t, 0, diff.Total())
}

func TestDiffPullReversesDirection(t *testing.T) {
	local := map[string]hash.Hash{"refs/heads/main": h(1)}
	remote := map[string]hash.Hash{"refs/heads/main": h(1), "refs/heads/extra": h(2)}

	diff := Diff(local, remote, Pull)
	require.Len(t, diff.Add, 1)
	require.Equal(t, "refs/heads/extra", diff.Add[0].Ref)
}
