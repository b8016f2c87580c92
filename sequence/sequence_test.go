package sequence

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(n Node) []string {
	var out []string
	n.Iter()(func(s string) bool {
		out = append(out, s)
		return true
	})
	return out
}

func TestRepeatEnumeratesRightInner(t *testing.T) {
	n, err := Parse("[A-C]{2}")
	require.NoError(t, err)
	got := collect(n)
	require.Equal(t, []string{"AA", "AB", "AC", "BA", "BB", "BC", "CA", "CB", "CC"}, got)

	card, ok := n.Cardinality()
	require.True(t, ok)
	require.Equal(t, int64(9), card)
}

func TestRangeSpecialWidening(t *testing.T) {
	n, err := Parse("[a-Z]")
	require.NoError(t, err)
	card, ok := n.Cardinality()
	require.True(t, ok)
	require.Equal(t, int64(52), card)
}

func TestAlternation(t *testing.T) {
	n, err := Parse("a|bb")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "bb"}, collect(n))
}

func TestMaybe(t *testing.T) {
	n, err := Parse("ab?")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "ab"}, collect(n))
}

func TestGroupingAndEscape(t *testing.T) {
	n, err := Parse(`(ab){2}\t`)
	require.NoError(t, err)
	got := collect(n)
	require.Equal(t, []string{"abab\t"}, got)
}

func TestRandomStaysWithinCardinality(t *testing.T) {
	n, err := Parse("[abc][xy]")
	require.NoError(t, err)
	members := map[string]bool{}
	for _, m := range collect(n) {
		members[m] = true
	}
	for i := 0; i < 20; i++ {
		require.True(t, members[n.Random()])
	}
}
