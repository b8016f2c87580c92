package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/value"
)

func TestColumnCaseInsensitivity(t *testing.T) {
	require.True(t, NewColumn("X").Equal(NewColumn("x")))
	require.Equal(t, NewColumn("X").Key(), NewColumn("x").Key())
}

func TestDefaultNameForIndex(t *testing.T) {
	require.Equal(t, "A", DefaultNameForIndex(0))
	require.Equal(t, "Z", DefaultNameForIndex(25))
	require.Equal(t, "AA", DefaultNameForIndex(26))
	require.Equal(t, "AB", DefaultNameForIndex(27))
}

func TestOrderedColumnSetRejectsDuplicates(t *testing.T) {
	_, err := NewOrderedColumnSet(NewColumn("A"), NewColumn("a"))
	require.Error(t, err)
}

func TestRowSetUnknownColumnAppends(t *testing.T) {
	cols := MustNewOrderedColumnSet(NewColumn("A"))
	r := NewRow(cols, value.Int(1))
	r2 := r.Set(NewColumn("B"), value.String("hi"))
	require.Equal(t, 2, r2.Len())
	require.Equal(t, "hi", r2.Get(NewColumn("B")).AsString())
	require.Equal(t, int64(1), r2.Get(NewColumn("A")).AsInt())
}

func TestRowShortTuplePadsEmpty(t *testing.T) {
	cols := MustNewOrderedColumnSet(NewColumn("A"), NewColumn("B"))
	r := NewRow(cols, value.Int(1))
	require.True(t, r.Get(NewColumn("B")).IsEmpty())
}

func TestRowProject(t *testing.T) {
	cols := MustNewOrderedColumnSet(NewColumn("A"), NewColumn("B"), NewColumn("C"))
	r := NewRow(cols, value.Int(1), value.Int(2), value.Int(3))
	proj := MustNewOrderedColumnSet(NewColumn("C"), NewColumn("A"))
	out := r.Project(proj)
	require.Equal(t, int64(3), out.At(0).AsInt())
	require.Equal(t, int64(1), out.At(1).AsInt())
}

func TestIntersectPreservesReceiverOrder(t *testing.T) {
	a := MustNewOrderedColumnSet(NewColumn("A"), NewColumn("B"), NewColumn("C"))
	b := MustNewOrderedColumnSet(NewColumn("C"), NewColumn("A"))
	got := b.Intersect(a)
	names := []string{}
	for _, c := range got.Columns() {
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"C", "A"}, names)
}
