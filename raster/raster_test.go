package raster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

func cols(names ...string) *schema.OrderedColumnSet {
	var c []schema.Column
	for _, n := range names {
		c = append(c, schema.NewColumn(n))
	}
	return schema.MustNewOrderedColumnSet(c...)
}

func TestAddRowPadsShortTuple(t *testing.T) {
	r := New(cols("A", "B"))
	require.NoError(t, r.AddRow(value.Int(1)))
	require.Equal(t, 1, r.Len())
	require.True(t, r.At(0, 1).IsEmpty())
}

func TestReadOnlyRejectsMutation(t *testing.T) {
	r := NewReadOnly(cols("A"), [][]value.Value{{value.Int(1)}})
	require.Error(t, r.AddRow(value.Int(2)))
	require.Error(t, r.RemoveRows([]int{0}))
}

func TestSetValueCompareAndSwap(t *testing.T) {
	r := New(cols("A"))
	require.NoError(t, r.AddRow(value.Int(1)))
	wrong := value.Int(99)
	ok, err := r.SetValue(value.Int(2), schema.NewColumn("A"), 0, &wrong)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, int64(1), r.At(0, 0).AsInt())

	right := value.Int(1)
	ok, err = r.SetValue(value.Int(2), schema.NewColumn("A"), 0, &right)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), r.At(0, 0).AsInt())
}

func TestUpdateMatchesKeyAndOld(t *testing.T) {
	r := New(cols("K", "V"))
	require.NoError(t, r.AddRows([][]value.Value{
		{value.Int(1), value.Int(10)},
		{value.Int(1), value.Int(20)},
		{value.Int(2), value.Int(10)},
	}))
	n, err := r.Update([]schema.Column{schema.NewColumn("K")}, []value.Value{value.Int(1)}, schema.NewColumn("V"), value.Int(10), value.Int(99))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(99), r.At(0, 1).AsInt())
	require.Equal(t, int64(20), r.At(1, 1).AsInt())
}

func TestRemoveColumns(t *testing.T) {
	r := New(cols("A", "B", "C"))
	require.NoError(t, r.AddRow(value.Int(1), value.Int(2), value.Int(3)))
	require.NoError(t, r.RemoveColumns(schema.NewColumn("B")))
	require.Equal(t, 2, r.Columns().Len())
	require.Equal(t, int64(3), r.At(0, 1).AsInt())
}

func TestRemoveRowsByKey(t *testing.T) {
	r := New(cols("K"))
	require.NoError(t, r.AddRows([][]value.Value{{value.Int(1)}, {value.Int(2)}, {value.Int(3)}}))
	require.NoError(t, r.RemoveRowsByKey([]schema.Column{schema.NewColumn("K")}, [][]value.Value{{value.Int(2)}}))
	require.Equal(t, 2, r.Len())
}

func TestHashJoinInner(t *testing.T) {
	left := New(cols("ID", "Name"))
	require.NoError(t, left.AddRows([][]value.Value{
		{value.Int(1), value.String("a")},
		{value.Int(2), value.String("b")},
	}))
	right := New(cols("ID", "Score"))
	require.NoError(t, right.AddRows([][]value.Value{
		{value.Int(1), value.Int(100)},
		{value.Int(3), value.Int(300)},
	}))

	cond := expr.NewComparison(expr.NewSibling(schema.NewColumn("ID")), value.Equals, expr.NewForeign(schema.NewColumn("ID")))
	joined, err := HashOrCartesianJoin(left, right, cond, InnerJoin)
	require.NoError(t, err)
	require.Equal(t, 1, joined.Len())
	require.Equal(t, "a", joined.At(0, 1).AsString())
	require.Equal(t, int64(100), joined.At(0, 2).AsInt())
}

func TestHashJoinLeftPadsEmpty(t *testing.T) {
	left := New(cols("ID"))
	require.NoError(t, left.AddRows([][]value.Value{{value.Int(1)}, {value.Int(2)}}))
	right := New(cols("ID", "Score"))
	require.NoError(t, right.AddRows([][]value.Value{{value.Int(1), value.Int(100)}}))

	cond := expr.NewComparison(expr.NewSibling(schema.NewColumn("ID")), value.Equals, expr.NewForeign(schema.NewColumn("ID")))
	joined, err := HashOrCartesianJoin(left, right, cond, LeftJoin)
	require.NoError(t, err)
	require.Equal(t, 2, joined.Len())
	require.True(t, joined.At(1, 1).IsEmpty())
}

func TestJoinEarlyExitWhenNoNewColumns(t *testing.T) {
	left := New(cols("ID", "Score"))
	require.NoError(t, left.AddRow(value.Int(1), value.Int(5)))
	right := New(cols("ID"))
	require.NoError(t, right.AddRow(value.Int(1)))
	cond := expr.NewComparison(expr.NewSibling(schema.NewColumn("ID")), value.Equals, expr.NewForeign(schema.NewColumn("ID")))
	joined, err := HashOrCartesianJoin(left, right, cond, InnerJoin)
	require.NoError(t, err)
	require.Same(t, left, joined)
}

func TestCartesianFallbackForNonEqualityJoin(t *testing.T) {
	left := New(cols("A"))
	require.NoError(t, left.AddRows([][]value.Value{{value.Int(1)}, {value.Int(5)}}))
	right := New(cols("B"))
	require.NoError(t, right.AddRows([][]value.Value{{value.Int(2)}, {value.Int(3)}}))
	cond := expr.NewComparison(expr.NewSibling(schema.NewColumn("A")), value.GreaterThan, expr.NewForeign(schema.NewColumn("B")))
	joined, err := HashOrCartesianJoin(left, right, cond, InnerJoin)
	require.NoError(t, err)
	require.Equal(t, 2, joined.Len())
}
