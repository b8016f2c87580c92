package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/value"
)

func sourceFromRaster(t *testing.T, r *raster.Raster) stream.Stream {
	t.Helper()
	return stream.NewMemoryStream(r.Columns(), r.Rows())
}

func sampleRaster(t *testing.T) *raster.Raster {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("A"), schema.NewColumn("B"))
	r := raster.New(cols)
	require.NoError(t, r.AddRows([][]value.Value{
		{value.Int(1), value.String("a")},
		{value.Int(2), value.String("b")},
		{value.Int(3), value.String("c")},
	}))
	return r
}

func drain(t *testing.T, s stream.Stream) []schema.Row {
	t.Helper()
	rows, err := stream.DrainAll(job.Background(), s, 2)
	require.NoError(t, err)
	return rows
}

func TestFilterDropsNonMatching(t *testing.T) {
	src := sourceFromRaster(t, sampleRaster(t))
	cond := expr.NewComparison(expr.NewSibling(schema.NewColumn("A")), value.GreaterThan, expr.NewLiteral(value.Int(1)))
	f := NewFilter(src, cond)
	rows := drain(t, f)
	require.Len(t, rows, 2)
}

func TestLimitCapsOutput(t *testing.T) {
	src := sourceFromRaster(t, sampleRaster(t))
	l := NewLimit(src, 2)
	rows := drain(t, l)
	require.Len(t, rows, 2)
}

func TestOffsetSkipsLeadingRows(t *testing.T) {
	src := sourceFromRaster(t, sampleRaster(t))
	o := NewOffset(src, 1)
	rows := drain(t, o)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].At(0).AsInt())
}

func TestColumnsProjects(t *testing.T) {
	src := sourceFromRaster(t, sampleRaster(t))
	c := NewColumns(src, []schema.Column{schema.NewColumn("B")})
	rows := drain(t, c)
	require.Equal(t, 1, rows[0].Len())
	require.Equal(t, "a", rows[0].At(0).AsString())
}

func TestCalculateAppendsColumn(t *testing.T) {
	src := sourceFromRaster(t, sampleRaster(t))
	e := expr.NewComparison(expr.NewSibling(schema.NewColumn("A")), value.Multiply, expr.NewLiteral(value.Int(2)))
	calc := NewCalculate(src, []CalculateTarget{{Column: schema.NewColumn("C"), Expr: e}})
	rows := drain(t, calc)
	require.Equal(t, int64(2), rows[0].Get(schema.NewColumn("C")).AsInt())
	require.Equal(t, int64(6), rows[2].Get(schema.NewColumn("C")).AsInt())
}

func TestFlattenEmitsOneRowPerCell(t *testing.T) {
	src := sourceFromRaster(t, sampleRaster(t))
	nameCol := schema.NewColumn("ColumnName")
	fl := NewFlatten(src, schema.NewColumn("Value"), &nameCol, nil)
	rows := drain(t, fl)
	require.Len(t, rows, 6)
	require.Equal(t, "A", rows[0].At(0).AsString())
	require.Equal(t, int64(1), rows[0].At(1).AsInt())
}

func TestRandomReservoirStaysInBounds(t *testing.T) {
	src := sourceFromRaster(t, sampleRaster(t))
	r := NewRandom(src, 2)
	rows := drain(t, r)
	require.Len(t, rows, 2)
}

func TestAggregateGroupsAndSums(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("Group"), schema.NewColumn("Value"))
	raw := raster.New(cols)
	require.NoError(t, raw.AddRows([][]value.Value{
		{value.String("x"), value.Int(1)},
		{value.String("x"), value.Int(2)},
		{value.String("y"), value.Int(10)},
	}))
	src := stream.NewMemoryStream(raw.Columns(), raw.Rows())

	sumFn, ok := function.Lookup("sum")
	require.True(t, ok)
	groups := []GroupKey{{Expr: expr.NewSibling(schema.NewColumn("Group")), Target: schema.NewColumn("Group")}}
	aggs := []Aggregation{{
		Aggregator: Aggregator{Map: expr.NewSibling(schema.NewColumn("Value")), Reduce: sumFn},
		Target:     schema.NewColumn("Total"),
	}}
	agg, err := NewAggregate(src, groups, aggs)
	require.NoError(t, err)
	rows := drain(t, agg)
	require.Len(t, rows, 2)

	totals := map[string]int64{}
	for _, r := range rows {
		totals[r.Get(schema.NewColumn("Group")).AsString()] = r.Get(schema.NewColumn("Total")).AsInt()
	}
	require.Equal(t, int64(3), totals["x"])
	require.Equal(t, int64(10), totals["y"])
}

func TestAggregateRejectsOverlappingTargets(t *testing.T) {
	sumFn, _ := function.Lookup("sum")
	groups := []GroupKey{{Expr: expr.NewSibling(schema.NewColumn("A")), Target: schema.NewColumn("A")}}
	aggs := []Aggregation{{Aggregator: Aggregator{Map: expr.NewSibling(schema.NewColumn("A")), Reduce: sumFn}, Target: schema.NewColumn("A")}}
	_, err := NewAggregate(nil, groups, aggs)
	require.Error(t, err)
}
