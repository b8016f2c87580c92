package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/transform"
	"github.com/rowpipe/rowpipe/value"
)

func streamDrainAll(j *job.Job, s stream.Stream) ([]schema.Row, error) {
	return stream.DrainAll(j, s, 2)
}

func colA() schema.Column { return schema.NewColumn("A") }
func colB() schema.Column { return schema.NewColumn("B") }
func colC() schema.Column { return schema.NewColumn("C") }

func abRaster(t *testing.T) *raster.Raster {
	cols := schema.MustNewOrderedColumnSet(colA(), colB())
	r := raster.New(cols)
	require.NoError(t, r.AddRows([][]value.Value{
		{value.Int(1), value.String("a")},
		{value.Int(2), value.String("b")},
		{value.Int(3), value.String("c")},
	}))
	return r
}

func TestScenarioS1CalculateFilterSelect(t *testing.T) {
	ds := FromRaster(abRaster(t))
	e := expr.NewComparison(expr.NewSibling(colA()), value.Multiply, expr.NewLiteral(value.Int(2)))
	result := ds.
		Calculate(CalculateMap{{Column: colC(), Expr: e}}).
		Filter(expr.NewComparison(expr.NewSibling(colC()), value.GreaterThan, expr.NewLiteral(value.Int(3)))).
		SelectColumns([]schema.Column{colA(), colC()})

	j := job.Background()
	cols, err := result.Columns(j)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C"}, columnNames(cols))

	src, err := result.Stream(j)
	require.NoError(t, err)
	rows, err := streamDrainAll(j, src)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, int64(2), rows[0].At(0).AsInt())
	require.Equal(t, int64(4), rows[0].At(1).AsInt())
	require.Equal(t, int64(3), rows[1].At(0).AsInt())
	require.Equal(t, int64(6), rows[1].At(1).AsInt())
}

func TestScenarioS3InnerAndLeftJoin(t *testing.T) {
	leftCols := schema.MustNewOrderedColumnSet(colA(), colB())
	left := raster.New(leftCols)
	require.NoError(t, left.AddRows([][]value.Value{
		{value.Int(1), value.String("x")},
		{value.Int(2), value.String("y")},
	}))
	rightCols := schema.MustNewOrderedColumnSet(colA(), colC())
	right := raster.New(rightCols)
	require.NoError(t, right.AddRows([][]value.Value{
		{value.Int(1), value.String("p")},
		{value.Int(1), value.String("q")},
		{value.Int(3), value.String("r")},
	}))

	cond := expr.NewComparison(expr.NewSibling(colA()), value.Equals, expr.NewForeign(colA()))
	inner := FromRaster(left).Join(JoinSpec{Foreign: FromRaster(right), Condition: cond, Kind: raster.InnerJoin})
	j := job.Background()
	src, err := inner.Stream(j)
	require.NoError(t, err)
	rows, err := streamDrainAll(j, src)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	leftJoin := FromRaster(left).Join(JoinSpec{Foreign: FromRaster(right), Condition: cond, Kind: raster.LeftJoin})
	src2, err := leftJoin.Stream(j)
	require.NoError(t, err)
	rows2, err := streamDrainAll(j, src2)
	require.NoError(t, err)
	require.Len(t, rows2, 3)
}

func TestScenarioS2AggregateByModulo(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(colA(), colB())
	r := raster.New(cols)
	require.NoError(t, r.AddRows([][]value.Value{
		{value.Int(1), value.Int(10)},
		{value.Int(2), value.Int(20)},
		{value.Int(3), value.Int(30)},
		{value.Int(4), value.Int(40)},
	}))
	sumFn, ok := function.Lookup("sum")
	require.True(t, ok)
	modExpr := expr.NewComparison(expr.NewSibling(colA()), value.Modulo, expr.NewLiteral(value.Int(2)))
	groups := []transform.GroupKey{{Expr: modExpr, Target: schema.NewColumn("Parity")}}
	aggs := []transform.Aggregation{{Aggregator: transform.Aggregator{Map: expr.NewSibling(colB()), Reduce: sumFn}, Target: schema.NewColumn("Total")}}

	ds := FromRaster(r).Aggregate(groups, aggs)
	j := job.Background()
	src, err := ds.Stream(j)
	require.NoError(t, err)
	rows, err := streamDrainAll(j, src)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	totals := map[int64]int64{}
	for _, row := range rows {
		totals[row.At(0).AsInt()] = row.At(1).AsInt()
	}
	require.Equal(t, int64(40), totals[1])
	require.Equal(t, int64(60), totals[0])
}

func TestScenarioS8FilterOverCalculateCommutes(t *testing.T) {
	cd := FromRaster(abRaster(t)).(*rasterDataset)
	calcExpr := expr.NewComparison(expr.NewSibling(colA()), value.Add, expr.NewLiteral(value.Int(1)))
	calculated := cd.Calculate(CalculateMap{{Column: colC(), Expr: calcExpr}}).(*CoalescedDataset)

	filterExpr := expr.NewComparison(expr.NewSibling(colC()), value.GreaterThan, expr.NewLiteral(value.Int(5)))
	rewritten := calculated.Filter(filterExpr).(*CoalescedDataset)

	require.Equal(t, opCalculating, rewritten.Op.kind)
	baseFilter, ok := rewritten.Base.(*CoalescedDataset)
	require.True(t, ok)
	require.Equal(t, opFiltering, baseFilter.Op.kind)
}

func TestCalculateConflictDefersSecondCalculation(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(colA())
	r := raster.New(cols)
	require.NoError(t, r.AddRows([][]value.Value{{value.Int(1)}}))

	plusOne := expr.NewComparison(expr.NewSibling(colA()), value.Add, expr.NewLiteral(value.Int(1)))
	timesTwo := expr.NewComparison(expr.NewSibling(colA()), value.Multiply, expr.NewLiteral(value.Int(2)))

	ds := FromRaster(r).
		Calculate(CalculateMap{{Column: colA(), Expr: plusOne}}).
		Calculate(CalculateMap{{Column: colA(), Expr: timesTwo}})

	j := job.Background()
	src, err := ds.Stream(j)
	require.NoError(t, err)
	rows, err := streamDrainAll(j, src)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// (1+1)*2 = 4, not 1*2 = 2: the prior non-identity calculation of A
	// must not be dropped by the second Calculate.
	require.Equal(t, int64(4), rows[0].At(0).AsInt())

	cd, ok := ds.(*CoalescedDataset)
	require.True(t, ok)
	require.Equal(t, opCalculating, cd.Op.kind)
	base, ok := cd.Base.(*CoalescedDataset)
	require.True(t, ok)
	require.Equal(t, opCalculating, base.Op.kind)
}

func columnNames(cols *schema.OrderedColumnSet) []string {
	var out []string
	for _, c := range cols.Columns() {
		out = append(out, c.Name())
	}
	return out
}
