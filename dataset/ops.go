package dataset

import (
	"sort"

	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/transform"
	"github.com/rowpipe/rowpipe/value"
)

// materialize drains d's stream into a raster, optionally keeping only
// rows matching filter (used by Join's foreign-side pull).
func materialize(j *job.Job, d Dataset, filter expr.Expression) (*raster.Raster, error) {
	cols, err := d.Columns(j)
	if err != nil {
		return nil, err
	}
	src, err := d.Stream(j)
	if err != nil {
		return nil, err
	}
	rows, err := stream.DrainAll(j, src, 0)
	if err != nil {
		return nil, err
	}
	r := raster.New(cols)
	var prepared expr.Expression
	if filter != nil {
		prepared = filter.Prepare()
	}
	for _, row := range rows {
		if prepared != nil {
			v := prepared.Apply(expr.EvalContext{Row: row})
			if v.IsInvalid() || !v.AsBool() {
				continue
			}
		}
		if err := r.AddRow(row.Values()...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func emptyDataset() Dataset {
	cols := schema.MustNewOrderedColumnSet()
	return FromRows(cols, nil)
}

// transposedDataset swaps rows and columns: source columns become a
// "Field" column plus one column per original row, and the Kth source
// column's values become row K's cells.
func transposedDataset(base Dataset) Dataset {
	return &streamDataset{
		columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) {
			rows, err := drainedRows(j, base)
			if err != nil {
				return nil, err
			}
			return transposedColumns(len(rows)), nil
		},
		streamFn: func(j *job.Job) (stream.Stream, error) {
			baseCols, err := base.Columns(j)
			if err != nil {
				return nil, err
			}
			rows, err := drainedRows(j, base)
			if err != nil {
				return nil, err
			}
			cols := transposedColumns(len(rows))
			var out []schema.Row
			for _, srcCol := range baseCols.Columns() {
				vals := make([]value.Value, 0, len(rows)+1)
				vals = append(vals, value.String(srcCol.Name()))
				for _, r := range rows {
					vals = append(vals, r.Get(srcCol))
				}
				out = append(out, schema.NewRow(cols, vals...))
			}
			return stream.NewMemoryStream(cols, out), nil
		},
	}
}

func transposedColumns(rowCount int) *schema.OrderedColumnSet {
	cols := []schema.Column{schema.NewColumn("Field")}
	for i := 0; i < rowCount; i++ {
		cols = append(cols, schema.NewColumn(schema.DefaultNameForIndex(i)))
	}
	return schema.MustNewOrderedColumnSet(cols...)
}

func drainedRows(j *job.Job, d Dataset) ([]schema.Row, error) {
	src, err := d.Stream(j)
	if err != nil {
		return nil, err
	}
	return stream.DrainAll(j, src, 0)
}

// sortedDataset materializes base and sorts by orders, where the first
// entry in orders is the primary key (§4.7's sort(A).sort(B) semantics
// are resolved by CoalescedDataset.Sort before this ever runs: this
// function just applies a stable multi-key sort in the order given).
func sortedDataset(base Dataset, orders []SortOrder) Dataset {
	return &streamDataset{
		columnsFn: base.Columns,
		streamFn: func(j *job.Job) (stream.Stream, error) {
			rows, err := drainedRows(j, base)
			if err != nil {
				return nil, err
			}
			cols, err := base.Columns(j)
			if err != nil {
				return nil, err
			}
			sorted := append([]schema.Row{}, rows...)
			sort.SliceStable(sorted, func(i, k int) bool {
				for _, o := range orders {
					vi := o.Expr.Apply(expr.EvalContext{Row: sorted[i]})
					vk := o.Expr.Apply(expr.EvalContext{Row: sorted[k]})
					cmp, ok := vi.Compare(vk)
					if !ok || cmp == 0 {
						continue
					}
					if o.Descending {
						return cmp > 0
					}
					return cmp < 0
				}
				return false
			})
			return stream.NewMemoryStream(cols, sorted), nil
		},
	}
}

func distinctDataset(base Dataset) Dataset {
	return &streamDataset{
		columnsFn: base.Columns,
		streamFn: func(j *job.Job) (stream.Stream, error) {
			rows, err := drainedRows(j, base)
			if err != nil {
				return nil, err
			}
			cols, err := base.Columns(j)
			if err != nil {
				return nil, err
			}
			seen := make(map[uint64][]schema.Row)
			var out []schema.Row
			for _, r := range rows {
				h := rowHash(r)
				dup := false
				for _, other := range seen[h] {
					if rowsEqual(r, other) {
						dup = true
						break
					}
				}
				if !dup {
					seen[h] = append(seen[h], r)
					out = append(out, r)
				}
			}
			return stream.NewMemoryStream(cols, out), nil
		},
	}
}

func rowHash(r schema.Row) uint64 {
	var h uint64
	for _, v := range r.Values() {
		h = h*1099511628211 ^ v.Hash()
	}
	return h
}

func rowsEqual(a, b schema.Row) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !a.At(i).Equal(b.At(i)) {
			return false
		}
	}
	return true
}

func unionDataset(a, b Dataset) Dataset {
	return &streamDataset{
		columnsFn: a.Columns,
		streamFn: func(j *job.Job) (stream.Stream, error) {
			cols, err := a.Columns(j)
			if err != nil {
				return nil, err
			}
			rowsA, err := drainedRows(j, a)
			if err != nil {
				return nil, err
			}
			rowsB, err := drainedRows(j, b)
			if err != nil {
				return nil, err
			}
			out := make([]schema.Row, 0, len(rowsA)+len(rowsB))
			out = append(out, rowsA...)
			for _, r := range rowsB {
				out = append(out, r.Project(cols))
			}
			return stream.NewMemoryStream(cols, out), nil
		},
	}
}

func joinDataset(base Dataset, spec JoinSpec) Dataset {
	return &streamDataset{
		columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) {
			leftCols, err := base.Columns(j)
			if err != nil {
				return nil, err
			}
			rightCols, err := spec.Foreign.Columns(j)
			if err != nil {
				return nil, err
			}
			var add []schema.Column
			for _, c := range rightCols.Columns() {
				if leftCols.IndexOf(c) == -1 {
					add = append(add, c)
				}
			}
			return leftCols.With(add...)
		},
		streamFn: func(j *job.Job) (stream.Stream, error) {
			src, err := base.Stream(j)
			if err != nil {
				return nil, err
			}
			return transform.NewJoin(src, spec.Foreign, spec.Condition, spec.Kind), nil
		},
	}
}

func aggregateDataset(base Dataset, groups []transform.GroupKey, aggregations []transform.Aggregation) Dataset {
	return &streamDataset{
		columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) {
			var cols []schema.Column
			for _, g := range groups {
				cols = append(cols, g.Target)
			}
			for _, a := range aggregations {
				cols = append(cols, a.Target)
			}
			return schema.NewOrderedColumnSet(cols...)
		},
		streamFn: func(j *job.Job) (stream.Stream, error) {
			src, err := base.Stream(j)
			if err != nil {
				return nil, err
			}
			return transform.NewAggregate(src, groups, aggregations)
		},
	}
}

func flattenDataset(base Dataset, valueColumn schema.Column, columnNameColumn *schema.Column, rowID *transform.RowIdentifier) Dataset {
	var cols []schema.Column
	if rowID != nil {
		cols = append(cols, rowID.Column)
	}
	if columnNameColumn != nil {
		cols = append(cols, *columnNameColumn)
	}
	cols = append(cols, valueColumn)
	colSet := schema.MustNewOrderedColumnSet(cols...)
	return &streamDataset{
		columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) { return colSet, nil },
		streamFn: func(j *job.Job) (stream.Stream, error) {
			src, err := base.Stream(j)
			if err != nil {
				return nil, err
			}
			return transform.NewFlatten(src, valueColumn, columnNameColumn, rowID), nil
		},
	}
}
