package dataset

import (
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/transform"
)

// rasterDataset is a leaf Dataset reading directly from a materialized
// raster.Raster. It also implements transform.ForeignDataset, letting it
// serve as a join's right-hand side without an intermediate conversion.
type rasterDataset struct {
	raster *raster.Raster
}

func (r *rasterDataset) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return r.raster.Columns(), nil
}

func (r *rasterDataset) Stream(j *job.Job) (stream.Stream, error) {
	return stream.NewMemoryStream(r.raster.Columns(), r.raster.Rows()), nil
}

// Raster returns the backing raster, optionally narrowed to rows matching
// filter (used by Join to pull only the candidate foreign rows).
func (r *rasterDataset) Raster(j *job.Job, filter expr.Expression) (*raster.Raster, error) {
	if filter == nil {
		return r.raster, nil
	}
	prepared := filter.Prepare()
	out := raster.New(r.raster.Columns())
	for _, row := range r.raster.Rows() {
		v := prepared.Apply(expr.EvalContext{Row: row})
		if !v.IsInvalid() && v.AsBool() {
			if err := out.AddRow(row.Values()...); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (r *rasterDataset) Filter(e expr.Expression) Dataset { return wrap(r, deferredOp{kind: opFiltering, filter: e.Prepare()}) }
func (r *rasterDataset) Calculate(targets CalculateMap) Dataset {
	return wrap(r, deferredOp{kind: opCalculating, calc: targets})
}
func (r *rasterDataset) SelectColumns(cols []schema.Column) Dataset {
	if len(cols) == 0 {
		return emptyDataset()
	}
	return wrap(r, deferredOp{kind: opSelectingColumns, cols: cols})
}
func (r *rasterDataset) Sort(orders []SortOrder) Dataset {
	if len(orders) == 0 {
		return r
	}
	return wrap(r, deferredOp{kind: opSorting, sorts: orders})
}
func (r *rasterDataset) Limit(n int) Dataset   { return wrap(r, deferredOp{kind: opLimiting, n: n}) }
func (r *rasterDataset) Offset(n int) Dataset  { return wrap(r, deferredOp{kind: opOffsetting, n: n}) }
func (r *rasterDataset) Distinct() Dataset     { return wrap(r, deferredOp{kind: opDistincting}) }
func (r *rasterDataset) Transpose() Dataset    { return wrap(r, deferredOp{kind: opTransposing}) }
func (r *rasterDataset) Random(n int) Dataset {
	return &streamDataset{
		columnsFn: r.Columns,
		streamFn: func(j *job.Job) (stream.Stream, error) {
			src, err := r.Stream(j)
			if err != nil {
				return nil, err
			}
			return transform.NewRandom(src, n), nil
		},
	}
}
func (r *rasterDataset) Join(spec JoinSpec) Dataset { return joinDataset(r, spec) }
func (r *rasterDataset) Aggregate(groups []transform.GroupKey, aggregations []transform.Aggregation) Dataset {
	return aggregateDataset(r, groups, aggregations)
}
func (r *rasterDataset) Flatten(valueColumn schema.Column, columnNameColumn *schema.Column, rowID *transform.RowIdentifier) Dataset {
	return flattenDataset(r, valueColumn, columnNameColumn, rowID)
}
func (r *rasterDataset) Union(other Dataset) Dataset { return unionDataset(r, other) }
