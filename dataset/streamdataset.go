package dataset

import (
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/transform"
)

// streamDataset is a leaf Dataset backed by a repeatable stream factory.
// Every Stream() call must yield a fresh stream positioned at row zero,
// matching the "constructing a Dataset never fetches data" invariant.
type streamDataset struct {
	columnsFn func(j *job.Job) (*schema.OrderedColumnSet, error)
	streamFn  func(j *job.Job) (stream.Stream, error)
}

// FromRows builds a leaf Dataset over a fixed, in-memory row set.
func FromRows(columns *schema.OrderedColumnSet, rows []schema.Row) Dataset {
	return &streamDataset{
		columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) { return columns, nil },
		streamFn: func(j *job.Job) (stream.Stream, error) {
			return stream.NewMemoryStream(columns, rows), nil
		},
	}
}

// FromRaster builds a leaf Dataset reading directly from a *raster.Raster.
func FromRaster(r *raster.Raster) Dataset {
	return &rasterDataset{raster: r}
}

func (s *streamDataset) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return s.columnsFn(j)
}

func (s *streamDataset) Stream(j *job.Job) (stream.Stream, error) {
	return s.streamFn(j)
}

func (s *streamDataset) Raster(j *job.Job, filter expr.Expression) (*raster.Raster, error) {
	return materialize(j, s, filter)
}

func (s *streamDataset) Filter(e expr.Expression) Dataset { return wrap(s, deferredOp{kind: opFiltering, filter: e.Prepare()}) }
func (s *streamDataset) Calculate(targets CalculateMap) Dataset {
	return wrap(s, deferredOp{kind: opCalculating, calc: targets})
}
func (s *streamDataset) SelectColumns(cols []schema.Column) Dataset {
	if len(cols) == 0 {
		return emptyDataset()
	}
	return wrap(s, deferredOp{kind: opSelectingColumns, cols: cols})
}
func (s *streamDataset) Sort(orders []SortOrder) Dataset {
	if len(orders) == 0 {
		return s
	}
	return wrap(s, deferredOp{kind: opSorting, sorts: orders})
}
func (s *streamDataset) Limit(n int) Dataset  { return wrap(s, deferredOp{kind: opLimiting, n: n}) }
func (s *streamDataset) Offset(n int) Dataset { return wrap(s, deferredOp{kind: opOffsetting, n: n}) }
func (s *streamDataset) Distinct() Dataset    { return wrap(s, deferredOp{kind: opDistincting}) }
func (s *streamDataset) Transpose() Dataset   { return wrap(s, deferredOp{kind: opTransposing}) }
func (s *streamDataset) Random(n int) Dataset {
	return &streamDataset{
		columnsFn: s.columnsFn,
		streamFn: func(j *job.Job) (stream.Stream, error) {
			src, err := s.streamFn(j)
			if err != nil {
				return nil, err
			}
			return transform.NewRandom(src, n), nil
		},
	}
}
func (s *streamDataset) Join(spec JoinSpec) Dataset { return joinDataset(s, spec) }
func (s *streamDataset) Aggregate(groups []transform.GroupKey, aggregations []transform.Aggregation) Dataset {
	return aggregateDataset(s, groups, aggregations)
}
func (s *streamDataset) Flatten(valueColumn schema.Column, columnNameColumn *schema.Column, rowID *transform.RowIdentifier) Dataset {
	return flattenDataset(s, valueColumn, columnNameColumn, rowID)
}
func (s *streamDataset) Union(other Dataset) Dataset { return unionDataset(s, other) }
