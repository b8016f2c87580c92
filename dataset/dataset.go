// Package dataset implements the lazy relational algebra (§4.7): an
// abstract Dataset interface plus CoalescedDataset, a deferred-operation
// wrapper that fuses adjacent operations using the optimizer's equational
// laws before any row is ever moved.
package dataset

import (
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/transform"
)

// SortOrder is one key of a sort, ascending unless Descending is set.
type SortOrder struct {
	Expr       expr.Expression
	Descending bool
}

// CalculateMap is an ordered list of target-column calculations -- ordered
// because later entries may reference earlier columns by name.
type CalculateMap []transform.CalculateTarget

// JoinSpec describes a join against a foreign dataset (§3).
type JoinSpec struct {
	Foreign   Dataset
	Condition expr.Expression
	Kind      raster.JoinKind
}

// Dataset is a logical, immutable description of a relational pipeline.
// Constructing one never fetches data; only Columns/Stream/Raster do.
type Dataset interface {
	Columns(j *job.Job) (*schema.OrderedColumnSet, error)
	Stream(j *job.Job) (stream.Stream, error)
	Raster(j *job.Job, filter expr.Expression) (*raster.Raster, error)

	Filter(e expr.Expression) Dataset
	Calculate(targets CalculateMap) Dataset
	SelectColumns(cols []schema.Column) Dataset
	Sort(orders []SortOrder) Dataset
	Limit(n int) Dataset
	Offset(n int) Dataset
	Distinct() Dataset
	Transpose() Dataset
	Random(n int) Dataset
	Join(spec JoinSpec) Dataset
	Aggregate(groups []transform.GroupKey, aggregations []transform.Aggregation) Dataset
	Flatten(valueColumn schema.Column, columnNameColumn *schema.Column, rowID *transform.RowIdentifier) Dataset
	Union(other Dataset) Dataset
}
