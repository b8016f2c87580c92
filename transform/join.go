package transform

import (
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
)

// ForeignDataset is the minimal capability Join needs from its right-hand
// side: materialize (optionally pre-filtered) into a raster.
type ForeignDataset interface {
	Raster(j *job.Job, filter expr.Expression) (*raster.Raster, error)
	Columns(j *job.Job) (*schema.OrderedColumnSet, error)
}

// Join streams the left side in batches, and for each batch builds a
// foreign-filter expression (the disjunction of
// expr.ExpressionForForeignFiltering(condition, leftRow) for every left
// row), pulls only the matching foreign rows into a raster, and executes
// the raster-level hash/cartesian join for that batch (§4.9).
type Join struct {
	Source    stream.Stream
	Foreign   ForeignDataset
	Condition expr.Expression
	Kind      raster.JoinKind

	columns *schema.OrderedColumnSet
}

func NewJoin(source stream.Stream, foreign ForeignDataset, condition expr.Expression, kind raster.JoinKind) *Join {
	return &Join{Source: source, Foreign: foreign, Condition: condition.Prepare(), Kind: kind}
}

func (jn *Join) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	if jn.columns != nil {
		return jn.columns, nil
	}
	leftCols, err := jn.Source.Columns(j)
	if err != nil {
		return nil, err
	}
	rightCols, err := jn.Foreign.Columns(j)
	if err != nil {
		return nil, err
	}
	var newRight []schema.Column
	for _, c := range rightCols.Columns() {
		if leftCols.IndexOf(c) == -1 {
			newRight = append(newRight, c)
		}
	}
	merged, err := leftCols.With(newRight...)
	if err != nil {
		return nil, err
	}
	jn.columns = merged
	return merged, nil
}

func (jn *Join) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
	leftRows, status, err := jn.Source.Fetch(j)
	if err != nil {
		return nil, stream.Finished, err
	}
	if len(leftRows) == 0 {
		return nil, status, nil
	}

	leftCols := leftRows[0].Columns()
	left := raster.New(leftCols)
	for _, r := range leftRows {
		if err := left.AddRow(r.Values()...); err != nil {
			return nil, stream.Finished, err
		}
	}

	var foreignFilter expr.Expression
	for _, r := range leftRows {
		clause := expr.ExpressionForForeignFiltering(jn.Condition, r)
		if foreignFilter == nil {
			foreignFilter = clause
		} else {
			foreignFilter = orExpr(foreignFilter, clause)
		}
	}

	rightRaster, err := jn.Foreign.Raster(j, foreignFilter)
	if err != nil {
		return nil, stream.Finished, err
	}

	joined, err := raster.HashOrCartesianJoin(left, rightRaster, jn.Condition, jn.Kind)
	if err != nil {
		return nil, stream.Finished, err
	}

	return joined.Rows(), status, nil
}

func (jn *Join) Clone() stream.Stream {
	return &Join{Source: jn.Source.Clone(), Foreign: jn.Foreign, Condition: jn.Condition, Kind: jn.Kind, columns: jn.columns}
}

func orExpr(a, b expr.Expression) expr.Expression {
	orFn, ok := function.Lookup("or")
	if !ok {
		return a
	}
	return expr.NewCall(orFn, a, b)
}
