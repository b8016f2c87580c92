package transform

import (
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/value"
)

// RowIdentifier computes an optional per-row identifier value emitted
// alongside each flattened cell.
type RowIdentifier struct {
	Column schema.Column
	Expr   expr.Expression
}

// Flatten emits one output row per (input row, source column) pair: the
// cell's column name and the row identifier are included only when the
// corresponding constructor field was set (§4.9).
type Flatten struct {
	Source           stream.Stream
	ValueColumn      schema.Column
	ColumnNameColumn *schema.Column
	RowID            *RowIdentifier

	columns *schema.OrderedColumnSet
}

func NewFlatten(source stream.Stream, valueColumn schema.Column, columnNameColumn *schema.Column, rowID *RowIdentifier) *Flatten {
	var cols []schema.Column
	if rowID != nil {
		cols = append(cols, rowID.Column)
	}
	if columnNameColumn != nil {
		cols = append(cols, *columnNameColumn)
	}
	cols = append(cols, valueColumn)
	return &Flatten{
		Source:           source,
		ValueColumn:      valueColumn,
		ColumnNameColumn: columnNameColumn,
		RowID:            rowID,
		columns:          schema.MustNewOrderedColumnSet(cols...),
	}
}

func (f *Flatten) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return f.columns, nil
}

func (f *Flatten) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
	rows, status, err := f.Source.Fetch(j)
	if err != nil {
		return nil, stream.Finished, err
	}
	var out []schema.Row
	for _, r := range rows {
		var rowIDValue value.Value
		if f.RowID != nil {
			rowIDValue = f.RowID.Expr.Apply(expr.EvalContext{Row: r})
		}
		srcCols := r.Columns().Columns()
		for _, srcCol := range srcCols {
			var vals []value.Value
			if f.RowID != nil {
				vals = append(vals, rowIDValue)
			}
			if f.ColumnNameColumn != nil {
				vals = append(vals, value.String(srcCol.Name()))
			}
			vals = append(vals, r.Get(srcCol))
			out = append(out, schema.NewRow(f.columns, vals...))
		}
	}
	return out, status, nil
}

func (f *Flatten) Clone() stream.Stream {
	return &Flatten{Source: f.Source.Clone(), ValueColumn: f.ValueColumn, ColumnNameColumn: f.ColumnNameColumn, RowID: f.RowID, columns: f.columns}
}
