package transform

import (
	"sync"

	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
)

// CalculateTarget pairs a target column with the expression computing it;
// Identity nodes inside Expr read the column's current value (§4.9).
type CalculateTarget struct {
	Column schema.Column
	Expr   expr.Expression
}

// Calculate writes one or more computed columns into every row, appending
// new columns as needed on first use. Expressions are prepared once at
// construction (§4.9).
type Calculate struct {
	Source  stream.Stream
	Targets []CalculateTarget

	once    sync.Once
	columns *schema.OrderedColumnSet
}

func NewCalculate(source stream.Stream, targets []CalculateTarget) *Calculate {
	prepared := make([]CalculateTarget, len(targets))
	for i, t := range targets {
		prepared[i] = CalculateTarget{Column: t.Column, Expr: t.Expr.Prepare()}
	}
	return &Calculate{Source: source, Targets: prepared}
}

func (c *Calculate) resolve(j *job.Job) (*schema.OrderedColumnSet, error) {
	var err error
	c.once.Do(func() {
		src, e := c.Source.Columns(j)
		if e != nil {
			err = e
			return
		}
		var add []schema.Column
		for _, t := range c.Targets {
			if !src.Contains(t.Column) {
				add = append(add, t.Column)
			}
		}
		c.columns, err = src.With(add...)
	})
	return c.columns, err
}

func (c *Calculate) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return c.resolve(j)
}

func (c *Calculate) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
	cols, err := c.resolve(j)
	if err != nil {
		return nil, stream.Finished, err
	}
	rows, status, err := c.Source.Fetch(j)
	if err != nil {
		return nil, stream.Finished, err
	}
	out := make([]schema.Row, len(rows))
	for i, r := range rows {
		widened := r.Project(cols)
		for _, t := range c.Targets {
			current := widened.Get(t.Column)
			v := t.Expr.Apply(expr.EvalContext{Row: widened, Input: current})
			widened = widened.Set(t.Column, v)
		}
		out[i] = widened
	}
	return out, status, nil
}

func (c *Calculate) Clone() stream.Stream {
	return &Calculate{Source: c.Source.Clone(), Targets: c.Targets, columns: c.columns}
}
