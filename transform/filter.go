// Package transform implements the stream transformer hierarchy of §4.9:
// stateless and stateful wrappers over a stream.Stream that filter, limit,
// reshape, join, and aggregate rows in flight.
package transform

import (
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
)

// Filter drops rows where Condition does not evaluate to true. Stateless.
type Filter struct {
	Source    stream.Stream
	Condition expr.Expression
}

func NewFilter(source stream.Stream, condition expr.Expression) *Filter {
	return &Filter{Source: source, Condition: condition.Prepare()}
}

func (f *Filter) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return f.Source.Columns(j)
}

func (f *Filter) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
	rows, status, err := f.Source.Fetch(j)
	if err != nil {
		return nil, stream.Finished, err
	}
	var kept []schema.Row
	for _, r := range rows {
		v := f.Condition.Apply(expr.EvalContext{Row: r})
		if !v.IsInvalid() && v.AsBool() {
			kept = append(kept, r)
		}
	}
	return kept, status, nil
}

func (f *Filter) Clone() stream.Stream {
	return &Filter{Source: f.Source.Clone(), Condition: f.Condition}
}
