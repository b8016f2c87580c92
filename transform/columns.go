package transform

import (
	"sync"

	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
)

// Columns projects every row onto the requested column subset, in the
// order requested, ignoring names absent from the source schema (§4.9).
type Columns struct {
	Source    stream.Stream
	Requested []schema.Column

	once    sync.Once
	columns *schema.OrderedColumnSet
}

func NewColumns(source stream.Stream, requested []schema.Column) *Columns {
	return &Columns{Source: source, Requested: requested}
}

func (c *Columns) resolve(j *job.Job) (*schema.OrderedColumnSet, error) {
	var err error
	c.once.Do(func() {
		src, e := c.Source.Columns(j)
		if e != nil {
			err = e
			return
		}
		var present []schema.Column
		for _, req := range c.Requested {
			if src.Contains(req) {
				present = append(present, req)
			}
		}
		c.columns, err = schema.NewOrderedColumnSet(present...)
	})
	return c.columns, err
}

func (c *Columns) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return c.resolve(j)
}

func (c *Columns) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
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
		out[i] = r.Project(cols)
	}
	return out, status, nil
}

func (c *Columns) Clone() stream.Stream {
	return &Columns{Source: c.Source.Clone(), Requested: c.Requested}
}
