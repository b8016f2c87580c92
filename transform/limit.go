package transform

import (
	"sync"

	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
)

// Limit passes rows until exactly N have been delivered, then reports
// Finished even if the source has more (§4.9).
type Limit struct {
	Source stream.Stream
	N      int

	mu       sync.Mutex
	position int
}

func NewLimit(source stream.Stream, n int) *Limit {
	return &Limit{Source: source, N: n}
}

func (l *Limit) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return l.Source.Columns(j)
}

func (l *Limit) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
	l.mu.Lock()
	if l.position >= l.N {
		l.mu.Unlock()
		return nil, stream.Finished, nil
	}
	l.mu.Unlock()

	rows, status, err := l.Source.Fetch(j)
	if err != nil {
		return nil, stream.Finished, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	remaining := l.N - l.position
	if remaining <= 0 {
		return nil, stream.Finished, nil
	}
	if len(rows) > remaining {
		rows = rows[:remaining]
	}
	l.position += len(rows)
	if l.position >= l.N {
		return rows, stream.Finished, nil
	}
	return rows, status, nil
}

func (l *Limit) Clone() stream.Stream {
	return &Limit{Source: l.Source.Clone(), N: l.N}
}

// Offset skips the first K rows, regardless of batch boundaries.
type Offset struct {
	Source stream.Stream
	K      int

	mu       sync.Mutex
	position int
}

func NewOffset(source stream.Stream, k int) *Offset {
	return &Offset{Source: source, K: k}
}

func (o *Offset) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return o.Source.Columns(j)
}

func (o *Offset) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
	rows, status, err := o.Source.Fetch(j)
	if err != nil {
		return nil, stream.Finished, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	skip := o.K - o.position
	if skip < 0 {
		skip = 0
	}
	o.position += len(rows)
	if skip >= len(rows) {
		return nil, status, nil
	}
	return rows[skip:], status, nil
}

func (o *Offset) Clone() stream.Stream {
	return &Offset{Source: o.Source.Clone(), K: o.K}
}
