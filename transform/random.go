package transform

import (
	"math/rand"
	"sync"

	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
)

// Random reservoir-samples N rows from the source and emits them all in
// finish (§4.9): on input row k (0-indexed), with probability N/(k+1) a
// uniformly-chosen reservoir slot is replaced.
type Random struct {
	Source stream.Stream
	N      int

	mu        sync.Mutex
	reservoir []schema.Row
	seen      int
	drained   bool
}

func NewRandom(source stream.Stream, n int) *Random {
	return &Random{Source: source, N: n}
}

func (r *Random) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return r.Source.Columns(j)
}

func (r *Random) Fetch(j *job.Job) ([]schema.Row, stream.Status, error) {
	r.mu.Lock()
	if r.drained {
		r.mu.Unlock()
		return nil, stream.Finished, nil
	}
	r.mu.Unlock()

	rows, status, err := r.Source.Fetch(j)
	if err != nil {
		return nil, stream.Finished, err
	}

	r.mu.Lock()
	for _, row := range rows {
		r.seen++
		if len(r.reservoir) < r.N {
			r.reservoir = append(r.reservoir, row)
			continue
		}
		if r.N <= 0 {
			continue
		}
		slot := rand.Intn(r.seen)
		if slot < r.N {
			r.reservoir[slot] = row
		}
	}
	finished := status == stream.Finished
	r.mu.Unlock()

	if !finished {
		return nil, stream.HasMore, nil
	}

	r.mu.Lock()
	out := append([]schema.Row{}, r.reservoir...)
	r.drained = true
	r.mu.Unlock()
	return out, stream.Finished, nil
}

func (r *Random) Clone() stream.Stream {
	return &Random{Source: r.Source.Clone(), N: r.N}
}
