package stream

import (
	"sync"

	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
)

// MemoryStream streams over a fixed, in-memory row slice in BatchSize
// chunks. It is the leaf source used to bridge a materialized Raster (or
// any other in-memory row set) into the streaming world.
type MemoryStream struct {
	mu      sync.Mutex
	rows    []schema.Row
	columns *schema.OrderedColumnSet
	pos     int
	batch   int
}

// NewMemoryStream builds a stream over rows with the given schema.
func NewMemoryStream(columns *schema.OrderedColumnSet, rows []schema.Row) *MemoryStream {
	return &MemoryStream{columns: columns, rows: rows, batch: BatchSize}
}

func (s *MemoryStream) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return s.columns, nil
}

func (s *MemoryStream) Fetch(j *job.Job) ([]schema.Row, Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j != nil && j.IsCancelled() {
		return nil, Finished, nil
	}
	if s.pos >= len(s.rows) {
		return nil, Finished, nil
	}
	end := s.pos + s.batch
	if end > len(s.rows) {
		end = len(s.rows)
	}
	batch := s.rows[s.pos:end]
	s.pos = end
	status := HasMore
	if s.pos >= len(s.rows) {
		status = Finished
	}
	if j != nil {
		j.ReportProgress(float64(s.pos)/float64(max(1, len(s.rows))), "memory-stream")
	}
	return batch, status, nil
}

func (s *MemoryStream) Clone() Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &MemoryStream{columns: s.columns, rows: s.rows, batch: s.batch}
}
