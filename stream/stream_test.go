package stream

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

func makeRows(n int, columns *schema.OrderedColumnSet) []schema.Row {
	rows := make([]schema.Row, n)
	for i := 0; i < n; i++ {
		rows[i] = schema.NewRow(columns, value.Int(int64(i)))
	}
	return rows
}

func TestMemoryStreamBatchesAndFinishes(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("N"))
	rows := makeRows(BatchSize + 10, cols)
	s := NewMemoryStream(cols, rows)
	j := job.Background()

	batch1, status1, err := s.Fetch(j)
	require.NoError(t, err)
	require.Equal(t, BatchSize, len(batch1))
	require.Equal(t, HasMore, status1)

	batch2, status2, err := s.Fetch(j)
	require.NoError(t, err)
	require.Equal(t, 10, len(batch2))
	require.Equal(t, Finished, status2)
}

func TestPullerPreservesOrderUnderConcurrency(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("N"))
	rows := makeRows(BatchSize*5+7, cols)
	s := NewMemoryStream(cols, rows)

	var mu sync.Mutex
	var delivered []schema.Row
	var doneCalled int

	p := &Puller{
		Job:            job.Background(),
		Source:         s,
		ProcessorCount: 8,
		OnReceive: func(batch []schema.Row, status Status) {
			mu.Lock()
			delivered = append(delivered, batch...)
			mu.Unlock()
		},
		OnDone: func() {
			doneCalled++
		},
	}
	p.Run()

	require.Equal(t, 1, doneCalled)
	require.Equal(t, len(rows), len(delivered))
	for i, r := range delivered {
		require.Equal(t, int64(i), r.At(0).AsInt(), fmt.Sprintf("row %d out of order", i))
	}
}

func TestPullerAbortsOnError(t *testing.T) {
	failing := &erroringStream{failAfter: 2}
	var errCalled, doneCalled int
	p := &Puller{
		Job:            job.Background(),
		Source:         failing,
		ProcessorCount: 1,
		OnError:        func(err error) { errCalled++ },
		OnDone:         func() { doneCalled++ },
	}
	p.Run()
	require.Equal(t, 1, errCalled)
	require.Equal(t, 0, doneCalled)
}

type erroringStream struct {
	mu        sync.Mutex
	calls     int
	failAfter int
}

func (e *erroringStream) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return schema.MustNewOrderedColumnSet(), nil
}

func (e *erroringStream) Fetch(j *job.Job) ([]schema.Row, Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.calls > e.failAfter {
		return nil, Finished, fmt.Errorf("boom")
	}
	return nil, HasMore, nil
}

func (e *erroringStream) Clone() Stream { return e }

func TestDrainAll(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("N"))
	rows := makeRows(30, cols)
	s := NewMemoryStream(cols, rows)
	got, err := DrainAll(job.Background(), s, 4)
	require.NoError(t, err)
	require.Equal(t, 30, len(got))
}
