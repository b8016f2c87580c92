package stream

import (
	"runtime"
	"sync"

	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
)

type wavefrontResult struct {
	id     int
	rows   []schema.Row
	status Status
	err    error
}

// Puller drives up to ProcessorCount concurrent Fetch wavefronts against
// Source and delivers their responses, in order, to OnReceive (§4.8).
// OnDone fires exactly once, after every launched wavefront's response has
// been delivered and the source reported Finished. OnError fires at most
// once and aborts all further wavefront launches.
type Puller struct {
	Job            *job.Job
	Source         Stream
	ProcessorCount int
	OnReceive      func(rows []schema.Row, status Status)
	OnDone         func()
	OnError        func(err error)
}

// Run executes the puller to completion, blocking until OnDone or OnError
// has fired.
func (p *Puller) Run() {
	processors := p.ProcessorCount
	if processors <= 0 {
		processors = runtime.GOMAXPROCS(0)
	}
	if processors < 1 {
		processors = 1
	}

	results := make(chan wavefrontResult)

	// Batch content is bound to the moment Source.Fetch is actually
	// invoked (e.g. MemoryStream's internal position), not to the
	// wavefront id -- left to goroutine scheduling, a later id could win
	// the source's internal lock before an earlier one and pull an
	// earlier batch. dispatch is a strict turnstile forcing id N's call
	// into Source.Fetch to happen only after id N-1's has returned, so
	// batch N is always the one wavefront id N delivers.
	var dispatchMu sync.Mutex
	dispatchCond := sync.NewCond(&dispatchMu)
	nextDispatch := 0

	launch := func(id int) {
		job.WavefrontsActive.Inc()
		go func() {
			defer job.WavefrontsActive.Dec()
			dispatchMu.Lock()
			for nextDispatch != id {
				dispatchCond.Wait()
			}
			rows, status, err := p.Source.Fetch(p.Job)
			nextDispatch++
			dispatchCond.Broadcast()
			dispatchMu.Unlock()
			results <- wavefrontResult{id: id, rows: rows, status: status, err: err}
		}()
	}

	nextID := 0
	inFlight := 0
	for i := 0; i < processors; i++ {
		launch(nextID)
		nextID++
		inFlight++
	}

	buffered := make(map[int]wavefrontResult)
	lastSinked := -1
	aborted := false
	finished := false

	for inFlight > 0 {
		res := <-results
		inFlight--
		buffered[res.id] = res

		for {
			r, ok := buffered[lastSinked+1]
			if !ok {
				break
			}
			delete(buffered, lastSinked+1)
			lastSinked++
			if aborted {
				continue
			}
			if r.err != nil {
				aborted = true
				if p.OnError != nil {
					p.OnError(r.err)
				}
				continue
			}
			job.RowsStreamedTotal.Add(float64(len(r.rows)))
			if p.OnReceive != nil {
				p.OnReceive(r.rows, r.status)
			}
			if r.status == Finished {
				finished = true
			} else if !finished {
				launch(nextID)
				nextID++
				inFlight++
			}
		}
	}

	if !aborted && p.OnDone != nil {
		p.OnDone()
	}
}

// DrainAll runs src to completion via a Puller and returns every row in
// source order, as a convenience for callers that just want the whole
// result (e.g. raster drains, Dataset.Raster()).
func DrainAll(j *job.Job, src Stream, processorCount int) ([]schema.Row, error) {
	var all []schema.Row
	var outerErr error
	p := &Puller{
		Job:            j,
		Source:         src,
		ProcessorCount: processorCount,
		OnReceive: func(rows []schema.Row, status Status) {
			all = append(all, rows...)
		},
		OnError: func(err error) {
			outerErr = err
		},
	}
	p.Run()
	if outerErr != nil {
		return nil, outerErr
	}
	return all, nil
}
