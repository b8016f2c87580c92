// Package job provides the cancellation token, progress aggregator, and
// logging/tracing handles threaded through every suspension point of the
// engine (stream fetches, raster mutations, dataset materialization).
package job

import (
	"sync"
	"sync/atomic"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// ProgressInterval is the row-count convention at which long-running
// operations must check cancellation and report progress.
const ProgressInterval = 512

// Job is the context passed to every fallible or blocking operation in the
// engine. It is safe for concurrent use by multiple wavefronts.
type Job struct {
	id   string
	log  *logrus.Entry
	span opentracing.Span

	cancelled int32

	mu       sync.Mutex
	progress map[string]float64
}

// New creates a Job rooted at the given tracer span (may be nil) with the
// given id, used to label log lines and metric series.
func New(id string, log *logrus.Entry, span opentracing.Span) *Job {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Job{
		id:       id,
		log:      log.WithField("job_id", id),
		span:     span,
		progress: make(map[string]float64),
	}
}

// Background returns a Job with no tracing and a standard logger, suitable
// for tests and top-level one-off operations.
func Background() *Job {
	return New("background", nil, nil)
}

// Log returns the job's structured logger.
func (j *Job) Log() *logrus.Entry { return j.log }

// StartSpan opens a child span of the job's root span (if any) with the
// given operation name; the caller must Finish() it. No stream fetch or
// raster mutation in this module calls it.
func (j *Job) StartSpan(operation string) opentracing.Span {
	if j.span == nil {
		return opentracing.NoopTracer{}.StartSpan(operation)
	}
	return opentracing.StartSpan(operation, opentracing.ChildOf(j.span.Context()))
}

// Cancel marks the job cancelled. Idempotent.
func (j *Job) Cancel() { atomic.StoreInt32(&j.cancelled, 1) }

// IsCancelled reports whether Cancel has been called. Checked at every
// progress-report point by convention (every ProgressInterval rows).
func (j *Job) IsCancelled() bool { return atomic.LoadInt32(&j.cancelled) != 0 }

// ReportProgress records a fractional completion (0..1) under key, keyed by
// the reporting instance's identity so multiple concurrent sources can
// report independently; the job aggregates by averaging known keys.
func (j *Job) ReportProgress(fraction float64, key string) {
	j.mu.Lock()
	j.progress[key] = fraction
	var sum float64
	for _, f := range j.progress {
		sum += f
	}
	mean := sum / float64(len(j.progress))
	j.mu.Unlock()
	JobProgressFraction.WithLabelValues(j.id).Set(mean)
}

// Progress returns the mean of all reported fractions, or 0 if none have
// been reported yet.
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.progress) == 0 {
		return 0
	}
	var sum float64
	for _, f := range j.progress {
		sum += f
	}
	return sum / float64(len(j.progress))
}
