// Package stream implements the pull-based batched Stream protocol (§4.8):
// a Fetch-per-batch source interface plus a concurrent, order-preserving
// StreamPuller, expressed with blocking calls and goroutines rather than
// the source design's callback/sink style.
package stream

import (
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/schema"
)

// Status reports whether a Stream has more rows after the batch just
// delivered.
type Status int

const (
	HasMore Status = iota
	Finished
)

// BatchSize is the default batch size used by in-memory streams (§4.8).
const BatchSize = 256

// Stream is a pull-based, resumable batch source. Fetch may be called
// concurrently by multiple wavefronts; implementations serialize their own
// state (typically a mutex) and must return in-order-correct batches --
// the ordering guarantee is enforced by the caller (StreamPuller), not by
// Stream itself, which only needs to be safe for concurrent Fetch calls.
type Stream interface {
	// Columns returns the stream's schema without consuming rows.
	Columns(j *job.Job) (*schema.OrderedColumnSet, error)
	// Fetch asks for one batch. A Finished status tells the caller no
	// further Fetch will yield rows.
	Fetch(j *job.Job) ([]schema.Row, Status, error)
	// Clone returns a fresh stream positioned at the first row.
	Clone() Stream
}
