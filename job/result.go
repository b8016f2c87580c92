package job

import "github.com/pkg/errors"

// Result is the Fallible<T> of §7: either a successful value or a
// human-readable failure message (optionally wrapping a cause). Plan-level
// errors (schema errors, streaming errors, drop-on-unsupported-target) are
// represented this way; per-cell evaluation errors are never Results, they
// are value.Invalid and propagate as data (see value package).
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] { return Result[T]{value: v} }

// Failuref builds a failed Result from a formatted message.
func Failuref[T any](format string, args ...any) Result[T] {
	return Result[T]{err: errors.Errorf(format, args...)}
}

// Failed wraps an existing error as a failed Result, preserving its cause
// chain for %+v / errors.Cause.
func Failed[T any](err error) Result[T] { return Result[T]{err: err} }

// Get returns the value and error in the conventional Go two-value form.
func (r Result[T]) Get() (T, error) { return r.value, r.err }

// IsFailure reports whether this Result carries a failure message.
func (r Result[T]) IsFailure() bool { return r.err != nil }

// Err returns the wrapped error, or nil on success.
func (r Result[T]) Err() error { return r.err }
