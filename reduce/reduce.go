// Package reduce implements the incremental Reducer protocol (§4.5):
// aggregators that collapse a batch (or many disjoint batches) of Values
// into one result without retaining all inputs. Reducers must be cheap to
// construct and, for aggregate-eligible functions, associative/commutative
// across batches so partitioned aggregation (§4.9) is sound regardless of
// batch arrival order.
package reduce

import "github.com/rowpipe/rowpipe/value"

// Reducer is an incremental aggregator. Add may be called multiple times
// with disjoint batches; Result must equal what a single call with the
// concatenation of all batches would have produced.
type Reducer interface {
	Add(values []value.Value)
	Result() value.Value
}

// New constructs a fresh reducer for name (one of the aggregate-eligible
// function names of §4.5), or nil if name is not aggregate-eligible.
func New(name string) Reducer {
	ctor, ok := constructors[name]
	if !ok {
		return nil
	}
	return ctor()
}

var constructors = map[string]func() Reducer{
	"sum":                 func() Reducer { return &sumReducer{} },
	"average":             func() Reducer { return &avgReducer{} },
	"min":                 func() Reducer { return newExtremeReducer(false) },
	"max":                 func() Reducer { return newExtremeReducer(true) },
	"count":               func() Reducer { return &countReducer{} },
	"count_all":           func() Reducer { return &countAllReducer{} },
	"count_distinct":      func() Reducer { return newDistinctReducer() },
	"concat":              func() Reducer { return &concatReducer{} },
	"pack":                func() Reducer { return &packReducer{} },
	"median":              func() Reducer { return newMedianReducer(medianAvg) },
	"median_low":          func() Reducer { return newMedianReducer(medianLow) },
	"median_high":         func() Reducer { return newMedianReducer(medianHigh) },
	"median_pack":         func() Reducer { return newMedianReducer(medianPack) },
	"variance_population": func() Reducer { return newVarianceReducer(false) },
	"variance_sample":     func() Reducer { return newVarianceReducer(true) },
	"stdev_population":    func() Reducer { return newStdevReducer(false) },
	"stdev_sample":        func() Reducer { return newStdevReducer(true) },
	"random_item":         func() Reducer { return &randomItemReducer{} },
}
