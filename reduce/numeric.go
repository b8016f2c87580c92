package reduce

import (
	"math"
	"math/rand"

	"github.com/rowpipe/rowpipe/value"
)

// sumReducer: running numeric sum, ignoring invalid; empty treated as 0.
type sumReducer struct {
	sum   float64
	isInt bool
	seen  bool
}

func (r *sumReducer) Add(values []value.Value) {
	for _, v := range values {
		if v.IsInvalid() {
			continue
		}
		if v.IsEmpty() {
			continue
		}
		n, ok := v.Number()
		if !ok {
			continue
		}
		if !r.seen {
			r.isInt = v.Kind() == value.KindInt
		} else if v.Kind() != value.KindInt {
			r.isInt = false
		}
		r.seen = true
		r.sum += n
	}
}

func (r *sumReducer) Result() value.Value {
	if r.isInt {
		return value.Int(int64(r.sum))
	}
	return value.Double(r.sum)
}

// avgReducer: running sum + count; empty input -> invalid.
type avgReducer struct {
	sum   float64
	count int64
}

func (r *avgReducer) Add(values []value.Value) {
	for _, v := range values {
		if v.IsInvalid() || v.IsEmpty() {
			continue
		}
		n, ok := v.Number()
		if !ok {
			continue
		}
		r.sum += n
		r.count++
	}
}

func (r *avgReducer) Result() value.Value {
	if r.count == 0 {
		return value.Invalid
	}
	return value.Double(r.sum / float64(r.count))
}

// extremeReducer: running min or max over valid values; initial state
// invalid.
type extremeReducer struct {
	max     bool
	current value.Value
	has     bool
}

func newExtremeReducer(max bool) *extremeReducer {
	return &extremeReducer{max: max, current: value.Invalid}
}

func (r *extremeReducer) Add(values []value.Value) {
	for _, v := range values {
		if v.IsInvalid() || v.IsEmpty() {
			continue
		}
		if !r.has {
			r.current = v
			r.has = true
			continue
		}
		c, ok := r.current.Compare(v)
		if !ok {
			continue
		}
		if (r.max && c < 0) || (!r.max && c > 0) {
			r.current = v
		}
	}
}

func (r *extremeReducer) Result() value.Value {
	if !r.has {
		return value.Invalid
	}
	return r.current
}

// countReducer: number of arguments whose numeric projection succeeds.
type countReducer struct{ n int64 }

func (r *countReducer) Add(values []value.Value) {
	for _, v := range values {
		if _, ok := v.Number(); ok {
			r.n++
		}
	}
}
func (r *countReducer) Result() value.Value { return value.Int(r.n) }

// countAllReducer: number of arguments, including invalid/empty.
type countAllReducer struct{ n int64 }

func (r *countAllReducer) Add(values []value.Value) { r.n += int64(len(values)) }
func (r *countAllReducer) Result() value.Value      { return value.Int(r.n) }

// distinctReducer: set of valid non-empty values; result is its size.
type distinctReducer struct {
	seen map[uint64][]value.Value
}

func newDistinctReducer() *distinctReducer {
	return &distinctReducer{seen: make(map[uint64][]value.Value)}
}

func (r *distinctReducer) Add(values []value.Value) {
	for _, v := range values {
		if v.IsInvalid() || v.IsEmpty() {
			continue
		}
		h := v.Hash()
		bucket := r.seen[h]
		found := false
		for _, existing := range bucket {
			if existing.Equal(v) {
				found = true
				break
			}
		}
		if !found {
			r.seen[h] = append(bucket, v)
		}
	}
}

func (r *distinctReducer) Result() value.Value {
	var n int64
	for _, bucket := range r.seen {
		n += int64(len(bucket))
	}
	return value.Int(n)
}

// varianceReducer buffers numeric values; sample variance undefined on
// n<=1; empty input -> invalid; any non-numeric value marks the reducer
// permanently invalid.
type varianceReducer struct {
	sample  bool
	values  []float64
	invalid bool
}

func newVarianceReducer(sample bool) *varianceReducer { return &varianceReducer{sample: sample} }

func (r *varianceReducer) Add(values []value.Value) {
	for _, v := range values {
		if v.IsEmpty() {
			continue
		}
		if v.IsInvalid() {
			r.invalid = true
			continue
		}
		n, ok := v.Number()
		if !ok {
			r.invalid = true
			continue
		}
		r.values = append(r.values, n)
	}
}

func (r *varianceReducer) variance() (float64, bool) {
	if r.invalid || len(r.values) == 0 {
		return 0, false
	}
	denom := len(r.values)
	if r.sample {
		denom--
	}
	if denom <= 0 {
		return 0, false
	}
	var mean float64
	for _, n := range r.values {
		mean += n
	}
	mean /= float64(len(r.values))
	var sumSq float64
	for _, n := range r.values {
		d := n - mean
		sumSq += d * d
	}
	return sumSq / float64(denom), true
}

func (r *varianceReducer) Result() value.Value {
	v, ok := r.variance()
	if !ok {
		return value.Invalid
	}
	return value.Double(v)
}

type stdevReducer struct{ v *varianceReducer }

func newStdevReducer(sample bool) *stdevReducer { return &stdevReducer{v: newVarianceReducer(sample)} }
func (r *stdevReducer) Add(values []value.Value) { r.v.Add(values) }
func (r *stdevReducer) Result() value.Value {
	variance, ok := r.v.variance()
	if !ok {
		return value.Invalid
	}
	return value.Double(math.Sqrt(variance))
}

// randomItemReducer retains a uniform-random sample of size 1 via
// reservoir sampling so it need not buffer every input.
type randomItemReducer struct {
	chosen value.Value
	seen   int64
	has    bool
}

func (r *randomItemReducer) Add(values []value.Value) {
	for _, v := range values {
		r.seen++
		if rand.Int63n(r.seen) == 0 {
			r.chosen = v
			r.has = true
		}
	}
}

func (r *randomItemReducer) Result() value.Value {
	if !r.has {
		return value.Invalid
	}
	return r.chosen
}
