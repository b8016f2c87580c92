package reduce

import (
	"sort"

	"github.com/rowpipe/rowpipe/value"
)

// concatReducer: value concatenation via the & operator.
type concatReducer struct {
	acc value.Value
}

func (r *concatReducer) Add(values []value.Value) {
	for _, v := range values {
		r.acc = r.acc.ApplyBinary(value.Concat, v)
	}
}
func (r *concatReducer) Result() value.Value { return r.acc }

// packReducer: append-to-pack.
type packReducer struct {
	values []value.Value
}

func (r *packReducer) Add(values []value.Value) { r.values = append(r.values, values...) }
func (r *packReducer) Result() value.Value {
	return value.String(value.EncodePack(r.values))
}

// medianKind selects which of the four median reducer variants a
// medianReducer realizes (§4.5).
type medianKind uint8

const (
	medianAvg medianKind = iota
	medianLow
	medianHigh
	medianPack
)

// medianReducer buffers all valid non-empty values and sorts at Result.
type medianReducer struct {
	kind   medianKind
	values []value.Value
}

func newMedianReducer(kind medianKind) *medianReducer { return &medianReducer{kind: kind} }

func (r *medianReducer) Add(values []value.Value) {
	for _, v := range values {
		if v.IsInvalid() || v.IsEmpty() {
			continue
		}
		r.values = append(r.values, v)
	}
}

func (r *medianReducer) Result() value.Value {
	n := len(r.values)
	if n == 0 {
		return value.Invalid
	}
	sorted := append([]value.Value(nil), r.values...)
	sort.Slice(sorted, func(i, j int) bool {
		c, ok := sorted[i].Compare(sorted[j])
		if !ok {
			return false
		}
		return c < 0
	})
	if n%2 == 1 {
		return sorted[n/2]
	}
	a, b := sorted[n/2-1], sorted[n/2]
	switch r.kind {
	case medianLow:
		return a
	case medianHigh:
		return b
	case medianPack:
		return value.String(value.EncodePack([]value.Value{a, b}))
	default: // medianAvg
		// §9 open question: averaging non-numeric values yields invalid;
		// preserved deliberately, matching the source's own FIXME.
		return a.ApplyBinary(value.Add, b).ApplyBinary(value.Divide, value.Int(2))
	}
}
