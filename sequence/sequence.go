// Package sequence implements the regex-like mini-language of §4.10: a
// parser producing a finite or infinite Value sequence, used by the
// random_string function and by column-seed streams.
package sequence

import (
	"math/big"
	"math/rand"

	"github.com/rowpipe/rowpipe/value"
)

// Node is a compiled sequence expression.
type Node interface {
	// Iter returns the sequence in lexicographic order (right-inner: the
	// last position cycles fastest for concatenation).
	Iter() func(yield func(string) bool)
	// Random returns one uniformly-random member.
	Random() string
	// Cardinality returns the exact member count, or (0, false) if it is
	// unbounded (>= math.MaxInt64, per §4.10's "None if >= Int::MAX").
	Cardinality() (int64, bool)
}

// literal is a single fixed string (an escape or a bare character run).
type literal struct{ s string }

func (l literal) Iter() func(yield func(string) bool) {
	return func(yield func(string) bool) { yield(l.s) }
}
func (l literal) Random() string                { return l.s }
func (l literal) Cardinality() (int64, bool)     { return 1, true }

// choice is a character class, e.g. [abc] or [a-z].
type choice struct{ chars []rune }

func (c choice) Iter() func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for _, r := range c.chars {
			if !yield(string(r)) {
				return
			}
		}
	}
}
func (c choice) Random() string {
	if len(c.chars) == 0 {
		return ""
	}
	return string(c.chars[rand.Intn(len(c.chars))])
}
func (c choice) Cardinality() (int64, bool) { return int64(len(c.chars)), true }

// concat is sequential concatenation "ab": right-inner iteration, the
// rightmost node cycles fastest.
type concat struct{ parts []Node }

func (c concat) Iter() func(yield func(string) bool) {
	return func(yield func(string) bool) {
		if len(c.parts) == 0 {
			yield("")
			return
		}
		var rec func(i int, prefix string) bool
		rec = func(i int, prefix string) bool {
			if i == len(c.parts) {
				return yield(prefix)
			}
			cont := true
			c.parts[i].Iter()(func(s string) bool {
				cont = rec(i+1, prefix+s)
				return cont
			})
			return cont
		}
		rec(0, "")
	}
}
func (c concat) Random() string {
	var sb []byte
	for _, p := range c.parts {
		sb = append(sb, p.Random()...)
	}
	return string(sb)
}
func (c concat) Cardinality() (int64, bool) {
	total := big.NewInt(1)
	for _, p := range c.parts {
		n, ok := p.Cardinality()
		if !ok {
			return 0, false
		}
		total.Mul(total, big.NewInt(n))
		if !total.IsInt64() {
			return 0, false
		}
	}
	return total.Int64(), true
}

// alternation is "a|b": yields a's values, then b's.
type alternation struct{ options []Node }

func (a alternation) Iter() func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for _, o := range a.options {
			cont := true
			o.Iter()(func(s string) bool {
				cont = yield(s)
				return cont
			})
			if !cont {
				return
			}
		}
	}
}
func (a alternation) Random() string {
	return a.options[rand.Intn(len(a.options))].Random()
}
func (a alternation) Cardinality() (int64, bool) {
	var total int64
	for _, o := range a.options {
		n, ok := o.Cardinality()
		if !ok {
			return 0, false
		}
		total += n
	}
	return total, true
}

// maybe is "x?": two alternatives, empty or x.
func maybeNode(n Node) Node {
	return alternation{options: []Node{literal{s: ""}, n}}
}

// repeat is "x{n}": x concatenated with itself n times.
func repeatNode(n Node, count int) Node {
	parts := make([]Node, count)
	for i := range parts {
		parts[i] = n
	}
	return concat{parts: parts}
}

// AsValue renders a sequence member as a string Value.
func AsValue(s string) value.Value { return value.String(s) }
