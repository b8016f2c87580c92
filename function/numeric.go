package function

import (
	"math"
	"math/rand"

	"github.com/rowpipe/rowpipe/value"
)

func init() {
	register(&Function{
		Name: "round", Arity: Between(1, 2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			n, ok := args[0].Number()
			if !ok {
				return value.Invalid
			}
			if len(args) == 1 {
				return value.Int(int64(math.Round(n)))
			}
			d, ok := args[1].Number()
			if !ok || d < 0 {
				return value.Invalid
			}
			if d == 0 {
				return value.Int(int64(math.Round(n)))
			}
			scale := math.Pow(10, d)
			return value.Double(math.Round(n*scale) / scale)
		},
	})
	fixed("parse_number", 1, func(args []value.Value) value.Value {
		f, ok := args[0].Coerced()
		if !ok {
			return value.Invalid
		}
		return value.Double(f)
	})
	fixed("power", 2, func(args []value.Value) value.Value {
		a, aok := args[0].Number()
		b, bok := args[1].Number()
		if !aok || !bok {
			return value.Invalid
		}
		return value.Double(math.Pow(a, b))
	})
	register(&Function{
		Name: "random", Arity: Fixed(0), Deterministic: false,
		apply: func(args []value.Value) value.Value { return value.Double(rand.Float64()) },
	})
	register(&Function{
		Name: "random_between", Arity: Fixed(2), Deterministic: false,
		apply: func(args []value.Value) value.Value {
			if args[0].Kind() != value.KindInt || args[1].Kind() != value.KindInt {
				return value.Invalid
			}
			a, b := args[0].AsInt(), args[1].AsInt()
			if b <= a {
				return value.Invalid
			}
			return value.Int(a + rand.Int63n(b-a+1))
		},
	})
}
