package function

import (
	"math"

	"github.com/rowpipe/rowpipe/value"
)

// unaryMath registers f(x) -> numeric, invalid on non-numeric input,
// per the "Unary math" band of §4.4.
func unaryMath(name string, fn func(float64) float64) {
	fixed(name, 1, func(args []value.Value) value.Value {
		n, ok := args[0].Number()
		if !ok {
			return value.Invalid
		}
		return value.Double(fn(n))
	})
}

func init() {
	unaryMath("negate", func(x float64) float64 { return -x })
	fixed("abs", 1, func(args []value.Value) value.Value {
		switch args[0].Kind() {
		case value.KindInt:
			n := args[0].AsInt()
			if n < 0 {
				n = -n
			}
			return value.Int(n)
		default:
			n, ok := args[0].Number()
			if !ok {
				return value.Invalid
			}
			return value.Double(math.Abs(n))
		}
	})
	unaryMath("sqrt", math.Sqrt)
	unaryMath("sin", math.Sin)
	unaryMath("cos", math.Cos)
	unaryMath("tan", math.Tan)
	unaryMath("sinh", math.Sinh)
	unaryMath("cosh", math.Cosh)
	unaryMath("tanh", math.Tanh)
	unaryMath("asin", math.Asin)
	unaryMath("acos", math.Acos)
	unaryMath("atan", math.Atan)
	unaryMath("exp", math.Exp)
	unaryMath("ln", math.Log)
	register(&Function{
		Name: "log", Arity: Between(1, 2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			n, ok := args[0].Number()
			if !ok {
				return value.Invalid
			}
			base := 10.0
			if len(args) == 2 {
				b, ok := args[1].Number()
				if !ok {
					return value.Invalid
				}
				base = b
			}
			return value.Double(math.Log(n) / math.Log(base))
		},
	})

	idempotentUnary("floor", func(v value.Value) value.Value {
		n, ok := v.Number()
		if !ok {
			return value.Invalid
		}
		return value.Int(int64(math.Floor(n)))
	})
	idempotentUnary("ceiling", func(v value.Value) value.Value {
		n, ok := v.Number()
		if !ok {
			return value.Invalid
		}
		return value.Int(int64(math.Ceil(n)))
	})
	idempotentUnary("absolute", func(v value.Value) value.Value {
		n, ok := v.Number()
		if !ok {
			return value.Invalid
		}
		return value.Double(math.Abs(n))
	})
	fixed("sign", 1, func(args []value.Value) value.Value {
		n, ok := args[0].Number()
		if !ok {
			return value.Invalid
		}
		switch {
		case n > 0:
			return value.Int(1)
		case n < 0:
			return value.Int(-1)
		default:
			return value.Int(0)
		}
	})
}
