package function

import "github.com/rowpipe/rowpipe/value"

func init() {
	register(&Function{
		Name: "not", Arity: Fixed(1), Deterministic: true, Idempotent: false,
		apply: func(args []value.Value) value.Value {
			if args[0].IsInvalid() {
				return value.Invalid
			}
			if args[0].Kind() != value.KindBool {
				return value.Invalid
			}
			return value.Bool(!args[0].AsBool())
		},
	})
	register(&Function{
		Name: "and", Arity: AtLeast(1), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			for _, a := range args {
				if a.IsInvalid() {
					return value.Invalid
				}
				if a.Kind() != value.KindBool {
					return value.Invalid
				}
				if !a.AsBool() {
					return value.Bool(false) // short-circuits at first false
				}
			}
			return value.Bool(true)
		},
	})
	register(&Function{
		Name: "or", Arity: AtLeast(1), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			for _, a := range args {
				if a.IsInvalid() {
					return value.Invalid
				}
				if a.Kind() != value.KindBool {
					return value.Invalid
				}
				if a.AsBool() {
					return value.Bool(true) // short-circuits at first true
				}
			}
			return value.Bool(false)
		},
	})
	register(&Function{
		Name: "xor", Arity: Fixed(2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			if args[0].Kind() != value.KindBool || args[1].Kind() != value.KindBool {
				return value.Invalid
			}
			return value.Bool(args[0].AsBool() != args[1].AsBool())
		},
	})
	register(&Function{
		Name: "if", Arity: Fixed(3), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			if args[0].Kind() != value.KindBool {
				return value.Invalid
			}
			if args[0].AsBool() {
				return args[1]
			}
			return args[2]
		},
	})
	register(&Function{
		Name: "coalesce", Arity: AtLeast(1), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			for _, a := range args {
				if !a.IsEmpty() && !a.IsInvalid() {
					return a
				}
			}
			return value.Empty
		},
	})
	register(&Function{
		Name: "if_error", Arity: Fixed(2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			if args[0].IsInvalid() {
				return args[1]
			}
			return args[0]
		},
	})
	register(&Function{
		Name: "in", Arity: AtLeast(2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			needle := args[0]
			for _, hay := range args[1:] {
				if needle.Equal(hay) {
					return value.Bool(true)
				}
			}
			return value.Bool(false)
		},
	})
	register(&Function{
		Name: "not_in", Arity: AtLeast(2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			needle := args[0]
			for _, hay := range args[1:] {
				if needle.Equal(hay) {
					return value.Bool(false)
				}
			}
			return value.Bool(true)
		},
	})
}
