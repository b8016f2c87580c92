package function

import (
	uuid "github.com/satori/go.uuid"

	"github.com/rowpipe/rowpipe/sequence"
	"github.com/rowpipe/rowpipe/value"
)

func init() {
	register(&Function{
		Name: "uuid", Arity: Fixed(0), Deterministic: false,
		apply: func(args []value.Value) value.Value {
			return value.String(uuid.NewV4().String())
		},
	})
	register(&Function{
		Name: "random_string", Arity: Fixed(1), Deterministic: false,
		apply: func(args []value.Value) value.Value {
			if args[0].Kind() != value.KindString {
				return value.Invalid
			}
			n, err := sequence.Parse(args[0].AsString())
			if err != nil {
				return value.Invalid
			}
			return value.String(n.Random())
		},
	})
}
