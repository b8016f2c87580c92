package function

import (
	"github.com/rowpipe/rowpipe/reduce"
	"github.com/rowpipe/rowpipe/value"
)

// Function is an opaque, named library entry (§3/§4.4). Name is the
// canonical (lower_snake_case) identifier used by Lookup and by the
// optimizer's by-name rewrites (§4.3).
type Function struct {
	Name string
	Arity

	// Deterministic is false for random*, now, uuid, randomItem,
	// randomBetween, randomString.
	Deterministic bool

	// Idempotent is true for upper, lower, trim, absolute, capitalize,
	// floor, ceiling: f(f(x)) == f(x).
	Idempotent bool

	// NewReducer is non-nil only for aggregate-eligible functions.
	NewReducer func() reduce.Reducer

	// apply is the pure evaluator; nil for aggregate-only functions, whose
	// evaluation runs through NewReducer instead (Eval handles this).
	apply func(args []value.Value) value.Value
}

// Eval checks arity then dispatches, per §4.3 ("Call checks arity then
// dispatches"). Arity failure and any other error in evaluation collapse
// to value.Invalid, never a Go error -- per §7, per-cell errors are data.
func (f *Function) Eval(args []value.Value) value.Value {
	if !f.Accepts(len(args)) {
		return value.Invalid
	}
	if f.apply != nil {
		return f.apply(args)
	}
	if f.NewReducer != nil {
		r := f.NewReducer()
		r.Add(args)
		return r.Result()
	}
	return value.Invalid
}

// IsAggregateEligible reports whether this function has a reducer
// implementation usable by an Aggregator (§3).
func (f *Function) IsAggregateEligible() bool { return f.NewReducer != nil }

// registry holds every Function, keyed by canonical name.
var registry = map[string]*Function{}

func register(f *Function) {
	registry[f.Name] = f
}

// Lookup resolves a canonical function name.
func Lookup(name string) (*Function, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns every registered function name, for diagnostics and
// completeness tests.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func fixed(name string, n int, apply func(args []value.Value) value.Value) {
	register(&Function{Name: name, Arity: Fixed(n), Deterministic: true, apply: apply})
}

func fixedNondeterministic(name string, n int, apply func(args []value.Value) value.Value) {
	register(&Function{Name: name, Arity: Fixed(n), Deterministic: false, apply: apply})
}

func idempotentUnary(name string, apply func(v value.Value) value.Value) {
	register(&Function{
		Name: name, Arity: Fixed(1), Deterministic: true, Idempotent: true,
		apply: func(args []value.Value) value.Value { return apply(args[0]) },
	})
}

// aggregate registers a Function whose sole evaluator is the identically-
// named Reducer (reduce.New(name)) -- the §4.5 aggregate band.
func aggregate(name string) {
	register(&Function{
		Name: name, Arity: Any(), Deterministic: true,
		NewReducer: func() reduce.Reducer { return reduce.New(name) },
	})
}
