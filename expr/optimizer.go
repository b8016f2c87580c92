package expr

import (
	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/value"
)

// identityReducible names the aggregate-shaped functions that collapse to
// their sole argument when called with exactly one argument (§4.3).
var identityReducible = map[string]bool{
	"sum": true, "min": true, "max": true, "average": true,
	"concat": true, "pack": true, "median": true,
	"and": true, "or": true, "random_item": true,
}

// Prepare implements the §4.3 rewrite pipeline for Call nodes. Children
// are prepared bottom-up first, then rewrites are applied in sequence;
// each rewrite re-examines the (possibly already rewritten) node.
func (c *Call) Prepare() Expression {
	args := make([]Expression, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.Prepare()
	}
	node := &Call{Fn: c.Fn, Args: args}

	var rewritten Expression = node
	rewritten = rewriteIdentityReduction(rewritten)
	rewritten = rewriteFlattenAndOr(rewritten)
	rewritten = rewriteConstantAbsorption(rewritten)
	rewritten = rewriteOrOfEqualitiesToIn(rewritten)
	rewritten = rewriteNot(rewritten)
	rewritten = rewriteIdempotence(rewritten)
	rewritten = foldConstant(rewritten)
	return rewritten
}

// rewriteIdentityReduction: SUM(x), MIN(x), ... with exactly one argument
// reduce to x.
func rewriteIdentityReduction(e Expression) Expression {
	c, ok := e.(*Call)
	if !ok {
		return e
	}
	if identityReducible[c.Fn.Name] && len(c.Args) == 1 {
		return c.Args[0]
	}
	return e
}

// rewriteFlattenAndOr: nested AND(...AND(...)...) / OR(...OR(...)...) are
// flattened into a single call.
func rewriteFlattenAndOr(e Expression) Expression {
	c, ok := e.(*Call)
	if !ok {
		return e
	}
	if c.Fn.Name != "and" && c.Fn.Name != "or" {
		return e
	}
	var flat []Expression
	for _, a := range c.Args {
		if inner, ok := a.(*Call); ok && inner.Fn.Name == c.Fn.Name {
			flat = append(flat, inner.Args...)
		} else {
			flat = append(flat, a)
		}
	}
	return &Call{Fn: c.Fn, Args: flat}
}

// rewriteConstantAbsorption: AND with a constant-false argument, or OR
// with a constant-true argument, collapses to that constant.
func rewriteConstantAbsorption(e Expression) Expression {
	c, ok := e.(*Call)
	if !ok {
		return e
	}
	switch c.Fn.Name {
	case "and":
		for _, a := range c.Args {
			if lit, ok := a.(*Literal); ok && lit.Value.Kind() == value.KindBool && !lit.Value.AsBool() {
				return NewLiteral(value.Bool(false))
			}
		}
	case "or":
		for _, a := range c.Args {
			if lit, ok := a.(*Literal); ok && lit.Value.Kind() == value.KindBool && lit.Value.AsBool() {
				return NewLiteral(value.Bool(true))
			}
		}
	}
	return e
}

// rewriteOrOfEqualitiesToIn: OR(c=v1, c=v2, ...) for the same column
// reference c rewrites to IN(c, v1, ..., vn), n>=2 (§4.3). Only direct OR
// of `=` comparisons participate; OR of `<>` is deliberately left alone
// (§9 open question).
func rewriteOrOfEqualitiesToIn(e Expression) Expression {
	c, ok := e.(*Call)
	if !ok || c.Fn.Name != "or" || len(c.Args) < 2 {
		return e
	}
	var column Expression
	var rights []Expression
	for _, a := range c.Args {
		cmp, ok := a.(*Comparison)
		if !ok || cmp.Op != value.Equals {
			return e
		}
		if !isSameColumnRef(column, cmp.Left) {
			if column == nil {
				column = cmp.Left
			} else {
				return e
			}
		}
		rights = append(rights, cmp.Right)
	}
	inFn, found := lookupFn("in")
	if !found {
		return e
	}
	args := append([]Expression{column}, rights...)
	return &Call{Fn: inFn, Args: args}
}

// isSameColumnRef reports whether candidate is nil-or-equal to existing,
// where "equal" means both are Sibling (or both Foreign) references to
// the same column name.
func isSameColumnRef(existing, candidate Expression) bool {
	if existing == nil {
		return true
	}
	switch e := existing.(type) {
	case *Sibling:
		s, ok := candidate.(*Sibling)
		return ok && s.Column.Equal(e.Column)
	case *Foreign:
		f, ok := candidate.(*Foreign)
		return ok && f.Column.Equal(e.Column)
	default:
		return false
	}
}

// rewriteNot implements the three NOT rewrites of §4.3: NOT(a=b) -> a<>b,
// NOT(IN(...)) -> NOTIN(...), NOT(NOT(x)) -> x.
func rewriteNot(e Expression) Expression {
	c, ok := e.(*Call)
	if !ok || c.Fn.Name != "not" || len(c.Args) != 1 {
		return e
	}
	arg := c.Args[0]

	if cmp, ok := arg.(*Comparison); ok && cmp.Op == value.Equals {
		return &Comparison{Left: cmp.Left, Right: cmp.Right, Op: value.NotEquals}
	}
	if inner, ok := arg.(*Call); ok && inner.Fn.Name == "in" {
		notInFn, found := lookupFn("not_in")
		if found {
			return &Call{Fn: notInFn, Args: inner.Args}
		}
	}
	if inner, ok := arg.(*Call); ok && inner.Fn.Name == "not" && len(inner.Args) == 1 {
		return inner.Args[0]
	}
	return e
}

// rewriteIdempotence collapses f(f(x)) -> f(x) for idempotent functions.
func rewriteIdempotence(e Expression) Expression {
	c, ok := e.(*Call)
	if !ok || !c.Fn.Idempotent || len(c.Args) != 1 {
		return e
	}
	if inner, ok := c.Args[0].(*Call); ok && inner.Fn.Name == c.Fn.Name {
		return inner
	}
	return e
}

// foldConstant evaluates a deterministic, all-literal expression once and
// replaces it by the resulting Literal.
func foldConstant(e Expression) Expression {
	if _, alreadyLiteral := e.(*Literal); alreadyLiteral {
		return e
	}
	if e.IsConstant() {
		return NewLiteral(e.Apply(EvalContext{}))
	}
	return e
}

// Prepare implements the Comparison rewrite: fold if constant, otherwise
// prepare children and re-fold (a prepared child literal may make the
// whole comparison constant).
func (c *Comparison) Prepare() Expression {
	left := c.Left.Prepare()
	right := c.Right.Prepare()
	node := &Comparison{Left: left, Right: right, Op: c.Op}
	return foldConstant(node)
}

// lookupFn resolves a function by name via the registry; it simply
// forwards to function.Lookup.
func lookupFn(name string) (*function.Function, bool) {
	return function.Lookup(name)
}
