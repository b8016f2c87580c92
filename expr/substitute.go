package expr

import (
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

// Substitute rewrites every Sibling(c) that matches one of the keys in
// replacements to that entry's expression; used by §4.7's filter/calculate
// commutation (substituting a calculated column's target with its
// calculation expression before commuting).
func Substitute(e Expression, replacements map[string]Expression) Expression {
	switch n := e.(type) {
	case *Sibling:
		if r, ok := replacements[n.Column.Key()]; ok {
			return r
		}
		return n
	case *Call:
		args := make([]Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = Substitute(a, replacements)
		}
		return &Call{Fn: n.Fn, Args: args}
	case *Comparison:
		return &Comparison{
			Left:  Substitute(n.Left, replacements),
			Right: Substitute(n.Right, replacements),
			Op:    n.Op,
		}
	default:
		return e
	}
}

// ExpressionForForeignFiltering implements §4.3's
// expression_for_foreign_filtering(row): it produces an expression that
// depends only on foreigns, by substituting every Sibling reference with
// the literal value taken from row, and reinterpreting every Foreign
// reference as a Sibling (since the resulting expression is handed to the
// foreign/right-hand dataset, where those columns are the row's own
// siblings). Used by the hash-join puller to push a left-side filter down
// to the right side (§4.9 Join transformer).
func ExpressionForForeignFiltering(e Expression, row schema.Row) Expression {
	switch n := e.(type) {
	case *Sibling:
		return NewLiteral(row.Get(n.Column))
	case *Foreign:
		return NewSibling(n.Column)
	case *Call:
		args := make([]Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = ExpressionForForeignFiltering(a, row)
		}
		return &Call{Fn: n.Fn, Args: args}
	case *Comparison:
		return &Comparison{
			Left:  ExpressionForForeignFiltering(n.Left, row),
			Right: ExpressionForForeignFiltering(n.Right, row),
			Op:    n.Op,
		}
	default:
		return e
	}
}

// HashComparison is a derived, failable factoring of an equality into a
// (left, right) pair where left depends only on siblings and right only on
// foreigns (rewritten into siblings) -- §3. No operator is stored: the
// comparison is always equality. Currently derived only from a
// single top-level equality; anything else fails and the caller should
// fall back to a cartesian join.
type HashComparison struct {
	LeftExpr  Expression
	RightExpr Expression // rewritten so Foreign(c) -> Sibling(c)
}

// DeriveHashComparison attempts the factoring described above.
func DeriveHashComparison(e Expression) (HashComparison, bool) {
	cmp, ok := e.(*Comparison)
	if !ok || cmp.Op != value.Equals {
		return HashComparison{}, false
	}
	leftDependsOnlyOnSiblings := cmp.Left.DependsOnSiblings() && !cmp.Left.DependsOnForeigns()
	rightDependsOnlyOnForeigns := cmp.Right.DependsOnForeigns() && !cmp.Right.DependsOnSiblings()
	if leftDependsOnlyOnSiblings && rightDependsOnlyOnForeigns {
		return HashComparison{LeftExpr: cmp.Left, RightExpr: foreignToSibling(cmp.Right)}, true
	}
	// Try the mirrored shape: left is foreign-only, right is sibling-only.
	leftIsForeignOnly := cmp.Left.DependsOnForeigns() && !cmp.Left.DependsOnSiblings()
	rightIsSiblingOnly := cmp.Right.DependsOnSiblings() && !cmp.Right.DependsOnForeigns()
	if leftIsForeignOnly && rightIsSiblingOnly {
		return HashComparison{LeftExpr: cmp.Right, RightExpr: foreignToSibling(cmp.Left)}, true
	}
	return HashComparison{}, false
}

func foreignToSibling(e Expression) Expression {
	switch n := e.(type) {
	case *Foreign:
		return NewSibling(n.Column)
	case *Call:
		args := make([]Expression, len(n.Args))
		for i, a := range n.Args {
			args[i] = foreignToSibling(a)
		}
		return &Call{Fn: n.Fn, Args: args}
	case *Comparison:
		return &Comparison{Left: foreignToSibling(n.Left), Right: foreignToSibling(n.Right), Op: n.Op}
	default:
		return e
	}
}
