package expr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

func call(name string, args ...Expression) *Call {
	fn, ok := function.Lookup(name)
	if !ok {
		panic("unknown function " + name)
	}
	return NewCall(fn, args...)
}

func eq(left Expression, right Expression) *Comparison {
	return NewComparison(left, value.Equals, right)
}

func TestOrOfEqualitiesRewritesToIn(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	e := call("or", eq(a, NewLiteral(value.Int(1))), eq(a, NewLiteral(value.Int(2))), eq(a, NewLiteral(value.Int(3))))
	prepared := e.Prepare()
	c, ok := prepared.(*Call)
	require.True(t, ok)
	require.Equal(t, "in", c.Fn.Name)
	require.Len(t, c.Args, 4)
}

func TestNotInRewrite(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	in := call("in", a, NewLiteral(value.Int(1)), NewLiteral(value.Int(2)))
	e := call("not", in)
	prepared := e.Prepare()
	c, ok := prepared.(*Call)
	require.True(t, ok)
	require.Equal(t, "not_in", c.Fn.Name)
}

func TestNotEqualsRewrite(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	e := call("not", eq(a, NewLiteral(value.Int(1))))
	prepared := e.Prepare()
	cmp, ok := prepared.(*Comparison)
	require.True(t, ok)
	require.Equal(t, value.NotEquals, cmp.Op)
}

func TestDoubleNotCollapses(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	e := call("not", call("not", a))
	prepared := e.Prepare()
	require.Equal(t, a, prepared)
}

func TestIdentityReductionOnSingleArgAggregator(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	e := call("sum", a)
	require.Equal(t, a, e.Prepare())
}

func TestAndFlatteningAndAbsorption(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	b := NewSibling(schema.NewColumn("B"))
	inner := call("and", eq(a, NewLiteral(value.Int(1))), eq(b, NewLiteral(value.Int(2))))
	outer := call("and", inner, NewLiteral(value.Bool(true)))
	prepared := outer.Prepare()
	c, ok := prepared.(*Call)
	require.True(t, ok)
	require.Equal(t, "and", c.Fn.Name)
	require.Len(t, c.Args, 3) // flattened: a=1, b=2, true

	withFalse := call("and", inner, NewLiteral(value.Bool(false)))
	require.Equal(t, value.Bool(false), withFalse.Prepare().(*Literal).Value)
}

func TestIdempotenceCollapseInTree(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	e := call("upper", call("upper", a))
	prepared := e.Prepare()
	c, ok := prepared.(*Call)
	require.True(t, ok)
	require.Equal(t, "upper", c.Fn.Name)
	require.Len(t, c.Args, 1)
	_, isInnerCall := c.Args[0].(*Call)
	require.False(t, isInnerCall)
}

func TestConstantFolding(t *testing.T) {
	e := call("upper", NewLiteral(value.String("hi")))
	prepared := e.Prepare()
	lit, ok := prepared.(*Literal)
	require.True(t, ok)
	require.Equal(t, "HI", lit.Value.AsString())
}

func TestOptimizerSoundnessProperty(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("A"), schema.NewColumn("B"))
	a := NewSibling(schema.NewColumn("A"))
	exprs := []Expression{
		call("not", call("not", a)),
		call("or", eq(a, NewLiteral(value.Int(1))), eq(a, NewLiteral(value.Int(2)))),
		call("sum", a),
		call("upper", call("upper", a)),
	}
	rows := []schema.Row{
		schema.NewRow(cols, value.Int(1), value.String("x")),
		schema.NewRow(cols, value.Int(2), value.String("y")),
		schema.NewRow(cols, value.Int(3), value.String("z")),
	}
	for _, e := range exprs {
		prepared := e.Prepare()
		for _, r := range rows {
			ctx := EvalContext{Row: r}
			require.True(t, e.Apply(ctx).Equal(prepared.Apply(ctx)) ||
				(e.Apply(ctx).IsInvalid() && prepared.Apply(ctx).IsInvalid()))
		}
	}
}

func TestSiblingDependencies(t *testing.T) {
	a := NewSibling(schema.NewColumn("A"))
	b := NewSibling(schema.NewColumn("B"))
	e := call("and", eq(a, NewLiteral(value.Int(1))), eq(b, NewLiteral(value.Int(2))))
	deps := e.SiblingDependencies()
	require.Len(t, deps, 2)
}

func TestForeignFiltering(t *testing.T) {
	leftCol := schema.NewColumn("A")
	rightCol := schema.NewColumn("A")
	e := eq(NewSibling(leftCol), NewForeign(rightCol))
	cols := schema.MustNewOrderedColumnSet(leftCol)
	row := schema.NewRow(cols, value.Int(5))
	filtered := ExpressionForForeignFiltering(e, row)
	cmp, ok := filtered.(*Comparison)
	require.True(t, ok)
	lit, ok := cmp.Left.(*Literal)
	require.True(t, ok)
	require.Equal(t, int64(5), lit.Value.AsInt())
	_, ok = cmp.Right.(*Sibling)
	require.True(t, ok)
}

func TestDeriveHashComparison(t *testing.T) {
	e := eq(NewSibling(schema.NewColumn("A")), NewForeign(schema.NewColumn("B")))
	hc, ok := DeriveHashComparison(e)
	require.True(t, ok)
	_, isSibling := hc.LeftExpr.(*Sibling)
	require.True(t, isSibling)
	_, isSibling2 := hc.RightExpr.(*Sibling)
	require.True(t, isSibling2)
}
