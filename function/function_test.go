package function

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/value"
)

func TestIdempotence(t *testing.T) {
	cases := []struct {
		name string
		arg  value.Value
	}{
		{"upper", value.String("abc")},
		{"lower", value.String("ABC")},
		{"trim", value.String("  x  ")},
		{"absolute", value.Double(-3.5)},
		{"capitalize", value.String("hello world")},
		{"floor", value.Double(3.7)},
		{"ceiling", value.Double(3.2)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, ok := Lookup(c.name)
			require.True(t, ok)
			require.True(t, f.Idempotent)
			once := f.Eval([]value.Value{c.arg})
			twice := f.Eval([]value.Value{once})
			require.True(t, once.Equal(twice))
		})
	}
}

func TestDeterminismFlags(t *testing.T) {
	nondeterministic := []string{"random", "now", "uuid", "random_item", "random_between", "random_string"}
	for _, name := range nondeterministic {
		f, ok := Lookup(name)
		require.True(t, ok, name)
		require.False(t, f.Deterministic, name)
	}
	deterministic := []string{"upper", "sum", "if", "round", "hilbert_xy_to_d"}
	for _, name := range deterministic {
		f, ok := Lookup(name)
		require.True(t, ok, name)
		require.True(t, f.Deterministic, name)
	}
}

func TestArityFailureYieldsInvalid(t *testing.T) {
	f, ok := Lookup("upper")
	require.True(t, ok)
	require.True(t, f.Eval([]value.Value{value.String("a"), value.String("b")}).IsInvalid())
}

func TestAndOrShortCircuit(t *testing.T) {
	and, _ := Lookup("and")
	// "false" determines the result before "invalid" is reached: and
	// stops at the first false (§4.4).
	require.True(t, and.Eval([]value.Value{value.Bool(false), value.Invalid}).Equal(value.Bool(false)))
	// invalid reached before any determining false: poisons the result.
	require.True(t, and.Eval([]value.Value{value.Bool(true), value.Invalid}).IsInvalid())

	or, _ := Lookup("or")
	require.True(t, or.Eval([]value.Value{value.Bool(true), value.Invalid}).Equal(value.Bool(true)))
	require.True(t, or.Eval([]value.Value{value.Bool(false), value.Invalid}).IsInvalid())
}

func TestInNotIn(t *testing.T) {
	in, _ := Lookup("in")
	require.True(t, in.Eval([]value.Value{value.Int(2), value.Int(1), value.Int(2), value.Int(3)}).AsBool())

	notIn, _ := Lookup("not_in")
	require.True(t, notIn.Eval([]value.Value{value.Int(5), value.Int(1), value.Int(2)}).AsBool())
}

func TestRoundRules(t *testing.T) {
	round, _ := Lookup("round")
	require.True(t, round.Eval([]value.Value{value.Double(1.5), value.Int(-1)}).IsInvalid())
	require.Equal(t, value.KindInt, round.Eval([]value.Value{value.Double(1.5), value.Int(0)}).Kind())
	got := round.Eval([]value.Value{value.Double(1.2345), value.Int(2)})
	n, _ := got.Number()
	require.InDelta(t, 1.23, n, 1e-9)
}

func TestHilbertRoundTrip(t *testing.T) {
	xyToD, _ := Lookup("hilbert_xy_to_d")
	dToX, _ := Lookup("hilbert_d_to_x")
	dToY, _ := Lookup("hilbert_d_to_y")

	n := value.Int(8)
	for x := int64(0); x < 8; x++ {
		for y := int64(0); y < 8; y++ {
			d := xyToD.Eval([]value.Value{n, value.Int(x), value.Int(y)})
			require.False(t, d.IsInvalid())
			gotX := dToX.Eval([]value.Value{n, d})
			gotY := dToY.Eval([]value.Value{n, d})
			require.Equal(t, x, gotX.AsInt())
			require.Equal(t, y, gotY.AsInt())
		}
	}
}

func TestHilbertRejectsNonPowerOfTwo(t *testing.T) {
	xyToD, _ := Lookup("hilbert_xy_to_d")
	require.True(t, xyToD.Eval([]value.Value{value.Int(3), value.Int(0), value.Int(0)}).IsInvalid())
}

func TestNthItemsValueForKey(t *testing.T) {
	split, _ := Lookup("split")
	packed := split.Eval([]value.Value{value.String("a,b,c"), value.String(",")})

	nth, _ := Lookup("nth")
	require.Equal(t, "b", nth.Eval([]value.Value{packed, value.Int(2)}).AsString())

	items, _ := Lookup("items")
	require.Equal(t, int64(3), items.Eval([]value.Value{packed}).AsInt())

	vfk, _ := Lookup("value_for_key")
	kv := split.Eval([]value.Value{value.String("k1,v1,k2,v2"), value.String(",")})
	require.Equal(t, "v2", vfk.Eval([]value.Value{kv, value.String("k2")}).AsString())
}

func TestAggregateFunctionsEvaluateViaReducer(t *testing.T) {
	sum, _ := Lookup("sum")
	require.True(t, sum.IsAggregateEligible())
	got := sum.Eval([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	require.Equal(t, int64(6), got.AsInt())
}
