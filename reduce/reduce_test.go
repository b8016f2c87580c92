package reduce

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/value"
)

func vals(ns ...int64) []value.Value {
	out := make([]value.Value, len(ns))
	for i, n := range ns {
		out[i] = value.Int(n)
	}
	return out
}

func TestBatchIndependence(t *testing.T) {
	names := []string{"sum", "average", "min", "max", "count", "count_all", "count_distinct",
		"variance_population", "variance_sample", "stdev_population", "stdev_sample"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			whole := New(name)
			whole.Add(vals(1, 2, 3, 4, 5))

			split := New(name)
			split.Add(vals(1, 2))
			split.Add(vals(3, 4, 5))

			a, b := whole.Result(), split.Result()
			if a.IsInvalid() && b.IsInvalid() {
				return
			}
			require.InDelta(t, mustNumber(t, a), mustNumber(t, b), 1e-9, name)
		})
	}
}

func mustNumber(t *testing.T, v value.Value) float64 {
	t.Helper()
	n, ok := v.Number()
	require.True(t, ok)
	return n
}

func TestSumIgnoresInvalid(t *testing.T) {
	r := New("sum")
	r.Add([]value.Value{value.Int(1), value.Invalid, value.Int(2)})
	require.Equal(t, int64(3), r.Result().AsInt())
}

func TestAverageEmptyIsInvalid(t *testing.T) {
	r := New("average")
	r.Add(nil)
	require.True(t, r.Result().IsInvalid())
}

func TestMedianOddAndEven(t *testing.T) {
	odd := New("median")
	odd.Add(vals(3, 1, 2))
	require.Equal(t, int64(2), odd.Result().AsInt())

	even := New("median")
	even.Add(vals(1, 2, 3, 4))
	require.Equal(t, 2.5, mustNumber(t, even.Result()))
}

func TestMedianLowHighPack(t *testing.T) {
	low := New("median_low")
	low.Add(vals(1, 2, 3, 4))
	require.Equal(t, int64(2), low.Result().AsInt())

	high := New("median_high")
	high.Add(vals(1, 2, 3, 4))
	require.Equal(t, int64(3), high.Result().AsInt())

	pack := New("median_pack")
	pack.Add(vals(1, 2, 3, 4))
	require.Equal(t, []string{"2", "3"}, value.DecodePack(pack.Result().AsString()))
}

func TestCountDistinct(t *testing.T) {
	r := New("count_distinct")
	r.Add([]value.Value{value.Int(1), value.Int(1), value.Int(2), value.Empty, value.Invalid})
	require.Equal(t, int64(2), r.Result().AsInt())
}

func TestVarianceNonNumericIsPermanentlyInvalid(t *testing.T) {
	r := New("variance_population")
	r.Add([]value.Value{value.Int(1), value.String("x"), value.Int(2)})
	require.True(t, r.Result().IsInvalid())
}

func TestPackReducerRoundTrips(t *testing.T) {
	r := New("pack")
	r.Add([]value.Value{value.String("a"), value.String("b,c"), value.Int(3)})
	fields := value.DecodePack(r.Result().AsString())
	require.Equal(t, []string{"a", "b,c", "3"}, fields)
}

func TestUnknownReducerNameIsNil(t *testing.T) {
	require.Nil(t, New("not_a_reducer"))
}
