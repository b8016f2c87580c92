package function

import "github.com/rowpipe/rowpipe/reduce"

func init() {
	for _, name := range []string{
		"sum", "count", "count_all", "average", "min", "max", "count_distinct",
		"median", "median_low", "median_high", "median_pack",
		"variance_population", "variance_sample", "stdev_population", "stdev_sample",
		"concat", "pack",
	} {
		aggregate(name)
	}
	// random_item is non-deterministic, unlike the rest of the aggregate
	// band (§4.4's non-deterministic list includes randomItem).
	register(&Function{
		Name: "random_item", Arity: Any(), Deterministic: false,
		NewReducer: func() reduce.Reducer { return reduce.New("random_item") },
	})
}
