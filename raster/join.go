package raster

import (
	"runtime"
	"sync"

	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

// JoinKind selects inner vs. left-outer semantics (§4.6).
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

// HashOrCartesianJoin implements §4.6's hash_or_cartesian_join. left is
// read under its own mutex; right must not be mutated for the duration of
// the call. condition is the join predicate expressed over the left row's
// siblings and the right row reinterpreted as foreigns (via
// expr.EvalContext.Foreign); it is evaluated already-prepared.
func HashOrCartesianJoin(left, right *Raster, condition expr.Expression, kind JoinKind) (*Raster, error) {
	left.mu.RLock()
	right.mu.RLock()
	leftCols := left.columns
	rightCols := right.columns
	leftRows := left.rows
	rightRows := right.rows
	right.mu.RUnlock()
	left.mu.RUnlock()

	var newRightCols []schema.Column
	for _, c := range rightCols.Columns() {
		if leftCols.IndexOf(c) == -1 {
			newRightCols = append(newRightCols, c)
		}
	}
	if len(newRightCols) == 0 {
		// Early-exit: no right-side columns would appear in the result.
		return left, nil
	}

	resultCols, err := leftCols.With(newRightCols...)
	if err != nil {
		return nil, err
	}
	rightKeepIdx := make([]int, len(newRightCols))
	for i, c := range newRightCols {
		rightKeepIdx[i] = rightCols.IndexOf(c)
	}

	hc, hashable := expr.DeriveHashComparison(condition)

	var out [][]value.Value
	if hashable {
		out = hashJoin(leftRows, leftCols, rightRows, rightCols, hc, rightKeepIdx, kind)
	} else {
		out = cartesianJoin(leftRows, leftCols, rightRows, rightCols, condition, rightKeepIdx, kind)
	}

	result := &Raster{columns: resultCols, rows: out}
	return result, nil
}

func chunkRanges(n, size int) [][2]int {
	if size <= 0 {
		size = chunkSize
	}
	var ranges [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		ranges = append(ranges, [2]int{start, end})
	}
	if len(ranges) == 0 {
		ranges = append(ranges, [2]int{0, 0})
	}
	return ranges
}

func hashJoin(leftRows [][]value.Value, leftCols *schema.OrderedColumnSet, rightRows [][]value.Value, rightCols *schema.OrderedColumnSet, hc expr.HashComparison, rightKeepIdx []int, kind JoinKind) [][]value.Value {
	rightHash := make(map[uint64][]int)
	for i, row := range rightRows {
		rrow := schema.NewRow(rightCols, row...)
		v := hc.RightExpr.Apply(expr.EvalContext{Row: rrow})
		if v.IsInvalid() {
			continue
		}
		h := v.Hash()
		rightHash[h] = append(rightHash[h], i)
	}

	ranges := chunkRanges(len(leftRows), chunkSize)
	results := make([][][]value.Value, len(ranges))
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for ci, rng := range ranges {
		wg.Add(1)
		sem <- struct{}{}
		go func(ci int, rng [2]int) {
			defer wg.Done()
			defer func() { <-sem }()
			var chunk [][]value.Value
			for li := rng[0]; li < rng[1]; li++ {
				lrow := schema.NewRow(leftCols, leftRows[li]...)
				lv := hc.LeftExpr.Apply(expr.EvalContext{Row: lrow})
				var candidates []int
				if !lv.IsInvalid() {
					candidates = rightHash[lv.Hash()]
				}
				matched := false
				for _, ri := range candidates {
					rrow := schema.NewRow(rightCols, rightRows[ri]...)
					rv := hc.RightExpr.Apply(expr.EvalContext{Row: rrow})
					if !lv.Equal(rv) {
						continue
					}
					matched = true
					chunk = append(chunk, joinedRow(leftRows[li], rightRows[ri], rightKeepIdx))
				}
				if !matched && kind == LeftJoin {
					chunk = append(chunk, joinedRow(leftRows[li], nil, rightKeepIdx))
				}
			}
			results[ci] = chunk
		}(ci, rng)
	}
	wg.Wait()

	var out [][]value.Value
	for _, chunk := range results {
		out = append(out, chunk...)
	}
	return out
}

func cartesianJoin(leftRows [][]value.Value, leftCols *schema.OrderedColumnSet, rightRows [][]value.Value, rightCols *schema.OrderedColumnSet, condition expr.Expression, rightKeepIdx []int, kind JoinKind) [][]value.Value {
	ranges := chunkRanges(len(leftRows), chunkSize)
	results := make([][][]value.Value, len(ranges))
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for ci, rng := range ranges {
		wg.Add(1)
		sem <- struct{}{}
		go func(ci int, rng [2]int) {
			defer wg.Done()
			defer func() { <-sem }()
			var chunk [][]value.Value
			for li := rng[0]; li < rng[1]; li++ {
				lrow := schema.NewRow(leftCols, leftRows[li]...)
				matched := false
				for _, rrowVals := range rightRows {
					rrow := schema.NewRow(rightCols, rrowVals...)
					v := condition.Apply(expr.EvalContext{Row: lrow, Foreign: &rrow})
					if v.IsInvalid() || !v.AsBool() {
						continue
					}
					matched = true
					chunk = append(chunk, joinedRow(leftRows[li], rrowVals, rightKeepIdx))
				}
				if !matched && kind == LeftJoin {
					chunk = append(chunk, joinedRow(leftRows[li], nil, rightKeepIdx))
				}
			}
			results[ci] = chunk
		}(ci, rng)
	}
	wg.Wait()

	var out [][]value.Value
	for _, chunk := range results {
		out = append(out, chunk...)
	}
	return out
}

func joinedRow(left []value.Value, right []value.Value, rightKeepIdx []int) []value.Value {
	out := append([]value.Value{}, left...)
	for _, idx := range rightKeepIdx {
		if right != nil && idx < len(right) {
			out = append(out, right[idx])
		} else {
			out = append(out, value.Empty)
		}
	}
	return out
}
