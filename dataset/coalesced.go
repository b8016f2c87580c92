package dataset

import (
	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/transform"
	"github.com/rowpipe/rowpipe/value"
)

type opKind int

const (
	opNone opKind = iota
	opLimiting
	opOffsetting
	opTransposing
	opFiltering
	opSorting
	opSelectingColumns
	opCalculating
	opCalculatingThenSelectingColumns
	opDistincting
)

type deferredOp struct {
	kind   opKind
	n      int
	filter expr.Expression
	sorts  []SortOrder
	cols   []schema.Column
	calc   CalculateMap
}

// CoalescedDataset wraps a base Dataset plus a single deferred operation
// (§4.7). Each algebra method either rewrites the deferred op in place
// (fusing with the operation being applied) or, when no law applies,
// defers by nesting: the receiver becomes the new wrapper's Base.
type CoalescedDataset struct {
	Base Dataset
	Op   deferredOp
}

func wrap(base Dataset, op deferredOp) Dataset {
	return &CoalescedDataset{Base: base, Op: op}
}

// data materializes the deferred operation and returns a plain Dataset
// whose Stream()/Raster() already reflect Op. A new dataset is built on
// every call; nothing is cached and Op is left unchanged.
func (c *CoalescedDataset) data() Dataset {
	switch c.Op.kind {
	case opNone:
		return c.Base
	case opLimiting:
		return &streamDataset{
			columnsFn: c.Base.Columns,
			streamFn: func(j *job.Job) (stream.Stream, error) {
				src, err := c.Base.Stream(j)
				if err != nil {
					return nil, err
				}
				return transform.NewLimit(src, c.Op.n), nil
			},
		}
	case opOffsetting:
		return &streamDataset{
			columnsFn: c.Base.Columns,
			streamFn: func(j *job.Job) (stream.Stream, error) {
				src, err := c.Base.Stream(j)
				if err != nil {
					return nil, err
				}
				return transform.NewOffset(src, c.Op.n), nil
			},
		}
	case opTransposing:
		return transposedDataset(c.Base)
	case opFiltering:
		return &streamDataset{
			columnsFn: c.Base.Columns,
			streamFn: func(j *job.Job) (stream.Stream, error) {
				src, err := c.Base.Stream(j)
				if err != nil {
					return nil, err
				}
				return transform.NewFilter(src, c.Op.filter), nil
			},
		}
	case opSorting:
		return sortedDataset(c.Base, c.Op.sorts)
	case opSelectingColumns:
		if len(c.Op.cols) == 0 {
			return emptyDataset()
		}
		return &streamDataset{
			columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) {
				return schema.NewOrderedColumnSet(c.Op.cols...)
			},
			streamFn: func(j *job.Job) (stream.Stream, error) {
				src, err := c.Base.Stream(j)
				if err != nil {
					return nil, err
				}
				return transform.NewColumns(src, c.Op.cols), nil
			},
		}
	case opCalculating:
		return &streamDataset{
			columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) {
				base, err := c.Base.Columns(j)
				if err != nil {
					return nil, err
				}
				var add []schema.Column
				for _, t := range c.Op.calc {
					if !base.Contains(t.Column) {
						add = append(add, t.Column)
					}
				}
				return base.With(add...)
			},
			streamFn: func(j *job.Job) (stream.Stream, error) {
				src, err := c.Base.Stream(j)
				if err != nil {
					return nil, err
				}
				return transform.NewCalculate(src, c.Op.calc), nil
			},
		}
	case opDistincting:
		return distinctDataset(c.Base)
	case opCalculatingThenSelectingColumns:
		return &streamDataset{
			columnsFn: func(j *job.Job) (*schema.OrderedColumnSet, error) {
				return schema.NewOrderedColumnSet(c.Op.cols...)
			},
			streamFn: func(j *job.Job) (stream.Stream, error) {
				src, err := c.Base.Stream(j)
				if err != nil {
					return nil, err
				}
				byKey := make(map[string]expr.Expression, len(c.Op.calc))
				for _, t := range c.Op.calc {
					byKey[t.Column.Key()] = t.Expr
				}
				var targets []transform.CalculateTarget
				for _, col := range c.Op.cols {
					e, ok := byKey[col.Key()]
					if !ok {
						e = &expr.Identity{}
					}
					targets = append(targets, transform.CalculateTarget{Column: col, Expr: e})
				}
				calculated := transform.NewCalculate(src, targets)
				return transform.NewColumns(calculated, c.Op.cols), nil
			},
		}
	default:
		return c.Base
	}
}

func (c *CoalescedDataset) Columns(j *job.Job) (*schema.OrderedColumnSet, error) {
	return c.data().Columns(j)
}

func (c *CoalescedDataset) Stream(j *job.Job) (stream.Stream, error) {
	return c.data().Stream(j)
}

func (c *CoalescedDataset) Raster(j *job.Job, filter expr.Expression) (*raster.Raster, error) {
	return c.data().Raster(j, filter)
}

// Limit: limit(x).limit(y) = limit(min(x,y)); commutes past calculate.
func (c *CoalescedDataset) Limit(x int) Dataset {
	switch c.Op.kind {
	case opLimiting:
		n := x
		if c.Op.n < n {
			n = c.Op.n
		}
		return wrap(c.Base, deferredOp{kind: opLimiting, n: n})
	case opCalculating:
		return c.Base.Limit(x).Calculate(c.Op.calc)
	default:
		return wrap(c, deferredOp{kind: opLimiting, n: x})
	}
}

// Offset: offset(x).offset(y) = offset(x+y); commutes past calculate.
func (c *CoalescedDataset) Offset(x int) Dataset {
	switch c.Op.kind {
	case opOffsetting:
		return wrap(c.Base, deferredOp{kind: opOffsetting, n: c.Op.n + x})
	case opCalculating:
		return c.Base.Offset(x).Calculate(c.Op.calc)
	default:
		return wrap(c, deferredOp{kind: opOffsetting, n: x})
	}
}

func (c *CoalescedDataset) Transpose() Dataset {
	if c.Op.kind == opTransposing {
		return c.Base
	}
	return wrap(c, deferredOp{kind: opTransposing})
}

func (c *CoalescedDataset) Distinct() Dataset {
	if c.Op.kind == opDistincting {
		return c
	}
	return wrap(c, deferredOp{kind: opDistincting})
}

// Filter: filter(e1).filter(e2) = filter(AND(e1,e2)); filter(true) = id;
// commutes past sort; commutes past calculate when disjoint, else
// substitutes the calculated column's expression into the filter first.
func (c *CoalescedDataset) Filter(e expr.Expression) Dataset {
	prepared := e.Prepare()
	if lit, ok := prepared.(*expr.Literal); ok && lit.Value.Kind() == value.KindBool && lit.Value.AsBool() {
		return c
	}
	switch c.Op.kind {
	case opFiltering:
		andFn, ok := function.Lookup("and")
		if ok {
			merged := expr.NewCall(andFn, c.Op.filter, prepared).Prepare()
			return wrap(c.Base, deferredOp{kind: opFiltering, filter: merged})
		}
	case opSorting:
		return c.Base.Filter(prepared).Sort(c.Op.sorts)
	case opCalculating:
		deps := prepared.SiblingDependencies()
		calcCols := make(map[string]bool, len(c.Op.calc))
		for _, t := range c.Op.calc {
			calcCols[t.Column.Key()] = true
		}
		disjoint := true
		for _, d := range deps {
			if calcCols[d.Key()] {
				disjoint = false
				break
			}
		}
		if disjoint {
			return c.Base.Filter(prepared).Calculate(c.Op.calc)
		}
		replacements := make(map[string]expr.Expression, len(c.Op.calc))
		for _, t := range c.Op.calc {
			replacements[t.Column.Key()] = expr.Substitute(t.Expr, map[string]expr.Expression{t.Column.Key(): expr.NewSibling(t.Column)})
		}
		substituted := expr.Substitute(prepared, replacements).Prepare()
		return c.Base.Filter(substituted).Calculate(c.Op.calc)
	}
	return wrap(c, deferredOp{kind: opFiltering, filter: prepared})
}

// Sort: sort([]) = id; sort(A).sort(B) = sort(B ++ A) -- B becomes primary.
func (c *CoalescedDataset) Sort(orders []SortOrder) Dataset {
	if len(orders) == 0 {
		return c
	}
	if c.Op.kind == opSorting {
		merged := append(append([]SortOrder{}, orders...), c.Op.sorts...)
		return wrap(c.Base, deferredOp{kind: opSorting, sorts: merged})
	}
	return wrap(c, deferredOp{kind: opSorting, sorts: orders})
}

// SelectColumns: selectColumns(empty) = empty dataset;
// selectColumns(A).selectColumns(B) = selectColumns(B keeping only names in
// A, B's order); fuses with an upstream calculate into
// CalculatingThenSelectingColumns (materialized as a Calculate
// immediately followed by a column projection, which is semantically
// equivalent).
func (c *CoalescedDataset) SelectColumns(cols []schema.Column) Dataset {
	if len(cols) == 0 {
		return emptyDataset()
	}
	switch c.Op.kind {
	case opSelectingColumns:
		prevSet := schema.MustNewOrderedColumnSet(c.Op.cols...)
		var kept []schema.Column
		for _, col := range cols {
			if prevSet.Contains(col) {
				kept = append(kept, col)
			}
		}
		return wrap(c.Base, deferredOp{kind: opSelectingColumns, cols: kept})
	case opCalculating:
		return wrap(c.Base, deferredOp{kind: opCalculatingThenSelectingColumns, calc: c.Op.calc, cols: cols})
	}
	return wrap(c, deferredOp{kind: opSelectingColumns, cols: cols})
}

// Calculate: merges with a prior calculate when keys don't conflict, and
// overwrites a prior Identity/Sibling(A) calculation of the same column.
func (c *CoalescedDataset) Calculate(targets CalculateMap) Dataset {
	if c.Op.kind == opCalculating {
		merged, deferred := mergeCalculate(c.Op.calc, targets)
		base := wrap(c.Base, deferredOp{kind: opCalculating, calc: merged})
		if len(deferred) == 0 {
			return base
		}
		return wrap(base, deferredOp{kind: opCalculating, calc: deferred})
	}
	return wrap(c, deferredOp{kind: opCalculating, calc: append(CalculateMap{}, targets...)})
}

// mergeCalculate fuses next into prior when a target overwrites only an
// Identity/Sibling(self) prior calculation of the same column (§4.7); a
// target conflicting with a prior non-identity calculation of the same
// column cannot move up -- it is returned in deferred so the caller stacks
// it as a second, trailing opCalculating instead of silently dropping the
// prior expression.
func mergeCalculate(prior, next CalculateMap) (merged, deferred CalculateMap) {
	priorByKey := make(map[string]int, len(prior))
	merged = append(CalculateMap{}, prior...)
	for i, t := range merged {
		priorByKey[t.Column.Key()] = i
	}
	for _, t := range next {
		if i, ok := priorByKey[t.Column.Key()]; ok {
			if isIdentityLike(merged[i].Expr, merged[i].Column) {
				merged[i] = t
				continue
			}
			deferred = append(deferred, t)
			continue
		}
		merged = append(merged, t)
		priorByKey[t.Column.Key()] = len(merged) - 1
	}
	return merged, deferred
}

func isIdentityLike(e expr.Expression, col schema.Column) bool {
	switch n := e.(type) {
	case *expr.Identity:
		return true
	case *expr.Sibling:
		return n.Column.Equal(col)
	}
	return false
}

func (c *CoalescedDataset) Random(n int) Dataset {
	return &streamDataset{
		columnsFn: c.data().Columns,
		streamFn: func(j *job.Job) (stream.Stream, error) {
			src, err := c.data().Stream(j)
			if err != nil {
				return nil, err
			}
			return transform.NewRandom(src, n), nil
		},
	}
}

func (c *CoalescedDataset) Union(other Dataset) Dataset {
	return unionDataset(c, other)
}

func (c *CoalescedDataset) Join(spec JoinSpec) Dataset {
	return joinDataset(c, spec)
}

func (c *CoalescedDataset) Aggregate(groups []transform.GroupKey, aggregations []transform.Aggregation) Dataset {
	return aggregateDataset(c, groups, aggregations)
}

func (c *CoalescedDataset) Flatten(valueColumn schema.Column, columnNameColumn *schema.Column, rowID *transform.RowIdentifier) Dataset {
	return flattenDataset(c, valueColumn, columnNameColumn, rowID)
}
