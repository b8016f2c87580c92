package schema

import "github.com/rowpipe/rowpipe/value"

// Row pairs a value tuple with an OrderedColumnSet (§3). Invariant:
// len(values) <= len(columns); a short tuple is interpreted as padded with
// Empty.
type Row struct {
	values  []value.Value
	columns *OrderedColumnSet
}

// NewRow builds a Row. Panics if values is longer than columns, which
// would violate the §3 invariant.
func NewRow(columns *OrderedColumnSet, values ...value.Value) Row {
	if len(values) > columns.Len() {
		panic("schema: row has more values than columns")
	}
	return Row{values: values, columns: columns}
}

// Columns returns the row's column set.
func (r Row) Columns() *OrderedColumnSet { return r.columns }

// Len returns the number of declared columns (not the possibly-shorter
// value tuple).
func (r Row) Len() int { return r.columns.Len() }

// At returns the value at a positional index, or Empty if the tuple is
// shorter than the column set at that index.
func (r Row) At(i int) value.Value {
	if i < 0 || i >= len(r.values) {
		return value.Empty
	}
	return r.values[i]
}

// Get looks up a value by column, returning Empty if the column set does
// not contain it or the tuple is short.
func (r Row) Get(c Column) value.Value {
	i := r.columns.IndexOf(c)
	if i == -1 {
		return value.Empty
	}
	return r.At(i)
}

// Values returns the raw, possibly-short value tuple. Callers must not
// mutate the returned slice.
func (r Row) Values() []value.Value { return r.values }

// padded returns a full-length value slice, padding with Empty as needed.
func (r Row) padded() []value.Value {
	out := make([]value.Value, r.columns.Len())
	copy(out, r.values)
	for i := len(r.values); i < len(out); i++ {
		out[i] = value.Empty
	}
	return out
}

// Set returns a new Row with v written at column c. If c is unknown, both
// the value and the column are appended (§4.2: "Mutating a row by an
// unknown column appends both a value and a column").
func (r Row) Set(c Column, v value.Value) Row {
	i := r.columns.IndexOf(c)
	if i != -1 {
		out := r.padded()
		out[i] = v
		return Row{values: out, columns: r.columns}
	}
	newCols, err := r.columns.With(c)
	if err != nil {
		// With only appends columns absent from the receiver, so this
		// cannot happen for an unknown column.
		panic(err)
	}
	out := append(r.padded(), v)
	return Row{values: out, columns: newCols}
}

// Project returns a new Row restricted to cols, in the order given. Any
// column not present in r's schema yields Empty at that position.
func (r Row) Project(cols *OrderedColumnSet) Row {
	out := make([]value.Value, cols.Len())
	for i, c := range cols.Columns() {
		out[i] = r.Get(c)
	}
	return Row{values: out, columns: cols}
}
