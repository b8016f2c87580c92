// Package raster implements the fully materialized in-memory table (§3/§4.6):
// a mutex-guarded row/column matrix with indexed access, mutation
// operations, and hash/cartesian join execution.
package raster

import (
	"sync"

	"github.com/rowpipe/rowpipe/expr"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

// Raster is a mutable in-memory table. Every row has the same length as
// Columns; duplicate column names are rejected at the schema layer.
type Raster struct {
	mu       sync.RWMutex
	columns  *schema.OrderedColumnSet
	rows     [][]value.Value
	readOnly bool
}

// New builds an empty, writable Raster over columns.
func New(columns *schema.OrderedColumnSet) *Raster {
	return &Raster{columns: columns}
}

// NewReadOnly builds a Raster seeded with rows that rejects all mutation.
func NewReadOnly(columns *schema.OrderedColumnSet, rows [][]value.Value) *Raster {
	r := &Raster{columns: columns, rows: rows, readOnly: true}
	return r
}

// Clone returns a deep, independent, writable copy.
func (r *Raster) Clone() *Raster {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([][]value.Value, len(r.rows))
	for i, row := range r.rows {
		rows[i] = append([]value.Value{}, row...)
	}
	return &Raster{columns: r.columns, rows: rows}
}

// Columns returns the raster's column set.
func (r *Raster) Columns() *schema.OrderedColumnSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.columns
}

// Len returns the number of rows.
func (r *Raster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// At returns the cell at (row, col) positionally.
func (r *Raster) At(row, col int) value.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if row < 0 || row >= len(r.rows) || col < 0 || col >= len(r.rows[row]) {
		return value.Empty
	}
	return r.rows[row][col]
}

// AtColumn returns the cell at (row, c) by column.
func (r *Raster) AtColumn(row int, c schema.Column) value.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.columns.IndexOf(c)
	if i == -1 || row < 0 || row >= len(r.rows) {
		return value.Empty
	}
	return r.rows[row][i]
}

// Row returns the row at index i as a schema.Row.
func (r *Raster) Row(i int) schema.Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.rows) {
		return schema.NewRow(r.columns)
	}
	return schema.NewRow(r.columns, r.rows[i]...)
}

// Rows returns every row as schema.Row values, in order.
func (r *Raster) Rows() []schema.Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]schema.Row, len(r.rows))
	for i, row := range r.rows {
		out[i] = schema.NewRow(r.columns, row...)
	}
	return out
}

// AddRow appends one row, padding with Empty as needed.
func (r *Raster) AddRow(values ...value.Value) error {
	return r.AddRows([][]value.Value{values})
}

// AddRows appends many rows.
func (r *Raster) AddRows(rows [][]value.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readOnly {
		return errReadOnly
	}
	n := r.columns.Len()
	for _, row := range rows {
		padded := make([]value.Value, n)
		copy(padded, row)
		for i := len(row); i < n; i++ {
			padded[i] = value.Empty
		}
		r.rows = append(r.rows, padded)
	}
	return nil
}

// AddColumns extends the schema with new columns, padding every existing
// row with Empty in the new positions.
func (r *Raster) AddColumns(cols ...schema.Column) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readOnly {
		return errReadOnly
	}
	merged, err := r.columns.With(cols...)
	if err != nil {
		return err
	}
	added := merged.Len() - r.columns.Len()
	for i, row := range r.rows {
		r.rows[i] = append(row, make([]value.Value, added)...)
	}
	r.columns = merged
	return nil
}

// RemoveRows deletes the rows at the given (0-based) indexes.
func (r *Raster) RemoveRows(indexes []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readOnly {
		return errReadOnly
	}
	remove := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		remove[i] = true
	}
	var kept [][]value.Value
	for i, row := range r.rows {
		if !remove[i] {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

// RemoveRowsByKey deletes every row whose values on keyColumns match one of
// keys exactly.
func (r *Raster) RemoveRowsByKey(keyColumns []schema.Column, keys [][]value.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readOnly {
		return errReadOnly
	}
	idx := make([]int, len(keyColumns))
	for i, c := range keyColumns {
		idx[i] = r.columns.IndexOf(c)
	}
	var kept [][]value.Value
	for _, row := range r.rows {
		matched := false
		for _, key := range keys {
			if rowMatchesKey(row, idx, key) {
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func rowMatchesKey(row []value.Value, idx []int, key []value.Value) bool {
	if len(idx) != len(key) {
		return false
	}
	for i, colIdx := range idx {
		if colIdx == -1 || colIdx >= len(row) {
			return false
		}
		if !row[colIdx].Equal(key[i]) {
			return false
		}
	}
	return true
}

// RemoveColumns drops the named columns from schema and every row.
func (r *Raster) RemoveColumns(cols ...schema.Column) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readOnly {
		return errReadOnly
	}
	var keepIdx []int
	var keepCols []schema.Column
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c.Key()] = true
	}
	for i, c := range r.columns.Columns() {
		if !drop[c.Key()] {
			keepIdx = append(keepIdx, i)
			keepCols = append(keepCols, c)
		}
	}
	newCols, err := schema.NewOrderedColumnSet(keepCols...)
	if err != nil {
		return err
	}
	for i, row := range r.rows {
		newRow := make([]value.Value, len(keepIdx))
		for j, idx := range keepIdx {
			if idx < len(row) {
				newRow[j] = row[idx]
			}
		}
		r.rows[i] = newRow
	}
	r.columns = newCols
	return nil
}

// SetValue writes v at (row, col). If ifMatches is non-nil, the write only
// happens when the current value equals *ifMatches (compare-and-swap);
// returns whether the write happened.
func (r *Raster) SetValue(v value.Value, col schema.Column, row int, ifMatches *value.Value) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readOnly {
		return false, errReadOnly
	}
	i := r.columns.IndexOf(col)
	if i == -1 || row < 0 || row >= len(r.rows) {
		return false, nil
	}
	if ifMatches != nil && !r.rows[row][i].Equal(*ifMatches) {
		return false, nil
	}
	r.rows[row][i] = v
	return true, nil
}

// Update matches every row whose tuple on keyColumns equals key; for each
// match whose value in col equals old, replaces it with newValue. Returns
// the number of changes made.
func (r *Raster) Update(keyColumns []schema.Column, key []value.Value, col schema.Column, old, newValue value.Value) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readOnly {
		return 0, errReadOnly
	}
	keyIdx := make([]int, len(keyColumns))
	for i, c := range keyColumns {
		keyIdx[i] = r.columns.IndexOf(c)
	}
	colIdx := r.columns.IndexOf(col)
	if colIdx == -1 {
		return 0, nil
	}
	count := 0
	for _, row := range r.rows {
		if !rowMatchesKey(row, keyIdx, key) {
			continue
		}
		if row[colIdx].Equal(old) {
			row[colIdx] = newValue
			count++
		}
	}
	return count, nil
}

// IsReadOnly reports whether mutation is rejected.
func (r *Raster) IsReadOnly() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.readOnly
}

// JoinExpr is the prepared predicate a join executes against every
// left×right row pair (after foreign columns have been substituted in by
// the caller, per expr.ExpressionForForeignFiltering's counterpart at the
// raster level: Comparison nodes reference Sibling for the left row and
// Foreign for the right row).
type JoinExpr = expr.Expression

const chunkSize = 256
