// Package mutate implements the MutableDataset mutation protocol and a
// Warehouse collaborator that creates mutable datasets from a source
// (§4.11).
package mutate

import (
	"github.com/pkg/errors"

	"github.com/rowpipe/rowpipe/dataset"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/stream"
	"github.com/rowpipe/rowpipe/value"
)

// Kind discriminates the mutation variants of §4.11.
type Kind int

const (
	Truncate Kind = iota
	Rename
	Alter
	Import
	Insert
	Edit
	Update
	Remove
	Delete
	Drop
)

// Mutation is the sum-typed mutation request; only the fields relevant to
// Kind are read.
type Mutation struct {
	Kind Kind

	// Rename
	ColumnMap map[string]string

	// Alter
	NewSchema *schema.OrderedColumnSet

	// Import
	Source    dataset.Dataset
	SourceMap map[string]string

	// Insert
	Row []value.Value

	// Edit / Update
	KeyColumns []schema.Column
	Key        []value.Value
	Column     schema.Column
	Old        value.Value
	New        value.Value

	// Remove
	RowIndexes []int

	// Delete
	Keys [][]value.Value
}

// MutableDataset exposes mutation over a backing Raster.
type MutableDataset struct {
	raster *raster.Raster
}

// NewMutableDataset wraps an existing writable raster.
func NewMutableDataset(r *raster.Raster) *MutableDataset {
	return &MutableDataset{raster: r}
}

// Raster exposes the backing table for read access (e.g. wrapping in a
// dataset.FromRaster).
func (m *MutableDataset) Raster() *raster.Raster { return m.raster }

// CanPerformMutation predicates the attempt per §4.11: a read-only raster
// refuses every mutation kind.
func (m *MutableDataset) CanPerformMutation(mut Mutation) bool {
	if m.raster.IsReadOnly() {
		return false
	}
	switch mut.Kind {
	case Rename:
		return len(mut.ColumnMap) > 0
	case Alter:
		return mut.NewSchema != nil
	case Import:
		return mut.Source != nil
	case Insert:
		return true
	case Edit:
		return len(mut.Row) > 0
	case Update:
		return len(mut.KeyColumns) > 0
	case Remove:
		return len(mut.RowIndexes) > 0
	case Delete:
		return len(mut.Keys) > 0
	default:
		return true
	}
}

// PerformMutation dispatches mut against the backing raster (§4.11).
func (m *MutableDataset) PerformMutation(mut Mutation, j *job.Job) error {
	if !m.CanPerformMutation(mut) {
		return errors.Errorf("mutate: cannot perform mutation kind %d", mut.Kind)
	}
	switch mut.Kind {
	case Truncate:
		return m.raster.RemoveRows(allIndexes(m.raster.Len()))
	case Rename:
		return m.rename(mut.ColumnMap)
	case Alter:
		return m.alter(mut.NewSchema)
	case Import:
		return m.importFrom(mut.Source, mut.SourceMap, j)
	case Insert:
		return m.raster.AddRow(mut.Row...)
	case Edit:
		_, err := m.raster.SetValue(mut.New, mut.Column, rowIndexFromKey(mut.Row), nil)
		return err
	case Update:
		_, err := m.raster.Update(mut.KeyColumns, mut.Key, mut.Column, mut.Old, mut.New)
		return err
	case Remove:
		return m.raster.RemoveRows(mut.RowIndexes)
	case Delete:
		return m.raster.RemoveRowsByKey(mut.KeyColumns, mut.Keys)
	case Drop:
		return m.raster.RemoveRows(allIndexes(m.raster.Len()))
	default:
		return errors.Errorf("mutate: unknown mutation kind %d", mut.Kind)
	}
}

func allIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// rowIndexFromKey reads the positional row index that Edit takes from
// mut.Row[0] as an Int; it returns -1 when row is empty or its first value
// is not an Int.
func rowIndexFromKey(row []value.Value) int {
	if len(row) == 0 {
		return -1
	}
	if row[0].Kind() != value.KindInt {
		return -1
	}
	return int(row[0].AsInt())
}

func (m *MutableDataset) rename(colMap map[string]string) error {
	cols := m.raster.Columns()
	var renamed []schema.Column
	for _, c := range cols.Columns() {
		if newName, ok := colMap[c.Key()]; ok {
			renamed = append(renamed, schema.NewColumn(newName))
		} else {
			renamed = append(renamed, c)
		}
	}
	newCols, err := schema.NewOrderedColumnSet(renamed...)
	if err != nil {
		return err
	}
	return m.alter(newCols)
}

func (m *MutableDataset) alter(newSchema *schema.OrderedColumnSet) error {
	rows := m.raster.Rows()
	replacement := raster.New(newSchema)
	for _, r := range rows {
		padded := make([]value.Value, newSchema.Len())
		for i := 0; i < newSchema.Len() && i < r.Len(); i++ {
			padded[i] = r.At(i)
		}
		if err := replacement.AddRow(padded...); err != nil {
			return err
		}
	}
	*m = MutableDataset{raster: replacement}
	return nil
}

// Warehouse creates new mutable datasets, inferring schema from a source's
// columns (§4.11).
type Warehouse struct{}

// NewMutableFromSource builds an empty, writable MutableDataset whose
// schema matches source's columns.
func (Warehouse) NewMutableFromSource(source dataset.Dataset, j *job.Job) (*MutableDataset, error) {
	cols, err := source.Columns(j)
	if err != nil {
		return nil, err
	}
	return NewMutableDataset(raster.New(cols)), nil
}

// NewMutableWithSchema builds an empty, writable MutableDataset with an
// explicit schema.
func (Warehouse) NewMutableWithSchema(cols *schema.OrderedColumnSet) *MutableDataset {
	return NewMutableDataset(raster.New(cols))
}

// importFrom drains source via a stream.Puller, mapping source columns to
// target columns by name (missing -> empty), and appends rows (§4.11).
func (m *MutableDataset) importFrom(source dataset.Dataset, sourceMap map[string]string, j *job.Job) error {
	srcCols, err := source.Columns(j)
	if err != nil {
		return err
	}
	targetCols := m.raster.Columns()

	mapping := make([]int, targetCols.Len())
	for i, tc := range targetCols.Columns() {
		srcName := tc.Name()
		if sourceMap != nil {
			if mapped, ok := sourceMap[tc.Key()]; ok {
				srcName = mapped
			}
		}
		mapping[i] = srcCols.IndexOf(schema.NewColumn(srcName))
	}

	src, err := source.Stream(j)
	if err != nil {
		return err
	}

	var importErr error
	p := &stream.Puller{
		Job:            j,
		Source:         src,
		ProcessorCount: 1,
		OnReceive: func(rows []schema.Row, status stream.Status) {
			for _, r := range rows {
				out := make([]value.Value, targetCols.Len())
				for i, srcIdx := range mapping {
					if srcIdx == -1 {
						out[i] = value.Empty
					} else {
						out[i] = r.At(srcIdx)
					}
				}
				if err := m.raster.AddRow(out...); err != nil {
					importErr = err
				}
			}
		},
		OnError: func(err error) { importErr = err },
	}
	p.Run()
	return importErr
}
