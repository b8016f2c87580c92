package rowpipe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

func TestDefaultConfigMatchesCSVDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, ";", cfg.CSV.FieldSeparator)
	require.Equal(t, "\r\n", cfg.CSV.LineSeparator)
}

func TestNewEngineFillsMissingCSVDialect(t *testing.T) {
	e := NewEngine(Config{})
	require.Equal(t, ";", e.Config.CSV.FieldSeparator)
}

func TestEngineNewWritableDatasetRoundTrips(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("A"))
	m := e.NewWritableDataset(cols)
	j := e.NewJob("test")
	require.NoError(t, m.Raster().AddRow(value.Int(1)))
	require.Equal(t, 1, m.Raster().Len())
	_ = j
}

func TestEngineNewDatasetReportsGivenColumns(t *testing.T) {
	e := NewEngine(DefaultConfig())
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("A"))
	rows := []schema.Row{schema.NewRow(cols, value.Int(1)), schema.NewRow(cols, value.Int(2))}
	ds := e.NewDataset(cols, rows)
	j := e.NewJob("test")
	got, err := ds.Columns(j)
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
}
