package csvrow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

func TestFormatValuePerKind(t *testing.T) {
	f := DefaultFormat()
	require.Equal(t, "", FormatValue(f, value.Empty))
	require.Equal(t, "", FormatValue(f, value.Invalid))
	require.Equal(t, "42", FormatValue(f, value.Int(42)))
	require.Equal(t, "1", FormatValue(f, value.Bool(true)))
	require.Equal(t, "0", FormatValue(f, value.Bool(false)))
	require.Equal(t, `"hi"`, FormatValue(f, value.String("hi")))
}

func TestFormatValueEscapesQualifier(t *testing.T) {
	f := DefaultFormat()
	require.Equal(t, `"a""b"`, FormatValue(f, value.String(`a"b`)))
}

func TestFormatValueDate(t *testing.T) {
	f := DefaultFormat()
	d := value.Date(0)
	out := FormatValue(f, d)
	require.Contains(t, out, "Z")
	require.True(t, len(out) > 2 && out[0] == '"')
}

func TestWriteRowJoinsWithFieldSeparator(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("A"), schema.NewColumn("B"))
	row := schema.NewRow(cols, value.Int(1), value.String("x"))
	var sb = &strings.Builder{}
	WriteRow(sb, DefaultFormat(), row)
	require.Equal(t, `1;"x"`, sb.String())
}

func TestWriteRowsTerminatesEachLine(t *testing.T) {
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("A"))
	rows := []schema.Row{
		schema.NewRow(cols, value.Int(1)),
		schema.NewRow(cols, value.Int(2)),
	}
	out := WriteRows(DefaultFormat(), rows)
	require.Equal(t, "1\r\n2\r\n", out)
}

func TestCustomFormatChangesSeparators(t *testing.T) {
	f := Format{FieldSeparator: ",", LineSeparator: "\n", Qualifier: "'", Escape: "''"}
	cols := schema.MustNewOrderedColumnSet(schema.NewColumn("A"), schema.NewColumn("B"))
	row := schema.NewRow(cols, value.String("o'brien"), value.Int(9))
	var sb = &strings.Builder{}
	WriteRow(sb, f, row)
	require.Equal(t, "'o''brien',9", sb.String())
}
