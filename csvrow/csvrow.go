// Package csvrow implements row serialization to delimited text (§4.12):
// a capability the core exposes for a CLI collaborator. The core itself
// never reads CSV.
package csvrow

import (
	"strconv"
	"strings"

	"github.com/rowpipe/rowpipe/function"
	"github.com/rowpipe/rowpipe/schema"
	"github.com/rowpipe/rowpipe/value"
)

// Format holds the configurable punctuation of a CSV dialect. The zero
// value is invalid; use DefaultFormat.
type Format struct {
	FieldSeparator string
	LineSeparator  string
	Qualifier      string
	Escape         string
}

// DefaultFormat matches §4.12's defaults: `;`-separated fields, CRLF
// lines, `"`-qualified strings with `""` escaping.
func DefaultFormat() Format {
	return Format{
		FieldSeparator: ";",
		LineSeparator:  "\r\n",
		Qualifier:      `"`,
		Escape:         `""`,
	}
}

var toUTCISO8601, _ = function.Lookup("to_utc_iso8601")

// WriteRow appends row's serialized fields, joined by f's field separator,
// to a strings.Builder.
func WriteRow(b *strings.Builder, f Format, row schema.Row) {
	for i := 0; i < row.Len(); i++ {
		if i > 0 {
			b.WriteString(f.FieldSeparator)
		}
		b.WriteString(FormatValue(f, row.At(i)))
	}
}

// WriteRows serializes rows, terminating each (including the last) with
// f's line separator.
func WriteRows(f Format, rows []schema.Row) string {
	var b strings.Builder
	for _, r := range rows {
		WriteRow(&b, f, r)
		b.WriteString(f.LineSeparator)
	}
	return b.String()
}

// FormatValue renders a single cell per its type (§4.12): strings
// qualified and escaped, doubles via C-locale decimal, ints as decimal,
// bools as 1/0, dates as UTC ISO8601, empty/invalid as an empty field.
func FormatValue(f Format, v value.Value) string {
	switch v.Kind() {
	case value.KindEmpty, value.KindInvalid:
		return ""
	case value.KindString:
		return quote(f, v.AsString())
	case value.KindInt:
		return strconv.FormatInt(v.AsInt(), 10)
	case value.KindDouble:
		return formatCLocaleDouble(v.AsDouble())
	case value.KindBool:
		if v.AsBool() {
			return "1"
		}
		return "0"
	case value.KindDate:
		if toUTCISO8601 == nil {
			return ""
		}
		out := toUTCISO8601.Eval([]value.Value{v})
		if out.IsInvalid() {
			return ""
		}
		return quote(f, out.AsString())
	default:
		return ""
	}
}

func quote(f Format, s string) string {
	escaped := strings.ReplaceAll(s, f.Qualifier, f.Escape)
	var b strings.Builder
	b.WriteString(f.Qualifier)
	b.WriteString(escaped)
	b.WriteString(f.Qualifier)
	return b.String()
}

// formatCLocaleDouble renders a float the way the C locale's "%g"-ish
// default would: a dot decimal point, no locale grouping, minimal digits.
func formatCLocaleDouble(d float64) string {
	return strconv.FormatFloat(d, 'g', -1, 64)
}
