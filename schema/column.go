// Package schema implements Column, Row, and OrderedColumnSet (§3/§4.2):
// the named-tuple data model that sits between raw Values and the
// expression/dataset layers.
package schema

import "strings"

// Column wraps a display name. Columns compare case-insensitively but
// retain case for display; hashing lower-cases before hashing (§3).
type Column struct {
	name string
}

// NewColumn constructs a Column with the given display name.
func NewColumn(name string) Column { return Column{name: name} }

// Name returns the display name, case preserved.
func (c Column) Name() string { return c.name }

// Equal implements case-insensitive column identity.
func (c Column) Equal(other Column) bool {
	return strings.EqualFold(c.name, other.name)
}

// Key returns the lower-cased name used for hashing/map keys.
func (c Column) Key() string { return strings.ToLower(c.name) }

// excelLetters are used by DefaultNameForIndex (§4.2).
const excelLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultNameForIndex returns the Excel-style column name for a zero-based
// index: 0->A, 1->B, ..., 25->Z, 26->AA, ...
func DefaultNameForIndex(i int) string {
	if i < 0 {
		return ""
	}
	var sb strings.Builder
	n := i + 1
	var letters []byte
	for n > 0 {
		n--
		letters = append(letters, excelLetters[n%26])
		n /= 26
	}
	for i := len(letters) - 1; i >= 0; i-- {
		sb.WriteByte(letters[i])
	}
	return sb.String()
}

// DefaultNameForNew returns the first synthesized Excel-style name absent
// from existing (by case-insensitive comparison), per §4.2.
func DefaultNameForNew(existing *OrderedColumnSet) string {
	for i := 0; ; i++ {
		name := DefaultNameForIndex(i)
		if existing == nil || existing.IndexOf(NewColumn(name)) == -1 {
			return name
		}
	}
}

// NewName appends "_A", "_B", ... to base until accept approves, per
// §4.2's new_name(accept_fn).
func NewName(base string, accept func(string) bool) string {
	if accept(base) {
		return base
	}
	for i := 0; ; i++ {
		candidate := base + "_" + DefaultNameForIndex(i)
		if accept(candidate) {
			return candidate
		}
	}
}
