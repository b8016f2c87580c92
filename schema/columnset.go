package schema

import "fmt"

// OrderedColumnSet is an insertion-ordered sequence of columns with
// uniqueness enforced at construction (§3).
type OrderedColumnSet struct {
	columns []Column
	index   map[string]int
}

// NewOrderedColumnSet builds a set from columns, rejecting duplicates
// (case-insensitive). Returns an error naming the first duplicate.
func NewOrderedColumnSet(columns ...Column) (*OrderedColumnSet, error) {
	set := &OrderedColumnSet{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := set.append(c); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// MustNewOrderedColumnSet panics on duplicate columns; intended for
// construction from literal, known-unique column lists.
func MustNewOrderedColumnSet(columns ...Column) *OrderedColumnSet {
	set, err := NewOrderedColumnSet(columns...)
	if err != nil {
		panic(err)
	}
	return set
}

func (s *OrderedColumnSet) append(c Column) error {
	key := c.Key()
	if _, exists := s.index[key]; exists {
		return fmt.Errorf("duplicate column %q", c.Name())
	}
	s.index[key] = len(s.columns)
	s.columns = append(s.columns, c)
	return nil
}

// Len returns the number of columns.
func (s *OrderedColumnSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.columns)
}

// Columns returns the columns in insertion order. The returned slice must
// not be mutated.
func (s *OrderedColumnSet) Columns() []Column {
	if s == nil {
		return nil
	}
	return s.columns
}

// IndexOf returns the index of c, or -1 if absent.
func (s *OrderedColumnSet) IndexOf(c Column) int {
	if s == nil {
		return -1
	}
	if i, ok := s.index[c.Key()]; ok {
		return i
	}
	return -1
}

// Contains reports whether c is a member.
func (s *OrderedColumnSet) Contains(c Column) bool { return s.IndexOf(c) != -1 }

// With returns a new set with the columns in cols not already present
// appended, in the order given.
func (s *OrderedColumnSet) With(cols ...Column) (*OrderedColumnSet, error) {
	merged := append([]Column{}, s.Columns()...)
	for _, c := range cols {
		if !s.Contains(c) {
			merged = append(merged, c)
		}
	}
	return NewOrderedColumnSet(merged...)
}

// Project returns a new set containing only the named columns, in the
// order requested (§4.7 selectColumns).
func (s *OrderedColumnSet) Project(cols ...Column) (*OrderedColumnSet, error) {
	return NewOrderedColumnSet(cols...)
}

// Intersect returns a new set of columns present in both s and other,
// preserving s's order -- used by selectColumns(A).selectColumns(B).
func (s *OrderedColumnSet) Intersect(other *OrderedColumnSet) *OrderedColumnSet {
	var kept []Column
	for _, c := range s.Columns() {
		if other.Contains(c) {
			kept = append(kept, c)
		}
	}
	set, _ := NewOrderedColumnSet(kept...)
	return set
}
