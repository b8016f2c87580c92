package value

import "strings"

// A Pack (§4.4/§6) is a single string encoding of a value sequence. Fields
// are separated by packFieldSep; a literal occurrence of the separator (or
// the escape character itself) inside a field's rendered text is escaped
// by placing one escape character immediately before it. This is stable
// and round-trippable through EncodePack/DecodePack/Nth/Items/ValueForKey
// but is otherwise an implementation detail -- callers never need to parse
// a pack by hand.
const (
	packFieldSep = "\x1f"
	packEscape   = "\x1e"
)

// EncodePack renders values as a single pack string (the `pack` reducer
// and `pack(...)` function, §4.4/§4.5).
func EncodePack(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = escapePackField(v.ToString())
	}
	return strings.Join(parts, packFieldSep)
}

func escapePackField(s string) string {
	s = strings.ReplaceAll(s, packEscape, packEscape+packEscape)
	s = strings.ReplaceAll(s, packFieldSep, packEscape+packFieldSep)
	return s
}

// DecodePack splits a pack string back into its string fields (used by
// Nth, Items and ValueForKey). An empty input decodes to zero fields, so a
// pack of no values has zero items; a pack holding one empty string also
// encodes as "" and therefore decodes to zero fields as well.
func DecodePack(s string) []string {
	if s == "" {
		return []string{}
	}
	var fields []string
	var cur strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch string(runes[i]) {
		case packEscape:
			if i+1 < len(runes) {
				cur.WriteRune(runes[i+1])
				i++
			}
		case packFieldSep:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(runes[i])
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// Nth returns the i-th (1-indexed) element of a pack as a string Value, or
// Invalid if out of range (§4.4).
func Nth(pack string, i int64) Value {
	fields := DecodePack(pack)
	if i < 1 || int(i) > len(fields) {
		return Invalid
	}
	return String(fields[i-1])
}

// Items returns the element count of a pack (§4.4).
func Items(pack string) int64 {
	return int64(len(DecodePack(pack)))
}

// ValueForKey interprets pack as alternating key,value,... pairs and
// returns the value for the first matching key, or Invalid (§4.4).
func ValueForKey(pack string, key string) Value {
	fields := DecodePack(pack)
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i] == key {
			return String(fields[i+1])
		}
	}
	return Invalid
}
