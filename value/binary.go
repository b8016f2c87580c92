package value

import (
	"math"
	"regexp"
	"strings"
)

// Binary enumerates the 17 binary operators of §3/§4.1.
type Binary uint8

const (
	Add Binary = iota
	Subtract
	Multiply
	Divide
	Modulo
	Power
	Concat // &
	Equals
	NotEquals
	LessThan
	LessOrEqual
	GreaterThan
	GreaterOrEqual
	ContainsInsensitive   // ~=
	ContainsSensitive     // ~~=
	MatchesInsensitive    // ±=
	MatchesSensitive      // ±±=
)

// IsCommutative reports whether operand order does not affect the result.
func (b Binary) IsCommutative() bool {
	switch b {
	case Add, Multiply, Equals, NotEquals:
		return true
	default:
		return false
	}
}

// IsComparative reports whether this operator yields a bool.
func (b Binary) IsComparative() bool {
	switch b {
	case Equals, NotEquals, LessThan, LessOrEqual, GreaterThan, GreaterOrEqual,
		ContainsInsensitive, ContainsSensitive, MatchesInsensitive, MatchesSensitive:
		return true
	default:
		return false
	}
}

// Mirror returns the operator that produces the same result with operands
// swapped (a<b ≡ b>a), and whether a mirror exists. Defined for the six
// ordering and equality comparisons; = and <> mirror to themselves.
func (b Binary) Mirror() (Binary, bool) {
	switch b {
	case LessThan:
		return GreaterThan, true
	case LessOrEqual:
		return GreaterOrEqual, true
	case GreaterThan:
		return LessThan, true
	case GreaterOrEqual:
		return LessOrEqual, true
	case Equals:
		return Equals, true
	case NotEquals:
		return NotEquals, true
	default:
		return b, false
	}
}

func (b Binary) String() string {
	switch b {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case Power:
		return "^"
	case Concat:
		return "&"
	case Equals:
		return "="
	case NotEquals:
		return "<>"
	case LessThan:
		return "<"
	case LessOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterOrEqual:
		return ">="
	case ContainsInsensitive:
		return "~="
	case ContainsSensitive:
		return "~~="
	case MatchesInsensitive:
		return "±="
	case MatchesSensitive:
		return "±±="
	default:
		return "?"
	}
}

// ApplyBinary implements Value::apply_binary of §4.1.
func (v Value) ApplyBinary(op Binary, other Value) Value {
	if v.kind == KindInvalid || other.kind == KindInvalid {
		// §4.1: "invalid compared to anything returns invalid" for every
		// operator, including = and <>. Value.Equal (§3, used internally
		// for set membership/dedup) differs: there, invalid != invalid.
		return Invalid
	}

	switch op {
	case Concat:
		if v.kind == KindEmpty {
			return String(other.ToString())
		}
		if other.kind == KindEmpty {
			return String(v.ToString())
		}
		return String(v.ToString() + other.ToString())
	case Equals:
		return Bool(v.Equal(other))
	case NotEquals:
		return Bool(!v.Equal(other))
	case LessThan, LessOrEqual, GreaterThan, GreaterOrEqual:
		c, ok := v.Compare(other)
		if !ok {
			return Invalid
		}
		switch op {
		case LessThan:
			return Bool(c < 0)
		case LessOrEqual:
			return Bool(c <= 0)
		case GreaterThan:
			return Bool(c > 0)
		default:
			return Bool(c >= 0)
		}
	case ContainsInsensitive:
		if v.kind != KindString || other.kind != KindString {
			return Invalid
		}
		return Bool(strings.Contains(strings.ToLower(v.s), strings.ToLower(other.s)))
	case ContainsSensitive:
		if v.kind != KindString || other.kind != KindString {
			return Invalid
		}
		return Bool(strings.Contains(v.s, other.s))
	case MatchesInsensitive, MatchesSensitive:
		if v.kind != KindString || other.kind != KindString {
			return Invalid
		}
		pattern := other.s
		if op == MatchesInsensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Invalid
		}
		return Bool(re.MatchString(v.s))
	default:
		return v.applyArithmetic(op, other)
	}
}

func (v Value) applyArithmetic(op Binary, other Value) Value {
	if v.kind == KindEmpty && other.kind == KindEmpty {
		// Arithmetic on empty generally yields invalid (§3), no documented
		// exception applies to these operators.
		return Invalid
	}
	a, aok := v.Number()
	b, bok := other.Number()
	if v.kind == KindEmpty {
		a, aok = 0, true
	}
	if other.kind == KindEmpty {
		b, bok = 0, true
	}
	if !aok || !bok {
		return Invalid
	}

	bothInt := (v.kind == KindInt || v.kind == KindEmpty) && (other.kind == KindInt || other.kind == KindEmpty)

	switch op {
	case Add:
		if bothInt {
			return Int(int64(a) + int64(b))
		}
		return Double(a + b)
	case Subtract:
		if bothInt {
			return Int(int64(a) - int64(b))
		}
		return Double(a - b)
	case Multiply:
		if bothInt {
			return Int(int64(a) * int64(b))
		}
		return Double(a * b)
	case Divide:
		if b == 0 {
			return Invalid
		}
		return Double(a / b)
	case Modulo:
		if b == 0 {
			return Invalid
		}
		if bothInt {
			return Int(int64(a) % int64(b))
		}
		return Double(math.Mod(a, b))
	case Power:
		return Double(math.Pow(a, b))
	default:
		return Invalid
	}
}
