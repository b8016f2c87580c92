package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/spf13/cast"
)

// Epoch is the reference point for Value's date representation: seconds
// (float64) since the Unix epoch, UTC. Chosen as "the agreed epoch" of §3;
// to_unix/from_unix are therefore the identity transform and exist purely
// as named functions at the boundary (see function package).
const EpochOffsetSeconds = 0

// Value is the tagged scalar described in §3. The zero Value is Empty.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	blob []byte
}

// Empty is the canonical "no value supplied" scalar.
var Empty = Value{kind: KindEmpty}

// Invalid is the canonical "computation failed" scalar.
var Invalid = Value{kind: KindInvalid}

func Int(v int64) Value      { return Value{kind: KindInt, i: v} }
func Double(v float64) Value { return Value{kind: KindDouble, f: v} }
func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func Date(secondsSinceEpoch float64) Value {
	return Value{kind: KindDate, f: secondsSinceEpoch}
}
func Blob(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBlob, blob: cp}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsEmpty() bool   { return v.kind == KindEmpty }
func (v Value) IsInvalid() bool { return v.kind == KindInvalid }
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindDouble }

// AsInt returns the int payload; only meaningful when Kind() == KindInt.
func (v Value) AsInt() int64 { return v.i }

// AsDouble returns the double/date payload; meaningful for KindDouble and
// KindDate.
func (v Value) AsDouble() float64 { return v.f }

// AsBool returns the bool payload; meaningful for KindBool.
func (v Value) AsBool() bool { return v.b }

// AsString returns the string payload; meaningful for KindString.
func (v Value) AsString() string { return v.s }

// AsBlob returns the blob payload; meaningful for KindBlob.
func (v Value) AsBlob() []byte { return v.blob }

// Number returns the value coerced to float64 and whether coercion
// succeeded. Only Int and Double coerce; everything else fails -- per
// §4.1, strings never silently coerce to numbers outside explicit
// functions (parse_number, see function package).
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindDouble:
		return v.f, true
	default:
		return 0, false
	}
}

// ToString renders the value for display / string concatenation (the `&`
// operator). Empty renders as "", Invalid as "#INVALID".
func (v Value) ToString() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindInvalid:
		return "#INVALID"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindDouble:
		return formatDouble(v.f)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindString:
		return v.s
	case KindDate:
		return formatDouble(v.f)
	case KindBlob:
		return fmt.Sprintf("#BLOB(%d)", len(v.blob))
	default:
		return ""
	}
}

func formatDouble(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "#INVALID"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal implements value equality per §3: invalid != invalid, empty ==
// empty, numeric comparison coerces int<->double, strings compare
// case-sensitively, booleans compare normally.
func (v Value) Equal(other Value) bool {
	if v.kind == KindInvalid || other.kind == KindInvalid {
		return false
	}
	if v.kind == KindEmpty && other.kind == KindEmpty {
		return true
	}
	if v.IsNumeric() && other.IsNumeric() {
		a, _ := v.Number()
		b, _ := other.Number()
		return a == b
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindDate:
		return v.f == other.f
	case KindBlob:
		return string(v.blob) == string(other.blob)
	default:
		return false
	}
}

// Compare returns -1/0/1 ordering, and whether ordering is defined at all
// (undefined for invalid operands, blobs, or mismatched non-numeric
// kinds). Booleans order false < true.
func (v Value) Compare(other Value) (int, bool) {
	if v.kind == KindInvalid || other.kind == KindInvalid {
		return 0, false
	}
	if v.IsNumeric() && other.IsNumeric() {
		a, _ := v.Number()
		b, _ := other.Number()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case KindString:
		return strings.Compare(v.s, other.s), true
	case KindBool:
		if v.b == other.b {
			return 0, true
		}
		if !v.b && other.b {
			return -1, true
		}
		return 1, true
	case KindDate:
		switch {
		case v.f < other.f:
			return -1, true
		case v.f > other.f:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// hashPayload is the canonical representation hashstructure hashes: it
// must agree with Equal, so numeric kinds are normalized to float64 and
// Empty/Invalid collapse to bare tags.
type hashPayload struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
	Blob string
}

// Hash returns a hash consistent with Equal: numerically-equal int/double
// values hash identically, and invalid values never compare equal to
// anything (including themselves under Equal) but must still hash
// deterministically since they may transiently occupy map buckets.
func (v Value) Hash() uint64 {
	p := hashPayload{Kind: v.kind}
	switch v.kind {
	case KindInt, KindDouble:
		p.Kind = KindDouble // normalize so 1 and 1.0 hash the same
		n, _ := v.Number()
		p.Num = n
	case KindBool:
		p.Bool = v.b
	case KindString:
		p.Str = v.s
	case KindDate:
		p.Num = v.f
	case KindBlob:
		p.Blob = string(v.blob)
	}
	h, err := hashstructure.Hash(p, hashstructure.FormatV2, nil)
	if err != nil {
		// hashstructure only fails on unsupported field types; our
		// payload is a flat struct of primitives and cannot trigger it.
		panic(err)
	}
	return h
}

// Coerced attempts to reinterpret v as a number using the permissive rules
// reserved for explicit functions (parse_number, round, etc.), via
// github.com/spf13/cast -- unlike Number(), this will parse numeric
// strings.
func (v Value) Coerced() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindDouble:
		return v.f, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := cast.ToFloat64E(v.s)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
