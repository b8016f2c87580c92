package function

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rowpipe/rowpipe/value"
)

func runes(s string) []rune { return []rune(s) }

func init() {
	idempotentUnary("upper", func(v value.Value) value.Value {
		if v.Kind() != value.KindString {
			return value.Invalid
		}
		return value.String(strings.ToUpper(v.AsString()))
	})
	idempotentUnary("lower", func(v value.Value) value.Value {
		if v.Kind() != value.KindString {
			return value.Invalid
		}
		return value.String(strings.ToLower(v.AsString()))
	})
	idempotentUnary("trim", func(v value.Value) value.Value {
		if v.Kind() != value.KindString {
			return value.Invalid
		}
		return value.String(strings.TrimSpace(v.AsString()))
	})
	idempotentUnary("capitalize", func(v value.Value) value.Value {
		if v.Kind() != value.KindString {
			return value.Invalid
		}
		s := v.AsString()
		if s == "" {
			return value.String(s)
		}
		r := runes(s)
		return value.String(strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:])))
	})

	fixed("left", 2, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		n, ok := args[1].Number()
		if !ok || n < 0 {
			return value.Invalid
		}
		r := runes(args[0].AsString())
		if int(n) > len(r) {
			n = float64(len(r))
		}
		return value.String(string(r[:int(n)]))
	})
	fixed("right", 2, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		n, ok := args[1].Number()
		if !ok || n < 0 {
			return value.Invalid
		}
		r := runes(args[0].AsString())
		if int(n) > len(r) {
			n = float64(len(r))
		}
		return value.String(string(r[len(r)-int(n):]))
	})
	fixed("mid", 3, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		start, ok1 := args[1].Number()
		length, ok2 := args[2].Number()
		if !ok1 || !ok2 || start < 1 || length < 0 {
			return value.Invalid
		}
		r := runes(args[0].AsString())
		from := int(start) - 1
		if from >= len(r) {
			return value.String("")
		}
		to := from + int(length)
		if to > len(r) {
			to = len(r)
		}
		return value.String(string(r[from:to]))
	})
	fixed("length", 1, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		return value.Int(int64(len(runes(args[0].AsString()))))
	})
	fixed("substitute", 3, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString || args[2].Kind() != value.KindString {
			return value.Invalid
		}
		return value.String(strings.ReplaceAll(args[0].AsString(), args[1].AsString(), args[2].AsString()))
	})
	register(&Function{
		Name: "regex_substitute", Arity: Fixed(3), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString || args[2].Kind() != value.KindString {
				return value.Invalid
			}
			re, err := regexp.Compile(args[1].AsString())
			if err != nil {
				return value.Invalid
			}
			return value.String(re.ReplaceAllString(args[0].AsString(), args[2].AsString()))
		},
	})
	fixed("url_encode", 1, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		return value.String(url.QueryEscape(args[0].AsString()))
	})
	fixed("levenshtein", 2, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
			return value.Invalid
		}
		return value.Int(int64(levenshtein(args[0].AsString(), args[1].AsString())))
	})
	fixed("split", 2, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
			return value.Invalid
		}
		parts := strings.Split(args[0].AsString(), args[1].AsString())
		vals := make([]value.Value, len(parts))
		for i, p := range parts {
			vals[i] = value.String(p)
		}
		return value.String(value.EncodePack(vals))
	})

	fixed("nth", 2, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		i, ok := args[1].Number()
		if !ok {
			return value.Invalid
		}
		return value.Nth(args[0].AsString(), int64(i))
	})
	fixed("items", 1, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		return value.Int(value.Items(args[0].AsString()))
	})
	fixed("value_for_key", 2, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
			return value.Invalid
		}
		return value.ValueForKey(args[0].AsString(), args[1].AsString())
	})
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := runes(a), runes(b)
	la, lb := len(ra), len(rb)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
