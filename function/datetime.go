package function

import (
	"strings"
	"time"

	"github.com/rowpipe/rowpipe/value"
)

// excelEpoch is 1899-12-30, the reference point for Excel's serial date
// system (§4.4).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func toTime(v value.Value) (time.Time, bool) {
	if v.Kind() != value.KindDate {
		return time.Time{}, false
	}
	secs := v.AsDouble()
	whole := int64(secs)
	frac := secs - float64(whole)
	return time.Unix(whole, int64(frac*1e9)).UTC(), true
}

func fromTime(t time.Time) value.Value {
	return value.Date(float64(t.Unix()) + float64(t.Nanosecond())/1e9)
}

func init() {
	register(&Function{
		Name: "now", Arity: Fixed(0), Deterministic: false,
		apply: func(args []value.Value) value.Value { return fromTime(time.Now().UTC()) },
	})
	fixed("from_unix", 1, func(args []value.Value) value.Value {
		n, ok := args[0].Number()
		if !ok {
			return value.Invalid
		}
		return value.Date(n - value.EpochOffsetSeconds)
	})
	fixed("to_unix", 1, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindDate {
			return value.Invalid
		}
		return value.Double(args[0].AsDouble() + value.EpochOffsetSeconds)
	})
	fixed("from_iso8601", 1, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString {
			return value.Invalid
		}
		t, err := time.Parse(time.RFC3339Nano, args[0].AsString())
		if err != nil {
			return value.Invalid
		}
		return fromTime(t.UTC())
	})
	fixed("to_local_iso8601", 1, func(args []value.Value) value.Value {
		t, ok := toTime(args[0])
		if !ok {
			return value.Invalid
		}
		return value.String(t.In(time.Local).Format("2006-01-02T15:04:05.000Z07:00"))
	})
	fixed("to_utc_iso8601", 1, func(args []value.Value) value.Value {
		t, ok := toTime(args[0])
		if !ok {
			return value.Invalid
		}
		return value.String(t.Format("2006-01-02T15:04:05.000Z"))
	})
	fixed("from_excel_date", 1, func(args []value.Value) value.Value {
		days, ok := args[0].Number()
		if !ok {
			return value.Invalid
		}
		t := excelEpoch.Add(time.Duration(days * float64(24*time.Hour)))
		return fromTime(t)
	})
	fixed("to_excel_date", 1, func(args []value.Value) value.Value {
		t, ok := toTime(args[0])
		if !ok {
			return value.Invalid
		}
		return value.Double(t.Sub(excelEpoch).Hours() / 24)
	})
	fixed("utc_date", 1, func(args []value.Value) value.Value {
		t, ok := toTime(args[0])
		if !ok {
			return value.Invalid
		}
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return fromTime(midnight)
	})
	component := func(name string, extract func(time.Time) int64) {
		fixed(name, 1, func(args []value.Value) value.Value {
			t, ok := toTime(args[0])
			if !ok {
				return value.Invalid
			}
			return value.Int(extract(t))
		})
	}
	component("utc_year", func(t time.Time) int64 { return int64(t.Year()) })
	component("utc_month", func(t time.Time) int64 { return int64(t.Month()) })
	component("utc_day", func(t time.Time) int64 { return int64(t.Day()) })
	component("utc_hour", func(t time.Time) int64 { return int64(t.Hour()) })
	component("utc_minute", func(t time.Time) int64 { return int64(t.Minute()) })
	component("utc_second", func(t time.Time) int64 { return int64(t.Second()) })

	fixed("duration", 2, func(args []value.Value) value.Value {
		a, aok := toTime(args[0])
		b, bok := toTime(args[1])
		if !aok || !bok {
			return value.Invalid
		}
		return value.Double(b.Sub(a).Seconds())
	})
	fixed("after", 2, func(args []value.Value) value.Value {
		a, ok := toTime(args[0])
		if !ok {
			return value.Invalid
		}
		s, ok := args[1].Number()
		if !ok {
			return value.Invalid
		}
		return fromTime(a.Add(time.Duration(s * float64(time.Second))))
	})
	fixed("from_unicode_date", 2, func(args []value.Value) value.Value {
		if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
			return value.Invalid
		}
		layout := unicodeToGoLayout(args[1].AsString())
		t, err := time.ParseInLocation(layout, args[0].AsString(), time.UTC)
		if err != nil {
			return value.Invalid
		}
		return fromTime(t)
	})
	fixed("to_unicode_date", 2, func(args []value.Value) value.Value {
		t, ok := toTime(args[0])
		if !ok || args[1].Kind() != value.KindString {
			return value.Invalid
		}
		layout := unicodeToGoLayout(args[1].AsString())
		return value.String(t.Format(layout))
	})
}

// unicodeToGoLayout translates a handful of common Unicode date-pattern
// tokens (the CLDR subset this engine supports) into a Go reference-time
// layout. The formatter's timezone is always UTC (§4.4).
func unicodeToGoLayout(pattern string) string {
	replacer := strings.NewReplacer(
		"yyyy", "2006",
		"yy", "06",
		"MM", "01",
		"dd", "02",
		"HH", "15",
		"mm", "04",
		"ss", "05",
		"SSS", "000",
	)
	return replacer.Replace(pattern)
}
