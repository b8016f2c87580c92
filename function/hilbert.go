package function

import "github.com/rowpipe/rowpipe/value"

// isPowerOfTwo reports whether n is a power of two >= 1.
func isPowerOfTwo(n int64) bool { return n >= 1 && n&(n-1) == 0 }

func init() {
	fixed("hilbert_xy_to_d", 3, func(args []value.Value) value.Value {
		n, x, y, ok := hilbertArgs3(args)
		if !ok {
			return value.Invalid
		}
		var d int64
		for s := n / 2; s > 0; s /= 2 {
			var rx, ry int64
			if (x & s) > 0 {
				rx = 1
			}
			if (y & s) > 0 {
				ry = 1
			}
			d += s * s * ((3 * rx) ^ ry)
			x, y = hilbertRotate(s, x, y, rx, ry)
		}
		return value.Int(d)
	})
	register(&Function{
		Name: "hilbert_d_to_x", Arity: Fixed(2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			x, _, ok := hilbertDtoXY(args)
			if !ok {
				return value.Invalid
			}
			return value.Int(x)
		},
	})
	register(&Function{
		Name: "hilbert_d_to_y", Arity: Fixed(2), Deterministic: true,
		apply: func(args []value.Value) value.Value {
			_, y, ok := hilbertDtoXY(args)
			if !ok {
				return value.Invalid
			}
			return value.Int(y)
		},
	})
}

func hilbertArgs3(args []value.Value) (n, x, y int64, ok bool) {
	if args[0].Kind() != value.KindInt || args[1].Kind() != value.KindInt || args[2].Kind() != value.KindInt {
		return 0, 0, 0, false
	}
	n = args[0].AsInt()
	x = args[1].AsInt()
	y = args[2].AsInt()
	if !isPowerOfTwo(n) || x < 0 || x >= n || y < 0 || y >= n {
		return 0, 0, 0, false
	}
	return n, x, y, true
}

func hilbertDtoXY(args []value.Value) (x, y int64, ok bool) {
	if args[0].Kind() != value.KindInt || args[1].Kind() != value.KindInt {
		return 0, 0, false
	}
	n := args[0].AsInt()
	d := args[1].AsInt()
	if !isPowerOfTwo(n) || d < 0 || d >= n*n {
		return 0, 0, false
	}
	t := d
	for s := int64(1); s < n; s *= 2 {
		rx := 1 & (t / 2)
		ry := 1 & (t ^ rx)
		x, y = hilbertRotate(s, x, y, rx, ry)
		x += s * rx
		y += s * ry
		t /= 4
	}
	return x, y, true
}

func hilbertRotate(s, x, y, rx, ry int64) (int64, int64) {
	if ry == 0 {
		if rx == 1 {
			x = s - 1 - x
			y = s - 1 - y
		}
		x, y = y, x
	}
	return x, y
}
