package host

import "mondot/internal/value"

// RegisterCoreFuncs installs the numeric and boolean primitives
// scripts compose arithmetic and comparisons from, since MonDot has
// no built-in operators (grammar in spec §6 has none). Grounded on
// original_source/src/host_core_funcs.h.
func RegisterCoreFuncs(b *Bridge) {
	b.Register("add", binaryNumOrString(func(a, c float64) float64 { return a + c }))
	b.Register("sub", binaryNum(func(a, c float64) float64 { return a - c }))
	b.Register("mul", binaryNum(func(a, c float64) float64 { return a * c }))
	b.Register("div", binaryNum(func(a, c float64) float64 {
		if c == 0 {
			return 0
		}
		return a / c
	}))
	b.Register("mod", binaryNum(func(a, c float64) float64 {
		if c == 0 {
			return 0
		}
		ai, ci := int64(a), int64(c)
		return float64(ai % ci)
	}))

	b.Register("lt", binaryCmp(func(a, c float64) bool { return a < c }))
	b.Register("le", binaryCmp(func(a, c float64) bool { return a <= c }))
	b.Register("gt", binaryCmp(func(a, c float64) bool { return a > c }))
	b.Register("ge", binaryCmp(func(a, c float64) bool { return a >= c }))

	b.Register("eq", func(args []value.Value) value.Value {
		if len(args) != 2 {
			return value.Bool(false)
		}
		return value.Bool(value.Equal(args[0], args[1]))
	})
	b.Register("not", func(args []value.Value) value.Value {
		if len(args) != 1 {
			return value.Nil
		}
		return value.Bool(!args[0].Truthy())
	})
	b.Register("and", func(args []value.Value) value.Value {
		if len(args) != 2 {
			return value.Bool(false)
		}
		return value.Bool(args[0].Truthy() && args[1].Truthy())
	})
	b.Register("or", func(args []value.Value) value.Value {
		if len(args) != 2 {
			return value.Bool(false)
		}
		return value.Bool(args[0].Truthy() || args[1].Truthy())
	})
}

func binaryNum(f func(a, c float64) float64) NativeFunc {
	return func(args []value.Value) value.Value {
		if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
			return value.Nil
		}
		return value.Number(f(args[0].AsNumber(), args[1].AsNumber()))
	}
}

// binaryNumOrString backs `add`, which also concatenates strings in
// the surrounding host-library convention scripts rely on.
func binaryNumOrString(f func(a, c float64) float64) NativeFunc {
	return func(args []value.Value) value.Value {
		if len(args) != 2 {
			return value.Nil
		}
		if args[0].IsString() && args[1].IsString() {
			return value.String(args[0].AsString() + args[1].AsString())
		}
		if !args[0].IsNumber() || !args[1].IsNumber() {
			return value.Nil
		}
		return value.Number(f(args[0].AsNumber(), args[1].AsNumber()))
	}
}

func binaryCmp(f func(a, c float64) bool) NativeFunc {
	return func(args []value.Value) value.Value {
		if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
			return value.Bool(false)
		}
		return value.Bool(f(args[0].AsNumber(), args[1].AsNumber()))
	}
}
