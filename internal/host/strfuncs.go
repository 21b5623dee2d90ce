package host

import (
	"strings"

	"mondot/internal/value"
)

// RegisterStrFuncs installs the string primitives, including strlen
// and str_char_at which the compiler's foreach desugaring depends on
// directly (spec §4.1).
func RegisterStrFuncs(b *Bridge) {
	b.Register("strlen", func(args []value.Value) value.Value {
		if len(args) != 1 || !args[0].IsString() {
			return value.Number(0)
		}
		return value.Number(float64(len([]rune(args[0].AsString()))))
	})

	b.Register("str_char_at", func(args []value.Value) value.Value {
		if len(args) != 2 || !args[0].IsString() || !args[1].IsNumber() {
			return value.String("")
		}
		runes := []rune(args[0].AsString())
		idx := int(args[1].AsNumber())
		if idx < 0 || idx >= len(runes) {
			return value.String("")
		}
		return value.String(string(runes[idx]))
	})

	b.Register("str_concat", func(args []value.Value) value.Value {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(a.String())
		}
		return value.String(sb.String())
	})

	b.Register("str_upper", unaryStr(strings.ToUpper))
	b.Register("str_lower", unaryStr(strings.ToLower))

	b.Register("str_contains", func(args []value.Value) value.Value {
		if len(args) != 2 || !args[0].IsString() || !args[1].IsString() {
			return value.Bool(false)
		}
		return value.Bool(strings.Contains(args[0].AsString(), args[1].AsString()))
	})
}

func unaryStr(f func(string) string) NativeFunc {
	return func(args []value.Value) value.Value {
		if len(args) != 1 || !args[0].IsString() {
			return value.String("")
		}
		return value.String(f(args[0].AsString()))
	}
}
