package host

import (
	"testing"

	"mondot/internal/value"
)

func TestRegisterAndHasAndInvoke(t *testing.T) {
	b := New()
	if b.Has("double") {
		t.Fatal("fresh bridge should not report any function registered")
	}
	b.Register("double", func(args []value.Value) value.Value {
		return value.Number(args[0].AsNumber() * 2)
	})
	if !b.Has("double") {
		t.Fatal("expected Has to report the registered function")
	}
	result := b.Invoke("double", []value.Value{value.Number(21)})
	if result.AsNumber() != 42 {
		t.Errorf("expected 42, got %v", result)
	}
}

func TestInvokeAbsentFunctionReturnsNil(t *testing.T) {
	b := New()
	result := b.Invoke("missing", nil)
	if !result.IsNil() {
		t.Errorf("expected nil for an unregistered function, got %v", result)
	}
}

func TestNewRuleIssuesMonotonicIDs(t *testing.T) {
	b := New()
	a := b.NewRule("kind")
	c := b.NewRule("kind")
	if a.AsRule().ID == c.AsRule().ID {
		t.Error("expected distinct rule ids across successive issuance")
	}
}

func TestCoreFuncsArithmetic(t *testing.T) {
	b := New()
	RegisterCoreFuncs(b)

	sum := b.Invoke("add", []value.Value{value.Number(2), value.Number(3)})
	if sum.AsNumber() != 5 {
		t.Errorf("add: expected 5, got %v", sum)
	}
	concat := b.Invoke("add", []value.Value{value.String("a"), value.String("b")})
	if concat.AsString() != "ab" {
		t.Errorf("add on strings: expected concatenation, got %v", concat)
	}
	divByZero := b.Invoke("div", []value.Value{value.Number(1), value.Number(0)})
	if divByZero.AsNumber() != 0 {
		t.Errorf("div by zero: expected 0, got %v", divByZero)
	}
}

func TestStrFuncsForeachPrimitives(t *testing.T) {
	b := New()
	RegisterStrFuncs(b)

	length := b.Invoke("strlen", []value.Value{value.String("abc")})
	if length.AsNumber() != 3 {
		t.Errorf("strlen: expected 3, got %v", length)
	}
	ch := b.Invoke("str_char_at", []value.Value{value.String("abc"), value.Number(1)})
	if ch.AsString() != "b" {
		t.Errorf("str_char_at: expected %q, got %v", "b", ch)
	}
	oob := b.Invoke("str_char_at", []value.Value{value.String("abc"), value.Number(9)})
	if oob.AsString() != "" {
		t.Errorf("str_char_at out of range: expected empty string, got %v", oob)
	}
}
