// Package value implements MonDot's runtime value model: a small
// tagged union of nil, boolean, number, string and rule-handle
// variants shared between the compiler's constant pool and the
// virtual machine's evaluation stack.
package value

import (
	"fmt"
	"strconv"
)

// Tag identifies which variant a Value currently holds.
type Tag uint8

const (
	TagNil Tag = iota
	TagBool
	TagNumber
	TagString
	TagRule
)

// RuleHandle is the opaque host-owned resource identifier carried by
// a Rule-tagged Value. It has no defined consumption path in scripts
// (see spec §9 open question 3); the host bridge is the only issuer.
type RuleHandle struct {
	ID   uint64
	Kind string
}

// Value is MonDot's tagged-union runtime value. Numbers and booleans
// are bit-copied; strings and rule-handles carry shared ownership of
// immutable payloads via the pointer fields, so copying a Value never
// duplicates the underlying text or handle.
type Value struct {
	tag  Tag
	num  float64
	b    bool
	str  *string
	rule *RuleHandle
}

// Nil is the zero Value and the canonical nil singleton.
var Nil = Value{tag: TagNil}

// Bool constructs a boolean Value.
func Bool(b bool) Value {
	return Value{tag: TagBool, b: b}
}

// Number constructs a numeric Value.
func Number(n float64) Value {
	return Value{tag: TagNumber, num: n}
}

// String constructs a string Value. The payload is shared, not
// copied, by every Value derived from it via assignment.
func String(s string) Value {
	return Value{tag: TagString, str: &s}
}

// Rule constructs a rule-handle Value wrapping an opaque host id.
func Rule(h RuleHandle) Value {
	return Value{tag: TagRule, rule: &h}
}

func (v Value) Tag() Tag { return v.tag }

func (v Value) IsNil() bool    { return v.tag == TagNil }
func (v Value) IsBool() bool   { return v.tag == TagBool }
func (v Value) IsNumber() bool { return v.tag == TagNumber }
func (v Value) IsString() bool { return v.tag == TagString }
func (v Value) IsRule() bool   { return v.tag == TagRule }

// AsBool returns the boolean payload, or false if v is not boolean.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the numeric payload, or 0 if v is not numeric.
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the string payload, or "" if v is not a string.
func (v Value) AsString() string {
	if v.str == nil {
		return ""
	}
	return *v.str
}

// AsRule returns the rule-handle payload, or the zero handle if v is
// not a rule.
func (v Value) AsRule() RuleHandle {
	if v.rule == nil {
		return RuleHandle{}
	}
	return *v.rule
}

// Truthy implements the coercion rule from spec §3: nil is false,
// booleans are themselves, numbers are true iff nonzero, everything
// else (string, rule) is true.
func (v Value) Truthy() bool {
	switch v.tag {
	case TagNil:
		return false
	case TagBool:
		return v.b
	case TagNumber:
		return v.num != 0
	default:
		return true
	}
}

// Equal implements structural, per-variant equality. Values of
// different tags are never equal.
func Equal(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagNil:
		return true
	case TagBool:
		return a.b == b.b
	case TagNumber:
		return a.num == b.num
	case TagString:
		return a.AsString() == b.AsString()
	case TagRule:
		return a.AsRule() == b.AsRule()
	}
	return false
}

// String renders a Value for logging and the io.print host function.
func (v Value) String() string {
	switch v.tag {
	case TagNil:
		return "nil"
	case TagBool:
		if v.b {
			return "true"
		}
		return "false"
	case TagNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case TagString:
		return v.AsString()
	case TagRule:
		r := v.AsRule()
		return fmt.Sprintf("Rule(%s:%d)", r.Kind, r.ID)
	}
	return "?"
}
