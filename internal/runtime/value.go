// Package runtime implements rawk's scalar value model, associative
// arrays, record/field state, the regex cache, and number↔string
// conversion (spec §3 "Runtime scalar", §4.6 "Coercion rules").
package runtime

import (
	"strconv"
	"strings"
)

// Tag discriminates a Value's payload, mirroring the three-variant sum
// type spec §9 calls for in place of the source's untagged union.
type Tag int

const (
	TagNumber Tag = iota
	TagString
	TagStrNum
)

// Value is a tagged scalar: a number, a plain string, or a StrNum — a
// string read from input whose bytes happen to parse as a number, which
// compares and is used numerically wherever both sides agree (spec §3).
//
// Go's garbage collector owns Str's backing array directly; there is no
// manual refcount field here (see DESIGN.md's REDESIGN entry on dropping
// the source's Rc<AwkStr> scheme).
type Value struct {
	Tag Tag
	Num float64
	Str string
}

// Number builds a plain numeric Value.
func Number(n float64) Value { return Value{Tag: TagNumber, Num: n} }

// String builds a plain string Value (never numeric, even if parseable —
// use StrNum for input-derived text).
func String(s string) Value { return Value{Tag: TagString, Str: s} }

// StrNum builds a Value tagged as input-derived text. Whether the text
// looks numeric is not stored; Truthy and Compare call IsNumericString
// each time they need to know.
func StrNum(s string) Value {
	return Value{Tag: TagStrNum, Str: s}
}

// Uninitialized is the value an array auto-vivifies on first index
// access and the value of a never-assigned global: an empty StrNum,
// matching real awk's behavior under `(k) in a` after a bare read of
// `a[k]` (spec §4.7).
var Uninitialized = Value{Tag: TagStrNum, Str: ""}

// IsNumericString reports whether s parses as awk's "numeric string"
// grammar: optional leading/trailing whitespace, optional sign, digits
// with optional fractional part and exponent. Empty or non-numeric text
// returns false.
func IsNumericString(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	_, err := strconv.ParseFloat(t, 64)
	return err == nil
}

// ToNumber implements the Scalar→number coercion (spec §4.6): Number is
// identity; String/StrNum parses a leading numeric prefix, defaulting to
// 0 when nothing parses.
func (v Value) ToNumber() float64 {
	switch v.Tag {
	case TagNumber:
		return v.Num
	default:
		return parseLeadingNumber(v.Str)
	}
}

// ToString implements the Scalar→string coercion (spec §4.6): String/
// StrNum is identity; Number formats via convFmt ("%.6g" by default),
// with integer-valued floats rendered without a decimal point or
// exponent, matching awk's OFMT/CONVFMT custom.
func (v Value) ToString(convFmt string) string {
	switch v.Tag {
	case TagString, TagStrNum:
		return v.Str
	default:
		return FormatNumber(v.Num, convFmt)
	}
}

// Truthy implements awk's truthiness rule (spec §4.6): Number is truthy
// iff nonzero; String is truthy iff non-empty; StrNum uses numeric
// truthiness when its bytes parse as a number, else string truthiness.
func (v Value) Truthy() bool {
	switch v.Tag {
	case TagNumber:
		return v.Num != 0
	case TagStrNum:
		if IsNumericString(v.Str) {
			return parseLeadingNumber(v.Str) != 0
		}
		return v.Str != ""
	default:
		return v.Str != ""
	}
}

// numericCompare reports whether v should participate in a numeric
// comparison: true Numbers always do, StrNums only when their text
// parses as a number (spec §4.6).
func (v Value) numericCompare() bool {
	switch v.Tag {
	case TagNumber:
		return true
	case TagStrNum:
		return IsNumericString(v.Str)
	default:
		return false
	}
}

// Compare implements awk's comparison rule: numeric if both sides
// qualify (Number, or StrNum whose text parses), else lexicographic on
// the string coercion. Returns -1, 0, or 1.
func Compare(a, b Value, convFmt string) int {
	if a.numericCompare() && b.numericCompare() {
		an, bn := a.ToNumber(), b.ToNumber()
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	as, bs := a.ToString(convFmt), b.ToString(convFmt)
	return strings.Compare(as, bs)
}
