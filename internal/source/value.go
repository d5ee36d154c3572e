package source

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindStringList
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStringList:
		return "string_list"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a tagged union over the normalized property types a
// database row can carry. The zero Value is null. Immutable — list
// contents are copied on construction and on access.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []string
}

// Null returns the null Value.
func Null() Value { return Value{} }

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// StringList wraps an ordered list of strings. The slice is copied.
func StringList(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)

	return Value{kind: KindStringList, list: cp}
}

// Date wraps a raw ISO date string. No timezone normalization is
// performed at this layer.
func Date(iso string) Value { return Value{kind: KindDate, str: iso} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string content for KindString and KindDate values,
// and "" otherwise.
func (v Value) Str() string { return v.str }

// Num returns the numeric content for KindNumber values, and 0 otherwise.
func (v Value) Num() float64 { return v.num }

// Boolean returns the boolean content for KindBool values, and false otherwise.
func (v Value) Boolean() bool { return v.b }

// List returns a copy of the list content for KindStringList values,
// and nil otherwise.
func (v Value) List() []string {
	if v.list == nil {
		return nil
	}

	cp := make([]string, len(v.list))
	copy(cp, v.list)

	return cp
}

// MarshalJSON renders the value in its native JSON shape: null, string,
// number, boolean, or array of strings. Dates marshal as their raw ISO
// string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString, KindDate:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindStringList:
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

// Display renders the value for human-readable output (tables, logs).
func (v Value) Display() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString, KindDate:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindStringList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}
