// Package sqltypes holds the value/column/predicate primitives shared by
// the catalog, planner, optimizer and executor: the sum-type Value, the
// qualified Column name, comparison operators, and Predicate.
package sqltypes

import (
	"strings"

	"github.com/spf13/cast"
)

// Kind discriminates the two Value variants.
type Kind int

const (
	// KindInt marks an int64-valued Value.
	KindInt Kind = iota
	// KindStr marks a string-valued Value.
	KindStr
)

// Value is the sum of int64 | string described in spec §3. It is a plain
// tagged struct rather than interface{} so that Compare never needs a
// default-panic type switch branch.
type Value struct {
	Kind Kind
	I    int64
	S    string
}

// Int builds an int64 Value.
func Int(i int64) Value { return Value{Kind: KindInt, I: i} }

// Str builds a string Value.
func Str(s string) Value { return Value{Kind: KindStr, S: s} }

// String renders the value the way it would appear in generated SQL text.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return itoa(v.I)
	case KindStr:
		return "'" + strings.ReplaceAll(v.S, "'", "''") + "'"
	default:
		return ""
	}
}

// Raw renders the value as a bare TSV cell, with no quoting.
func (v Value) Raw() string {
	switch v.Kind {
	case KindInt:
		return itoa(v.I)
	case KindStr:
		return v.S
	default:
		return ""
	}
}

func itoa(i int64) string {
	neg := i < 0
	if neg {
		i = -i
	}
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// ParseTypedLiteral types a raw source token (a DDL literal, a SQL
// literal, or a TSV cell) according to a column's declared "int"/"str"
// kind. A quoted string literal is unquoted; anything that fails to
// parse as the declared kind reports ok=false rather than guessing.
func ParseTypedLiteral(columnType, raw string) (Value, bool) {
	switch columnType {
	case "int":
		i, err := cast.ToInt64E(raw)
		if err != nil {
			return Value{}, false
		}
		return Int(i), true
	case "str":
		return Str(strings.Trim(raw, "'\"")), true
	default:
		return Value{}, false
	}
}

// Compare returns an int triple-way compare (negative, zero, positive)
// between two same-kind values. Mixed-kind comparisons are undefined and
// return 0, per spec §3.
func Compare(a, b Value) int {
	if a.Kind != b.Kind {
		return 0
	}
	switch a.Kind {
	case KindInt:
		switch {
		case a.I < b.I:
			return -1
		case a.I > b.I:
			return 1
		default:
			return 0
		}
	case KindStr:
		return strings.Compare(a.S, b.S)
	default:
		return 0
	}
}
