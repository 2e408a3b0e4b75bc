package graph

import "strconv"

// Value is the opaque scalar the store associates with properties and
// edge weights. Clients never see a typed property system: a value is
// either a string or an integer, depending on how it arrived over the
// wire (a RESP bulk string or a RESP integer). The store never
// interprets a Value except for equality/inequality in FILTER and FIND.
type Value struct {
	str   string
	i64   int64
	isInt bool
}

// NewString wraps a wire bulk-string param as a Value.
func NewString(s string) Value {
	return Value{str: s}
}

// NewInt wraps a wire integer param as a Value.
func NewInt(i int64) Value {
	return Value{i64: i, isInt: true}
}

// IsInt reports whether the value arrived as a RESP integer.
func (v Value) IsInt() bool {
	return v.isInt
}

// Int returns the integer form of the value (only meaningful if IsInt).
func (v Value) Int() int64 {
	return v.i64
}

// String renders the value the way a client would read it back: the raw
// string for string values, the decimal form for integer values.
func (v Value) String() string {
	if v.isInt {
		return strconv.FormatInt(v.i64, 10)
	}
	return v.str
}

// Equal implements the store's "=" predicate. Same-kind values compare
// natively; a string compared against an integer falls back to comparing
// their string forms, since the wire only distinguishes "framed as RESP
// integer" from "framed as bulk string" and a client writing FILTER q age
// 30 = almost certainly means the stored age to match regardless of which
// framing a given client library chose.
func (v Value) Equal(other Value) bool {
	if v.isInt && other.isInt {
		return v.i64 == other.i64
	}
	if !v.isInt && !other.isInt {
		return v.str == other.str
	}
	return v.String() == other.String()
}
