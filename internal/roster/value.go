package roster

import (
	"encoding/json"
	"strconv"
)

// Value is a stat reading that may be missing. The zero value is Missing.
// Arithmetic involving a missing operand yields Missing.
type Value struct {
	v  float64
	ok bool
}

// Missing is the absent-value sentinel.
var Missing = Value{}

// Of wraps a present reading.
func Of(f float64) Value { return Value{v: f, ok: true} }

// Valid reports whether the value is present.
func (v Value) Valid() bool { return v.ok }

// Float returns the reading and whether it is present.
func (v Value) Float() (float64, bool) { return v.v, v.ok }

func (v Value) Add(o Value) Value {
	if !v.ok || !o.ok {
		return Missing
	}
	return Of(v.v + o.v)
}

func (v Value) Sub(o Value) Value {
	if !v.ok || !o.ok {
		return Missing
	}
	return Of(v.v - o.v)
}

func (v Value) Neg() Value {
	if !v.ok {
		return Missing
	}
	return Of(-v.v)
}

// String renders the value for delimited output; missing is empty.
func (v Value) String() string {
	if !v.ok {
		return ""
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Of(f)
	return nil
}
