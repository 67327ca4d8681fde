package schema

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/streamrow/csvcore/src/convert"
)

// Value is the sum-type cell a record holds at one ordinal: either null,
// or a concrete Go value tagged with the TargetType it was converted as.
//
// Grounded on spec section 9's redesign note replacing an IDataReader's
// per-type GetX dispatch with "a single accessor returning a Value sum
// type plus thin typed accessors".
type Value struct {
	Null bool
	Type convert.TargetType
	Raw  any
}

// NullValue returns a null Value of the given type.
func NullValue(t convert.TargetType) Value { return Value{Null: true, Type: t} }

// IsNull reports whether this cell holds no value.
func (v Value) IsNull() bool { return v.Null }

// AsString returns the underlying string, or "" if not a string/null.
func (v Value) AsString() (string, bool) {
	if v.Null {
		return "", false
	}
	s, ok := v.Raw.(string)
	return s, ok
}

// AsBool returns the underlying bool, or false if not a bool/null.
func (v Value) AsBool() (bool, bool) {
	if v.Null {
		return false, false
	}
	b, ok := v.Raw.(bool)
	return b, ok
}

// AsInt32 returns the underlying int32, or 0 if not an int32/null.
func (v Value) AsInt32() (int32, bool) {
	if v.Null {
		return 0, false
	}
	i, ok := v.Raw.(int32)
	return i, ok
}

// AsInt64 returns the underlying int64, or 0 if not an int64/null.
func (v Value) AsInt64() (int64, bool) {
	if v.Null {
		return 0, false
	}
	i, ok := v.Raw.(int64)
	return i, ok
}

// AsFloat64 returns the underlying float64, or 0 if not a float64/null.
func (v Value) AsFloat64() (float64, bool) {
	if v.Null {
		return 0, false
	}
	f, ok := v.Raw.(float64)
	return f, ok
}

// AsDecimal returns the underlying decimal.Decimal, or the zero value if
// not a decimal/null.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	if v.Null {
		return decimal.Decimal{}, false
	}
	d, ok := v.Raw.(decimal.Decimal)
	return d, ok
}

// AsDateTime returns the underlying time.Time, or the zero value if not a
// datetime/null.
func (v Value) AsDateTime() (time.Time, bool) {
	if v.Null {
		return time.Time{}, false
	}
	t, ok := v.Raw.(time.Time)
	return t, ok
}

// AsGuid returns the underlying uuid.UUID, or the zero value if not a
// guid/null.
func (v Value) AsGuid() (uuid.UUID, bool) {
	if v.Null {
		return uuid.UUID{}, false
	}
	g, ok := v.Raw.(uuid.UUID)
	return g, ok
}

// AsVectorF32 returns the underlying []float32, or nil if not a
// vector<f32>/null.
func (v Value) AsVectorF32() ([]float32, bool) {
	if v.Null {
		return nil, false
	}
	vec, ok := v.Raw.([]float32)
	return vec, ok
}

// Record is a positional row of typed cells, owned by the reader and
// reused between Read calls: consumers must copy if they want to retain it
// past the next advance.
type Record struct {
	Values []Value
}
