// Package convert implements the closed set of per-type string-to-value
// converters the record adapter and the type analyzer both use: bool, guid,
// i32/i64, f64, decimal, money, datetime, and vector<f32>. Every converter
// is culture-aware through a src/culture.Culture descriptor rather than an
// ambient platform locale.
//
// Grounded on kokes-smda's column/date.go (parseDate/parseDatetime, the
// basis for the datetime converter's fixed-format fallback list) and its
// column/schema.go guessType dispatch order, generalised from "first match
// wins during inference" to a registry any caller can invoke directly.
package convert

import (
	"github.com/streamrow/csvcore/src/culture"
)

// TargetType enumerates the closed set of convertible types.
type TargetType uint8

const (
	Bool TargetType = iota
	Guid
	Int32
	Int64
	Float64
	Decimal
	Money
	DateTime
	VectorF32
	Text
)

func (t TargetType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Guid:
		return "guid"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Float64:
		return "f64"
	case Decimal:
		return "decimal"
	case Money:
		return "money"
	case DateTime:
		return "datetime"
	case VectorF32:
		return "vector<f32>"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Converter converts trimmed, non-null text into a typed value under a
// given culture. ok is false when the text does not parse as T.
type Converter interface {
	TryConvert(text string, c culture.Culture) (value any, ok bool)
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(text string, c culture.Culture) (any, bool)

// TryConvert implements Converter.
func (f ConverterFunc) TryConvert(text string, c culture.Culture) (any, bool) { return f(text, c) }

// Registry maps each TargetType to its Converter. The zero value is not
// usable; construct one with NewRegistry.
type Registry struct {
	converters map[TargetType]Converter
}

// NewRegistry returns the default closed-set registry.
func NewRegistry() *Registry {
	return &Registry{
		converters: map[TargetType]Converter{
			Bool:      ConverterFunc(tryConvertBool),
			Guid:      ConverterFunc(tryConvertGuid),
			Int32:     ConverterFunc(tryConvertInt32),
			Int64:     ConverterFunc(tryConvertInt64),
			Float64:   ConverterFunc(tryConvertFloat64),
			Decimal:   ConverterFunc(tryConvertDecimal),
			Money:     ConverterFunc(tryConvertMoney),
			DateTime:  ConverterFunc(tryConvertDateTime(nil)),
			VectorF32: ConverterFunc(tryConvertVectorF32),
			Text:      ConverterFunc(tryConvertText),
		},
	}
}

// Get returns the converter registered for t.
func (r *Registry) Get(t TargetType) (Converter, bool) {
	c, ok := r.converters[t]
	return c, ok
}

// WithBoolValues returns a clone of r whose bool converter recognises
// exactly the given true/false string values (case-insensitive). The
// default value sets are not kept in the clone; r itself is unchanged.
func (r *Registry) WithBoolValues(trueValues, falseValues []string) *Registry {
	clone := r.clone()
	clone.converters[Bool] = ConverterFunc(tryConvertBoolWith(trueValues, falseValues))
	return clone
}

// WithDateTimeFormats returns a clone of r whose datetime converter tries
// customFormats (in order) before the fixed standard-format list.
func (r *Registry) WithDateTimeFormats(customFormats []string) *Registry {
	clone := r.clone()
	clone.converters[DateTime] = ConverterFunc(tryConvertDateTime(customFormats))
	return clone
}

func (r *Registry) clone() *Registry {
	cp := make(map[TargetType]Converter, len(r.converters))
	for k, v := range r.converters {
		cp[k] = v
	}
	return &Registry{converters: cp}
}

func tryConvertText(text string, c culture.Culture) (any, bool) {
	return text, true
}
