// Package analyzer implements the per-column type lattice the schema
// inference engine narrows while streaming values: a bitset of still-
// possible SQL types that only ever shrinks, plus the length/digit/unicode
// counters needed to size the eventually-finalised SQL type.
//
// Grounded on kokes-smda's column/schema.go TypeGuesser (AddValue/
// InferredType accumulate-then-finalise shape, and guessType's check
// order), generalised from "first matching type wins, no way back" to
// "every still-possible type is re-tested per value, with early,
// irreversible elimination" - the monotonic bitset lattice the spec calls
// for.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/streamrow/csvcore/src/bitmap"
	"github.com/streamrow/csvcore/src/convert"
	"github.com/streamrow/csvcore/src/culture"
)

// candidateType indexes the fixed, closed lattice of types a column can
// still plausibly be before finalisation narrows it to one SQL type.
type candidateType int

const (
	candidateGuid candidateType = iota
	candidateBool
	candidateI32
	candidateI64
	candidateDecimal
	candidateDatetime
	candidateText
	candidateCount
)

// order mirrors guessType's check sequence generalised to possibility
// elimination: integers are tested before bool ("0"/"1" parse as either,
// but the integer lattice is the stricter one - seeing "2" should only
// eliminate bool, not integer).
var order = []struct {
	kind candidateType
	ct   convert.TargetType
}{
	{candidateGuid, convert.Guid},
	{candidateI32, convert.Int32},
	{candidateI64, convert.Int64},
	{candidateDecimal, convert.Decimal},
	{candidateBool, convert.Bool},
	{candidateDatetime, convert.DateTime},
}

// SQLType is the finalised SQL type text plus its attributes.
type SQLType struct {
	Name       string // e.g. "int", "bigint", "varchar", "datetime2"
	MaxLength  int    // for varchar/nvarchar; -1 means "(max)"
	Precision  int    // for decimal
	Scale      int    // for decimal
	IsUnicode  bool
	IsNullable bool
}

// Analyzer tracks one column's narrowing type lattice and size/shape
// counters across a single streamed pass.
type Analyzer struct {
	registry *convert.Registry
	culture  culture.Culture

	possible *bitmap.Bitmap

	total, null       int64
	maxLen            int
	hasUnicode        bool
	maxIntDigits      int
	maxScale          int
	maxTotalDigits    int
}

// New returns an Analyzer with every candidate type still possible.
func New(registry *convert.Registry, c culture.Culture) *Analyzer {
	return &Analyzer{
		registry: registry,
		culture:  c,
		possible: bitmap.NewBitmapFull(int(candidateCount)),
	}
}

// Observe feeds one already-trimmed field value into the lattice.
func (a *Analyzer) Observe(value string) {
	a.total++
	if strings.TrimSpace(value) == "" {
		a.null++
		return
	}

	if len(value) > a.maxLen {
		a.maxLen = len(value)
	}
	if !a.hasUnicode {
		for _, r := range value {
			if r > 127 {
				a.hasUnicode = true
				break
			}
		}
	}

	for _, cand := range order {
		idx := int(cand.kind)
		if !a.possible.Get(idx) {
			continue
		}
		conv, ok := a.registry.Get(cand.ct)
		if !ok {
			continue
		}
		v, ok := conv.TryConvert(value, a.culture)
		if !ok {
			a.eliminate(cand.kind)
			continue
		}
		if cand.kind == candidateDecimal {
			a.updateDecimalDigits(v)
		}
	}
}

// eliminate clears one candidate bit for good; AndNot against a
// single-bit mask keeps the narrowing monotonic and mirrors how
// src/bitmap documents its intended use.
func (a *Analyzer) eliminate(kind candidateType) {
	mask := bitmap.NewBitmap(int(candidateCount))
	mask.Set(int(kind), true)
	a.possible.AndNot(mask)
}

func (a *Analyzer) updateDecimalDigits(v any) {
	type decimalStringer interface {
		String() string
	}
	ds, ok := v.(decimalStringer)
	if !ok {
		return
	}
	s := ds.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	intDigits := len(strings.TrimLeft(intPart, "0"))
	if intDigits == 0 && intPart != "" {
		intDigits = 1 // "0" itself still counts as one significant digit
	}
	scale := len(fracPart)

	if intDigits > a.maxIntDigits {
		a.maxIntDigits = intDigits
	}
	if scale > a.maxScale {
		a.maxScale = scale
	}
	if total := intDigits + scale; total > a.maxTotalDigits {
		a.maxTotalDigits = total
	}
}

// possibleBit reports whether kind is still a possibility.
func (a *Analyzer) possibleBit(kind candidateType) bool {
	return a.possible.Get(int(kind))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finalize chooses the SQL type in fixed priority guid > i32 > i64 >
// decimal > bool > datetime > text.
func (a *Analyzer) Finalize() SQLType {
	nullable := a.null > 0
	if a.total == 0 || a.total == a.null {
		return SQLType{Name: "varchar", MaxLength: 1, IsNullable: true}
	}

	switch {
	case a.possibleBit(candidateGuid):
		return SQLType{Name: "uniqueidentifier", IsNullable: nullable}
	case a.possibleBit(candidateI32):
		return SQLType{Name: "int", IsNullable: nullable}
	case a.possibleBit(candidateI64):
		return SQLType{Name: "bigint", IsNullable: nullable}
	case a.possibleBit(candidateDecimal):
		precision := clamp(a.maxIntDigits+a.maxScale, 1, 38)
		scale := clamp(a.maxScale, 0, precision)
		if scale == 0 {
			if fitsInt32Digits(a.maxIntDigits) {
				return SQLType{Name: "int", IsNullable: nullable}
			}
			if fitsInt64Digits(a.maxIntDigits) {
				return SQLType{Name: "bigint", IsNullable: nullable}
			}
		}
		return SQLType{Name: "decimal", Precision: precision, Scale: scale, IsNullable: nullable}
	case a.possibleBit(candidateBool):
		return SQLType{Name: "bit", IsNullable: nullable}
	case a.possibleBit(candidateDatetime):
		return SQLType{Name: "datetime2", IsNullable: nullable}
	default:
		return a.finalizeText(nullable)
	}
}

func fitsInt32Digits(digits int) bool { return digits <= 9 }  // 2^31-1 has 10 digits; 9 is always safe
func fitsInt64Digits(digits int) bool { return digits <= 18 } // 2^63-1 has 19 digits; 18 is always safe

func (a *Analyzer) finalizeText(nullable bool) SQLType {
	name := "varchar"
	limit := 8000
	if a.hasUnicode {
		name = "nvarchar"
		limit = 4000
	}
	n := a.maxLen
	if n == 0 {
		n = 1
	}
	if n > limit {
		return SQLType{Name: name, MaxLength: -1, IsUnicode: a.hasUnicode, IsNullable: nullable}
	}
	return SQLType{Name: name, MaxLength: n, IsUnicode: a.hasUnicode, IsNullable: nullable}
}

// SQLTypeText renders t as a SQL column type clause, e.g. "varchar(50)
// NOT NULL" or "decimal(10,2) NULL".
func SQLTypeText(t SQLType) string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	switch t.Name {
	case "varchar", "nvarchar":
		if t.MaxLength < 0 {
			sb.WriteString("(max)")
		} else {
			fmt.Fprintf(&sb, "(%d)", t.MaxLength)
		}
	case "decimal":
		fmt.Fprintf(&sb, "(%d,%d)", t.Precision, t.Scale)
	}
	if t.IsNullable {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	return sb.String()
}
