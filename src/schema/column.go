// Package schema describes the declared shape of a record: visible
// columns sourced from split fields, and static columns synthesised from a
// constant or the current row index.
//
// Grounded on kokes-smda's column/schema.go Column/Dataset descriptors,
// generalised from "one stripe per column on disk" to a lightweight,
// non-persisting declaration the record adapter consumes per row.
package schema

import (
	"github.com/streamrow/csvcore/src/convert"
)

// Column describes one visible, source-backed column.
type Column struct {
	Name       string
	Ordinal    int
	SourceIndex int
	TargetType convert.TargetType
	// Converter overrides the registry's converter for TargetType when set.
	Converter convert.Converter
	AllowNull bool
	// Default is used when UseDefaultForNull is true and the resolved
	// value is null.
	Default          any
	UseDefaultForNull bool
}

// StaticColumn is a column whose value never comes from the split fields:
// either a fixed constant, or computed from the 0-based row index (row
// number, import timestamp, source filename, ...). Static columns are
// placed at a synthetic ordinal and never participate in field-count
// mismatch reconciliation.
type StaticColumn struct {
	Name    string
	Ordinal int
	// Constant is used when RowFunc is nil.
	Constant any
	// RowFunc, when set, computes the value from the 0-based record index.
	RowFunc func(rowIndex int64) any
}

// Value resolves this static column's value for the given row index.
func (s StaticColumn) Value(rowIndex int64) any {
	if s.RowFunc != nil {
		return s.RowFunc(rowIndex)
	}
	return s.Constant
}

// Width returns the visible record width: columns plus static columns.
func Width(columns []Column, staticColumns []StaticColumn) int {
	return len(columns) + len(staticColumns)
}
