// Package reader composes every lower-level component (compression probe,
// line scanner, field splitter, header resolver, record adapter, parse
// error policy) into CsvDataReader: the pull-based, typed record iterator
// consumers actually use.
//
// Grounded on kokes-smda's database.loader.go RowReader/csvReader
// composition root (the single struct that owns the scanner, the split
// loop, and the per-row error surface), generalised to the spec's
// configuration-driven pipeline.
package reader

import (
	"github.com/streamrow/csvcore/src/compress"
	"github.com/streamrow/csvcore/src/convert"
	"github.com/streamrow/csvcore/src/culture"
	"github.com/streamrow/csvcore/src/fieldsplit"
	"github.com/streamrow/csvcore/src/header"
	"github.com/streamrow/csvcore/src/parseerr"
	"github.com/streamrow/csvcore/src/recordadapter"
	"github.com/streamrow/csvcore/src/schema"
)

// Options is the full recognised configuration surface.
type Options struct {
	HasHeader     bool // default true
	SkipRows      int
	Delimiter     string // default ","
	Quote         byte   // default '"'
	Escape        byte   // default '"'
	Comment       byte   // default '#'; 0 disables comment-line skipping
	TrimPolicy    header.TrimPolicy
	BufferSize    int // default >=128
	Encoding      string
	NullValue     string
	ParseErrorAction  parseerr.Action
	SkipEmptyLines    bool // default true
	AllowMultilineFields bool // default true
	MaxQuotedFieldLength int
	AutoDetectCompression bool
	CompressionType       compress.Type
	MaxDecompressedSize   int64
	Registry              *convert.Registry // default convert.NewRegistry()
	UseColumnDefaults     bool
	StaticColumns         []schema.StaticColumn
	ColumnTypes           map[string]convert.TargetType
	DatetimeFormats       []string
	CollectParseErrors    bool
	MaxParseErrors        uint32
	IncludeColumns        []string
	ExcludeColumns        []string
	DistinguishEmptyFromNull bool
	DuplicateHeaderBehavior  header.DuplicatePolicy // default header.ThrowException
	Culture                  culture.Culture
	QuoteMode                fieldsplit.QuoteMode
	MismatchedFieldAction    recordadapter.MismatchAction
	NormalizeQuotes          bool
	DefaultHeaderName        string // default "Column"
	ParseErrorHandler        parseerr.Handler
}

// DefaultOptions returns the documented defaults: has_header=true,
// skip_empty_lines=true, allow_multiline_fields=true, comment='#', quote
// and escape both '"', delimiter ",". Go's zero-value bools cannot
// distinguish "explicitly false" from "unset", so Options{} alone does not
// carry these defaults - construct from DefaultOptions and override fields
// explicitly instead.
func DefaultOptions() Options {
	return Options{
		HasHeader:            true,
		Delimiter:            ",",
		Quote:                '"',
		Escape:               '"',
		Comment:              '#',
		BufferSize:           4096,
		SkipEmptyLines:       true,
		AllowMultilineFields: true,
		Registry:             convert.NewRegistry(),
		DuplicateHeaderBehavior: header.ThrowException,
		Culture:                 culture.Invariant,
		DefaultHeaderName:       "Column",
	}
}

// withDefaults returns a copy of o with every zero-value field that has a
// documented non-zero default filled in, for callers that built an Options
// literal directly instead of starting from DefaultOptions.
func (o Options) withDefaults() Options {
	if o.Delimiter == "" {
		o.Delimiter = ","
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.Escape == 0 {
		o.Escape = '"'
	}
	if o.BufferSize < 128 {
		o.BufferSize = 4096
	}
	if o.Registry == nil {
		o.Registry = convert.NewRegistry()
	}
	if o.DefaultHeaderName == "" {
		o.DefaultHeaderName = "Column"
	}
	if len(o.DatetimeFormats) > 0 {
		o.Registry = o.Registry.WithDateTimeFormats(o.DatetimeFormats)
	}
	if o.Culture.Name == "" {
		o.Culture = culture.Invariant
	}
	return o
}
