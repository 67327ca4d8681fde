package reader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/streamrow/csvcore/src/compress"
	"github.com/streamrow/csvcore/src/convert"
	"github.com/streamrow/csvcore/src/fieldsplit"
	"github.com/streamrow/csvcore/src/header"
	"github.com/streamrow/csvcore/src/linescan"
	"github.com/streamrow/csvcore/src/parseerr"
	"github.com/streamrow/csvcore/src/recordadapter"
	"github.com/streamrow/csvcore/src/schema"
)

// ColumnInfo is one entry of the schema-table descriptor: {name, ordinal,
// type, allow_null}.
type ColumnInfo struct {
	Name      string
	Ordinal   int
	Type      convert.TargetType
	AllowNull bool
}

// CsvDataReader is the pull-based, typed record iterator composing every
// lower-level component. Not safe for concurrent Read calls on the same
// instance; independent instances may run in parallel.
type CsvDataReader struct {
	opts     Options
	counter  *countingReader
	scanner  *linescan.Scanner
	splitter *fieldsplit.Splitter
	resolver *header.Resolver
	policy   *parseerr.Policy

	columns       []schema.Column
	staticColumns []schema.StaticColumn
	adapter       *recordadapter.Adapter
	resolved      bool

	current         schema.Record
	currentRecordIdx int64
	skippedLines     int
	closed           bool
	fatalErr         error
}

// ErrClosed is returned by Read after the reader has been closed.
var ErrClosed = errors.New("reader: read after close")

// countingReader tracks bytes consumed from the raw, possibly-compressed
// source stream, giving inference a byte-offset progress signal that does
// not depend on decompressed line numbers.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// New opens src according to opts and returns a reader positioned before
// the first row. Header resolution (or has_header=false's conservative
// pre-read state) happens eagerly so FieldCount/GetName are answerable
// immediately when has_header is true.
func New(src io.Reader, opts Options) (*CsvDataReader, error) {
	opts = opts.withDefaults()

	counter := &countingReader{r: src}
	probed, err := compress.Probe(counter, compress.Options{
		AutoDetect:           opts.AutoDetectCompression,
		Type:                 opts.CompressionType,
		MaxDecompressedSize:  opts.MaxDecompressedSize,
	})
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	scanner, err := linescan.New(probed, linescan.Options{
		Encoding:              opts.Encoding,
		Quote:                 opts.Quote,
		AllowMultilineFields:  opts.AllowMultilineFields,
		MaxQuotedFieldLength:  opts.MaxQuotedFieldLength,
		BufferSize:            opts.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	splitter, err := fieldsplit.New(fieldsplit.Options{
		Delimiter:       opts.Delimiter,
		Quote:           opts.Quote,
		Escape:          opts.Escape,
		Mode:            opts.QuoteMode,
		NormalizeQuotes: opts.NormalizeQuotes,
	})
	if err != nil {
		scanner.Close()
		return nil, fmt.Errorf("reader: %w", err)
	}

	resolver := header.New(header.Options{
		HasHeader:       opts.HasHeader,
		TrimPolicy:      opts.TrimPolicy,
		DefaultPrefix:   opts.DefaultHeaderName,
		DuplicatePolicy: opts.DuplicateHeaderBehavior,
		IncludeColumns:  opts.IncludeColumns,
		ExcludeColumns:  opts.ExcludeColumns,
	})

	r := &CsvDataReader{
		opts:          opts,
		counter:       counter,
		scanner:       scanner,
		splitter:      splitter,
		resolver:      resolver,
		policy:        parseerr.New(parseerr.Options{Action: opts.ParseErrorAction, CollectErrors: opts.CollectParseErrors, MaxErrors: opts.MaxParseErrors, Handler: opts.ParseErrorHandler}),
		staticColumns: opts.StaticColumns,
	}

	for i := 0; i < opts.SkipRows; i++ {
		if _, ok, err := scanner.Next(); err != nil {
			scanner.Close()
			return nil, fmt.Errorf("reader: %w", err)
		} else if !ok {
			break
		}
	}

	if opts.HasHeader {
		if err := r.resolveHeader(); err != nil {
			scanner.Close()
			return nil, err
		}
	}

	return r, nil
}

func (r *CsvDataReader) resolveHeader() error {
	line, ok, err := r.nextNonCommentNonEmptyLine()
	if err != nil {
		return fmt.Errorf("reader: %w", err)
	}
	if !ok {
		r.columns = nil
		r.resolved = true
		r.buildAdapter()
		return nil
	}
	fields, err := r.splitter.Split(line)
	if err != nil {
		return &parseerr.ParseError{Kind: parseerr.MalformedQuoting, Fatal: true, Message: err.Error(), Cause: err}
	}
	cols, err := r.resolver.ResolveHeaderRow(fields)
	if err != nil {
		return &parseerr.ParseError{Kind: parseerr.DuplicateHeader, Fatal: true, Message: err.Error(), Cause: err}
	}
	r.columns = toSchemaColumns(cols, r.opts.ColumnTypes)
	r.resolved = true
	r.buildAdapter()
	return nil
}

func toSchemaColumns(cols []header.Column, types map[string]convert.TargetType) []schema.Column {
	out := make([]schema.Column, len(cols))
	for i, c := range cols {
		t := convert.Text
		if types != nil {
			if configured, ok := types[c.Name]; ok {
				t = configured
			}
		}
		out[i] = schema.Column{Name: c.Name, Ordinal: c.Ordinal, SourceIndex: c.SourceIndex, TargetType: t}
	}
	return out
}

func (r *CsvDataReader) buildAdapter() {
	r.adapter = recordadapter.New(recordadapter.Options{
		MismatchAction:           r.opts.MismatchedFieldAction,
		TrimPolicy:               r.opts.TrimPolicy,
		NullValue:                r.opts.NullValue,
		DistinguishEmptyFromNull: r.opts.DistinguishEmptyFromNull,
		UseColumnDefaults:        r.opts.UseColumnDefaults,
		Culture:                  r.opts.Culture,
	}, r.columns, r.staticColumns, r.opts.Registry)
}

// nextNonCommentNonEmptyLine applies skip_empty_lines and the comment
// prefix, both evaluated after skip_rows, before the line reaches the
// field splitter.
func (r *CsvDataReader) nextNonCommentNonEmptyLine() (string, bool, error) {
	for {
		line, ok, err := r.scanner.Next()
		if err != nil || !ok {
			return "", ok, err
		}
		r.skippedLines++
		if r.opts.Comment != 0 && strings.HasPrefix(line, string(r.opts.Comment)) {
			continue
		}
		if r.opts.SkipEmptyLines && strings.TrimSpace(line) == "" {
			continue
		}
		return line, true, nil
	}
}

// FieldCount reports the number of visible columns. Before the first Read
// when has_header is false, this answers conservatively (0) rather than
// peeking a data row, to preserve single-pass, bounded-state semantics.
func (r *CsvDataReader) FieldCount() int {
	return len(r.columns) + len(r.staticColumns)
}

// HasColumn reports whether name (case-sensitive) is a visible column.
func (r *CsvDataReader) HasColumn(name string) bool {
	_, ok := r.GetOrdinal(name)
	return ok
}

// GetName returns the column name at ordinal i.
func (r *CsvDataReader) GetName(i int) (string, error) {
	for _, c := range r.columns {
		if c.Ordinal == i {
			return c.Name, nil
		}
	}
	for _, sc := range r.staticColumns {
		if sc.Ordinal == i {
			return sc.Name, nil
		}
	}
	return "", fmt.Errorf("reader: ordinal %d out of range", i)
}

// GetOrdinal returns the ordinal of the named column.
func (r *CsvDataReader) GetOrdinal(name string) (int, bool) {
	for _, c := range r.columns {
		if c.Name == name {
			return c.Ordinal, true
		}
	}
	for _, sc := range r.staticColumns {
		if sc.Name == name {
			return sc.Ordinal, true
		}
	}
	return 0, false
}

// GetFieldType returns the target type declared for ordinal i.
func (r *CsvDataReader) GetFieldType(i int) (convert.TargetType, error) {
	for _, c := range r.columns {
		if c.Ordinal == i {
			return c.TargetType, nil
		}
	}
	return 0, fmt.Errorf("reader: ordinal %d out of range", i)
}

// Schema returns the {name, ordinal, type, allow_null} descriptor for
// every visible column, in ordinal order.
func (r *CsvDataReader) Schema() []ColumnInfo {
	out := make([]ColumnInfo, 0, len(r.columns))
	for _, c := range r.columns {
		out = append(out, ColumnInfo{Name: c.Name, Ordinal: c.Ordinal, Type: c.TargetType, AllowNull: c.AllowNull})
	}
	return out
}

// CurrentRecordIndex is the 0-based index of the most recently delivered
// record, or -1 before the first record is delivered.
func (r *CsvDataReader) CurrentRecordIndex() int64 { return r.currentRecordIdx - 1 }

// CurrentLineNumber is the 1-based physical line number at which the most
// recently delivered record ended.
func (r *CsvDataReader) CurrentLineNumber() int { return r.scanner.LineNumber() }

// BytesRead reports how many bytes have been consumed from the raw
// (pre-decompression) source stream so far, for progress reporting
// against a known total stream length.
func (r *CsvDataReader) BytesRead() int64 { return r.counter.n }

// ParseErrors returns a read-only snapshot of collected row-level errors.
func (r *CsvDataReader) ParseErrors() []*parseerr.ParseError { return r.policy.Errors() }

// Close releases the reader's pooled buffer. Safe to call multiple times.
func (r *CsvDataReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.scanner.Close()
}

// Read advances to the next record, returning false at clean EOF or after
// a fatal error (inspect the error via the Err-style pattern by checking
// the returned error). On a row-level error handled by skip-row, Read
// continues to the following row internally.
func (r *CsvDataReader) Read() (bool, error) {
	if r.closed {
		return false, ErrClosed
	}
	for {
		line, ok, err := r.nextNonCommentNonEmptyLine()
		if err != nil {
			return false, fmt.Errorf("reader: %w", err)
		}
		if !ok {
			return false, nil
		}

		fields, err := r.splitter.Split(line)
		if err != nil {
			perr := &parseerr.ParseError{
				RecordIndex: r.currentRecordIdx,
				LineNumber:  r.scanner.LineNumber(),
				RawLine:     line,
				Kind:        parseerr.MalformedQuoting,
				Message:     err.Error(),
				Cause:       err,
			}
			if fatalKindForReader(perr.Kind) {
				return false, perr
			}
			skip, fatal := r.policy.Handle(perr)
			if fatal != nil {
				return false, fatal
			}
			if skip {
				continue
			}
		}

		if !r.resolved {
			cols, cerr := r.resolver.ResolveFromFirstDataRow(len(fields))
			if cerr != nil {
				return false, fmt.Errorf("reader: %w", cerr)
			}
			r.columns = toSchemaColumns(cols, r.opts.ColumnTypes)
			r.resolved = true
			r.buildAdapter()
		}

		rec, perr := r.adapter.Adapt(fields, r.currentRecordIdx)
		if perr != nil {
			perr.LineNumber = r.scanner.LineNumber()
			perr.RawLine = line
			if fatalKindForReader(perr.Kind) {
				return false, perr
			}
			skip, fatal := r.policy.Handle(perr)
			if fatal != nil {
				return false, fatal
			}
			if skip {
				continue
			}
		}

		r.current = rec
		r.currentRecordIdx++
		return true, nil
	}
}

// fatalKindForReader reports whether this Kind must abort the reader
// immediately rather than go through ParseErrorPolicy dispatch.
func fatalKindForReader(k parseerr.Kind) bool {
	switch k {
	case parseerr.Io, parseerr.Encoding, parseerr.DecompressionBomb, parseerr.QuotedFieldTooLong, parseerr.DuplicateHeader, parseerr.MaxErrorsExceeded, parseerr.UserCancelled:
		return true
	default:
		return false
	}
}

// Current returns the most recently delivered record.
func (r *CsvDataReader) Current() schema.Record { return r.current }

// CopyValues copies the current record's cells into buf, up to len(buf),
// and returns how many were copied - the sum-type counterpart to a
// per-ordinal GetValues(buf) bulk accessor, letting a caller reuse one
// backing array across Read calls instead of allocating per row.
func (r *CsvDataReader) CopyValues(buf []schema.Value) int {
	n := copy(buf, r.current.Values)
	return n
}
