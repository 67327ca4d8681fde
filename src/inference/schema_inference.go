// Package inference drives a full or sampled pass over a CsvDataReader,
// narrowing one analyzer.Analyzer lattice per column, and renders the
// result as either a convert.TargetType map (to feed back into
// reader.Options.ColumnTypes for a second, typed pass) or a CREATE TABLE
// statement.
//
// Grounded on kokes-smda's column/schema.go InferTypes driver (one pass
// over the source, one TypeGuesser per column, finalise-after-stream), and
// its cmd/ingest progress reporting (percent-of-bytes-read), generalised to
// the spec's context.Context-cancellable, byte-offset-tracked progress
// model.
package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/streamrow/csvcore/src/analyzer"
	"github.com/streamrow/csvcore/src/convert"
	"github.com/streamrow/csvcore/src/culture"
	"github.com/streamrow/csvcore/src/reader"
)

// ProgressFunc is invoked as the inference pass advances, at roughly 1%
// granularity of TotalBytes when TotalBytes is known (nonzero), and is
// never called with a decreasing fraction.
type ProgressFunc func(rowsRead int64, bytesRead int64, fraction float64)

// Options configures a SchemaInference run.
type Options struct {
	// MaxRows caps the number of rows sampled. Zero means "read to EOF".
	MaxRows int64
	// TotalBytes is the known total length of the underlying stream, used
	// to compute Progress's fraction. Zero disables fraction reporting
	// (Progress is still called with rowsRead/bytesRead, fraction 0).
	TotalBytes int64
	// Progress, if non-nil, is invoked roughly every 1% of TotalBytes (or
	// every row when TotalBytes is zero).
	Progress ProgressFunc
	// Registry is shared with the reader driving inference; defaults to
	// convert.NewRegistry().
	Registry *convert.Registry
	// Culture is shared with the reader driving inference; defaults to
	// culture.Invariant.
	Culture culture.Culture
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = convert.NewRegistry()
	}
	if o.Culture.Name == "" {
		o.Culture = culture.Invariant
	}
	return o
}

// ColumnResult is one column's name plus its narrowed SQL type.
type ColumnResult struct {
	Name string
	Type analyzer.SQLType
}

// Result is the outcome of a full inference pass: one ColumnResult per
// visible column, in ordinal order, plus how many rows were actually
// sampled.
type Result struct {
	Columns  []ColumnResult
	RowCount int64
}

// ErrCancelled wraps ctx.Err() when a pass stops early due to
// cancellation, distinguishing it from a reader-level parse error.
type ErrCancelled struct{ Cause error }

func (e *ErrCancelled) Error() string { return fmt.Sprintf("inference: cancelled: %v", e.Cause) }
func (e *ErrCancelled) Unwrap() error { return e.Cause }

// Infer runs a full (MaxRows==0) or sampled (MaxRows>0) pass over r,
// narrowing one analyzer.Analyzer per visible column. ctx is checked
// before every row; a pre-cancelled ctx fails before any row is read.
func Infer(ctx context.Context, r *reader.CsvDataReader, opts Options) (Result, error) {
	opts = opts.withDefaults()

	if err := ctx.Err(); err != nil {
		return Result{}, &ErrCancelled{Cause: err}
	}

	schema := r.Schema()
	analyzers := make([]*analyzer.Analyzer, len(schema))
	for i := range schema {
		analyzers[i] = analyzer.New(opts.Registry, opts.Culture)
	}

	var rowCount int64
	lastReportedPct := -1

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, &ErrCancelled{Cause: err}
		}
		if opts.MaxRows > 0 && rowCount >= opts.MaxRows {
			break
		}

		ok, err := r.Read()
		if err != nil {
			return Result{}, fmt.Errorf("inference: %w", err)
		}
		if !ok {
			break
		}

		if len(schema) == 0 {
			schema = r.Schema()
			for len(analyzers) < len(schema) {
				analyzers = append(analyzers, analyzer.New(opts.Registry, opts.Culture))
			}
		}

		rec := r.Current()
		for i, v := range rec.Values {
			if i >= len(analyzers) {
				break
			}
			s, ok := v.AsString()
			if !ok || v.IsNull() {
				analyzers[i].Observe("")
				continue
			}
			analyzers[i].Observe(s)
		}
		rowCount++

		if opts.Progress != nil {
			reportProgress(opts, rowCount, r.BytesRead(), &lastReportedPct)
		}
	}

	out := make([]ColumnResult, len(schema))
	for i, c := range schema {
		out[i] = ColumnResult{Name: c.Name, Type: analyzers[i].Finalize()}
	}
	return Result{Columns: out, RowCount: rowCount}, nil
}

func reportProgress(opts Options, rows int64, bytesRead int64, lastPct *int) {
	var fraction float64
	if opts.TotalBytes > 0 {
		fraction = float64(bytesRead) / float64(opts.TotalBytes)
		if fraction > 1 {
			fraction = 1
		}
		pct := int(fraction * 100)
		if pct <= *lastPct {
			return
		}
		*lastPct = pct
	}
	opts.Progress(rows, bytesRead, fraction)
}

// ToColumnTypes converts a Result into the map reader.Options.ColumnTypes
// expects, translating each SQLType back to its convert.TargetType for a
// second, typed pass over the same source.
func ToColumnTypes(res Result) map[string]convert.TargetType {
	out := make(map[string]convert.TargetType, len(res.Columns))
	for _, c := range res.Columns {
		out[c.Name] = sqlTypeToTargetType(c.Type)
	}
	return out
}

func sqlTypeToTargetType(t analyzer.SQLType) convert.TargetType {
	switch t.Name {
	case "uniqueidentifier":
		return convert.Guid
	case "int":
		return convert.Int32
	case "bigint":
		return convert.Int64
	case "decimal":
		return convert.Decimal
	case "bit":
		return convert.Bool
	case "datetime2":
		return convert.DateTime
	default:
		return convert.Text
	}
}

// GenerateCreateTableStatement renders res as a CREATE TABLE statement
// for table under schemaName (bracketed identifiers, with any literal
// ']' doubled to defeat injection through a hostile column or table
// name), one column per line.
func GenerateCreateTableStatement(res Result, schemaName, table string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (\n", bracket(schemaName)+"."+bracket(table))
	for i, c := range res.Columns {
		sb.WriteString("    ")
		sb.WriteString(bracket(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(analyzer.SQLTypeText(c.Type))
		if i < len(res.Columns)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(");\n")
	return sb.String()
}

func bracket(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}
