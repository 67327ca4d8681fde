// Package parseerr implements the row-level error policy: collection,
// max-errors ceiling, and throw/skip-row/raise-event dispatch, plus the
// closed Kind taxonomy every parse failure is tagged with.
//
// Grounded on kokes-smda's loader error handling (errors propagated with
// %w-wrapped sentinel values rather than exception hierarchies),
// generalised to the spec's richer per-row policy.
package parseerr

import (
	"errors"
	"fmt"
)

// Kind is the closed taxonomy of parse failures.
type Kind uint8

const (
	Io Kind = iota
	Encoding
	DecompressionBomb
	QuotedFieldTooLong
	MalformedQuoting
	FieldCountMismatch
	DuplicateHeader
	ConversionFailure
	MaxErrorsExceeded
	UserCancelled
)

func (k Kind) String() string {
	switch k {
	case Io:
		return "Io"
	case Encoding:
		return "Encoding"
	case DecompressionBomb:
		return "DecompressionBomb"
	case QuotedFieldTooLong:
		return "QuotedFieldTooLong"
	case MalformedQuoting:
		return "MalformedQuoting"
	case FieldCountMismatch:
		return "FieldCountMismatch"
	case DuplicateHeader:
		return "DuplicateHeader"
	case ConversionFailure:
		return "ConversionFailure"
	case MaxErrorsExceeded:
		return "MaxErrorsExceeded"
	case UserCancelled:
		return "UserCancelled"
	default:
		return "Unknown"
	}
}

// fatalByDefault reports whether errors of this Kind are always fatal,
// irrespective of Action - Io, Encoding, DecompressionBomb,
// QuotedFieldTooLong, DuplicateHeader, MaxErrorsExceeded, and UserCancelled
// never go through row-level dispatch.
func (k Kind) fatalByDefault() bool {
	switch k {
	case Io, Encoding, DecompressionBomb, QuotedFieldTooLong, DuplicateHeader, MaxErrorsExceeded, UserCancelled:
		return true
	default:
		return false
	}
}

// ParseError describes one failure, row-level or fatal.
type ParseError struct {
	RecordIndex int64
	LineNumber  int
	RawLine     string
	Column      string // empty when not attributable to one column
	Message     string
	Cause       error
	Fatal       bool
	Kind        Kind
}

func (e *ParseError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("parseerr: row %d (line %d), column %q: %s", e.RecordIndex, e.LineNumber, e.Column, e.Message)
	}
	return fmt.Sprintf("parseerr: row %d (line %d): %s", e.RecordIndex, e.LineNumber, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// Action selects how a row-level error is dispatched.
type Action uint8

const (
	Throw Action = iota
	SkipRow
	RaiseEvent
)

// ErrMaxErrorsExceeded is the fatal error raised once the collected-error
// list reaches Options.MaxErrors, regardless of Action.
var ErrMaxErrorsExceeded = errors.New("parseerr: maximum collected error count exceeded")

// Handler is invoked under RaiseEvent; it may return an updated Action to
// use for this one error instead of the configured default.
type Handler func(err *ParseError) Action

// Options configures a Policy.
type Options struct {
	Action        Action
	CollectErrors bool
	MaxErrors     uint32 // 0 = unlimited
	Handler       Handler
}

// Policy tracks collected errors and decides, per row-level ParseError,
// whether the caller should propagate, skip, or continue after an event
// handler's verdict.
type Policy struct {
	opts     Options
	errors   []*ParseError
}

// New returns a ready Policy.
func New(opts Options) *Policy {
	return &Policy{opts: opts}
}

// Errors returns a read-only snapshot of collected errors.
func (p *Policy) Errors() []*ParseError {
	out := make([]*ParseError, len(p.errors))
	copy(out, p.errors)
	return out
}

// Handle processes one row-level ParseError and returns whether the caller
// should skip the current row (true) or propagate err as fatal (false,
// non-nil return error). Non-row errors should never be routed through
// Handle: callers must check Kind.fatalByDefault() themselves and
// propagate immediately instead.
func (p *Policy) Handle(err *ParseError) (skip bool, fatal error) {
	if p.opts.CollectErrors {
		p.errors = append(p.errors, err)
		if p.opts.MaxErrors > 0 && uint32(len(p.errors)) >= p.opts.MaxErrors {
			err.Fatal = true
			return false, fmt.Errorf("%w: collected %d errors", ErrMaxErrorsExceeded, len(p.errors))
		}
	}

	action := p.opts.Action
	if action == RaiseEvent {
		if p.opts.Handler == nil {
			return false, fmt.Errorf("parseerr: raise-event action configured with no handler")
		}
		action = p.opts.Handler(err)
	}

	switch action {
	case Throw:
		err.Fatal = true
		return false, err
	case SkipRow, RaiseEvent:
		return true, nil
	default:
		return false, fmt.Errorf("parseerr: unknown action %v", action)
	}
}
