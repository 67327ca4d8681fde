// Package fieldsplit turns one logical line into an ordered sequence of
// (value, was_quoted) fields, honouring a configurable delimiter, quote
// character, escape character, and quote mode.
//
// Grounded on kokes-smda's csvReader/tsvReader row-splitting loop (the
// single-pass scan-to-delimiter-or-EOL shape), generalised from a fixed
// single-byte comma/tab split to a multi-character delimiter with strict and
// lenient quote handling.
package fieldsplit

import (
	"errors"
	"fmt"
	"strings"
)

// QuoteMode selects how a leading quote character is handled.
type QuoteMode uint8

const (
	// Strict treats a leading quote as always opening a quoted field.
	Strict QuoteMode = iota
	// Lenient only opens a quoted field when a syntactically valid closing
	// quote can be found later on the line; otherwise the leading quote is
	// treated as a literal character.
	Lenient
)

// ErrUnterminatedQuote is returned in strict mode when a field opens a
// quote that never closes before end of line.
var ErrUnterminatedQuote = errors.New("fieldsplit: unterminated quoted field")

// ErrDelimiterContainsQuote is returned by New when the configured
// delimiter contains the quote character, which this implementation does
// not support (see Options.Quote).
var ErrDelimiterContainsQuote = errors.New("fieldsplit: delimiter must not contain the quote character")

// Field is one (value, was_quoted) pair produced by Split.
type Field struct {
	Value     string
	WasQuoted bool
}

// Options configures a Splitter.
type Options struct {
	// Delimiter separates fields. Must be at least one character and must
	// not contain Quote.
	Delimiter string
	// Quote opens/closes a quoted field. Default '"'.
	Quote byte
	// Escape is the backslash-style escape character recognised in
	// addition to doubled-quote escaping. Zero disables it.
	Escape byte
	// Mode selects strict or lenient quote handling.
	Mode QuoteMode
	// NormalizeQuotes rewrites smart/curly quote runes to their ASCII
	// equivalents before splitting.
	NormalizeQuotes bool
}

func (o Options) quote() byte {
	if o.Quote == 0 {
		return '"'
	}
	return o.Quote
}

// Splitter splits logical lines into fields under a fixed configuration.
type Splitter struct {
	opts Options
}

// New validates opts and returns a ready Splitter.
func New(opts Options) (*Splitter, error) {
	if opts.Delimiter == "" {
		opts.Delimiter = ","
	}
	q := opts.quote()
	if strings.IndexByte(opts.Delimiter, q) >= 0 {
		return nil, fmt.Errorf("%w: delimiter %q, quote %q", ErrDelimiterContainsQuote, opts.Delimiter, q)
	}
	return &Splitter{opts: opts}, nil
}

var smartQuoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", "\"", "”", "\"",
)

// Split parses one logical line into its fields. An empty line yields zero
// fields. A line ending in a delimiter yields a trailing empty field.
func (s *Splitter) Split(line string) ([]Field, error) {
	if line == "" {
		return nil, nil
	}
	if s.opts.NormalizeQuotes {
		line = smartQuoteReplacer.Replace(line)
	}

	var fields []Field
	pos := 0
	quote := s.opts.quote()
	delim := s.opts.Delimiter

	for {
		var f Field
		var err error
		f, pos, err = s.splitOne(line, pos, quote, delim)
		fields = append(fields, f)
		if err != nil {
			return fields, err
		}

		if pos >= len(line) {
			return fields, nil
		}
		if strings.HasPrefix(line[pos:], delim) {
			pos += len(delim)
			if pos >= len(line) {
				fields = append(fields, Field{})
				return fields, nil
			}
			continue
		}
		// Defensive: splitOne always stops exactly at a delimiter or EOL.
		return fields, fmt.Errorf("fieldsplit: internal error: stopped mid-line at %d", pos)
	}
}

// splitOne parses a single field starting at pos, returning the field and
// the position immediately after it (at the delimiter or EOL).
func (s *Splitter) splitOne(line string, pos int, quote byte, delim string) (Field, int, error) {
	if pos < len(line) && line[pos] == quote {
		switch s.opts.Mode {
		case Lenient:
			if end, ok := findLenientClose(line, pos, quote, s.opts.Escape, delim); ok {
				val, next := s.parseQuoted(line, pos, quote, end)
				return Field{Value: val, WasQuoted: true}, next, nil
			}
			// Fall through: leading quote is literal.
		default:
			val, next, err := s.parseQuotedStrict(line, pos, quote, delim)
			return Field{Value: val, WasQuoted: true}, next, err
		}
	}
	return s.parseUnquoted(line, pos, delim)
}

// parseUnquoted scans forward to the next delimiter or EOL.
func (s *Splitter) parseUnquoted(line string, pos int, delim string) (Field, int, error) {
	if len(delim) == 1 {
		if idx := strings.IndexByte(line[pos:], delim[0]); idx >= 0 {
			return Field{Value: line[pos : pos+idx]}, pos + idx, nil
		}
		return Field{Value: line[pos:]}, len(line), nil
	}
	if idx := strings.Index(line[pos:], delim); idx >= 0 {
		return Field{Value: line[pos : pos+idx]}, pos + idx, nil
	}
	return Field{Value: line[pos:]}, len(line), nil
}

// parseQuotedStrict consumes characters after an opening quote at pos until
// a closing quote at EOL or immediately (optionally after whitespace)
// followed by delim. Doubled quotes unescape to one quote; an unterminated
// quote yields what was accumulated and ErrUnterminatedQuote.
func (s *Splitter) parseQuotedStrict(line string, pos int, quote byte, delim string) (string, int, error) {
	var b strings.Builder
	i := pos + 1
	for i < len(line) {
		c := line[i]
		if s.opts.Escape != 0 && s.opts.Escape != quote && c == s.opts.Escape && i+1 < len(line) {
			b.WriteByte(line[i+1])
			i += 2
			continue
		}
		if c == quote {
			// Doubled quote: unescape to one.
			if i+1 < len(line) && line[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			// Candidate close: valid iff at EOL or followed (optionally
			// after whitespace) by the delimiter.
			j := i + 1
			for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
				j++
			}
			if j >= len(line) || strings.HasPrefix(line[j:], delim) {
				return b.String(), j, nil
			}
			// Not a valid close; treat the quote as literal data.
			b.WriteByte(c)
			i++
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), len(line), fmt.Errorf("%w", ErrUnterminatedQuote)
}

// findLenientClose looks ahead from the opening quote at pos to find a
// syntactically valid close: a quote not immediately doubled and not
// escaped, followed by EOL or the delimiter (optionally after whitespace).
// Returns the index of that closing quote and whether one was found.
func findLenientClose(line string, pos int, quote byte, escape byte, delim string) (int, bool) {
	i := pos + 1
	for i < len(line) {
		c := line[i]
		if escape != 0 && escape != quote && c == escape && i+1 < len(line) {
			i += 2
			continue
		}
		if c == quote {
			if i+1 < len(line) && line[i+1] == quote {
				i += 2
				continue
			}
			j := i + 1
			for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
				j++
			}
			if j >= len(line) || strings.HasPrefix(line[j:], delim) {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// parseQuoted re-walks a span already confirmed (by findLenientClose) to
// contain a valid quoted field, unescaping doubled and backslash-escaped
// quotes, and returns the position immediately after the closing quote.
func (s *Splitter) parseQuoted(line string, pos int, quote byte, closeIdx int) (string, int) {
	var b strings.Builder
	i := pos + 1
	for i < closeIdx {
		c := line[i]
		if s.opts.Escape != 0 && s.opts.Escape != quote && c == s.opts.Escape && i+1 < len(line) {
			b.WriteByte(line[i+1])
			i += 2
			continue
		}
		if c == quote && i+1 < len(line) && line[i+1] == quote {
			b.WriteByte(quote)
			i += 2
			continue
		}
		b.WriteByte(c)
		i++
	}
	next := closeIdx + 1
	for next < len(line) && (line[next] == ' ' || line[next] == '\t') {
		next++
	}
	return b.String(), next
}
