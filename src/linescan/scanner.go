// Package linescan turns a decoded byte stream into logical lines: a quoted
// field may span several physical lines, and the scanner is responsible for
// knowing when to keep reading rather than handing a half-open quote to the
// field splitter.
//
// Grounded on kokes-smda's database.skipBom (the non-destructive
// peek-then-io.MultiReader trick used here too) and its tsvReader's
// bufio.Scanner-based line loop, generalised from "always split on \n" to
// "split outside an open quote, honouring CR/LF/CRLF and multiline fields".
package linescan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// bufferPool is a small scoped pool of reusable line buffers: the spec's
// "pooled character/buffer per reader, returned on close" requirement, kept
// deterministic (so tests can assert on its size) rather than reaching for
// sync.Pool, whose contents cannot be enumerated.
type bufferPool struct {
	mu   sync.Mutex
	free [][]byte
}

func (p *bufferPool) get(capHint int) *[]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		return &b
	}
	if capHint < 128 {
		capHint = 4096
	}
	b := make([]byte, 0, capHint)
	return &b
}

func (p *bufferPool) put(b *[]byte) {
	if b == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, (*b)[:0])
}

// Len reports how many buffers are currently idle in the pool.
func (p *bufferPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

var sharedBufferPool = &bufferPool{}

// PooledBufferCount reports how many buffers currently sit idle in the
// package-wide pool, for tests asserting that Close() returns a borrowed
// buffer rather than leaking it.
func PooledBufferCount() int { return sharedBufferPool.Len() }

// ErrQuotedFieldTooLong is returned when an open quote accumulates more
// characters than Options.MaxQuotedFieldLength allows.
var ErrQuotedFieldTooLong = errors.New("linescan: quoted field exceeds configured maximum length")

var errUnsupportedEncoding = errors.New("linescan: unsupported encoding")

// Options configures a Scanner.
type Options struct {
	// Encoding names the input's text encoding: "" or "utf-8" (default,
	// BOM-detected and stripped), "utf-16le", "utf-16be", "latin1"
	// (windows-1252), or "shift_jis".
	Encoding string
	// Quote is the character that opens/closes a quoted field. Default '"'.
	Quote byte
	// AllowMultilineFields lets a physical line terminator inside an open
	// quote become part of the field's data instead of ending the line.
	AllowMultilineFields bool
	// MaxQuotedFieldLength caps the number of characters accumulated while
	// inside a single open quote. Zero disables the cap.
	MaxQuotedFieldLength int
	// BufferSize is the initial capacity of a newly allocated pooled line
	// buffer; values below 128 fall back to 4096. A buffer reused from the
	// pool keeps its existing capacity.
	BufferSize int
}

func (o Options) quote() byte {
	if o.Quote == 0 {
		return '"'
	}
	return o.Quote
}

// Scanner yields logical lines from a decoded text stream.
type Scanner struct {
	r      io.ByteReader
	opts   Options
	lineNo int
	buf    *[]byte
	closed bool
}

// New wraps r according to opts.Encoding (stripping a BOM for UTF-8) and
// returns a Scanner ready to emit logical lines.
func New(r io.Reader, opts Options) (*Scanner, error) {
	dr, err := wrapEncoding(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	br, ok := dr.(*byteReader)
	if !ok {
		br = newByteReader(dr)
	}
	buf := sharedBufferPool.get(opts.BufferSize)
	return &Scanner{r: br, opts: opts, buf: buf}, nil
}

// Close returns the scanner's pooled buffer. Safe to call multiple times.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.buf != nil {
		sharedBufferPool.put(s.buf)
		s.buf = nil
	}
	return nil
}

// LineNumber returns the 1-based physical line number at which the most
// recently returned logical line ended.
func (s *Scanner) LineNumber() int { return s.lineNo }

// Next reads the next logical line. ok is false at clean EOF.
func (s *Scanner) Next() (line string, ok bool, err error) {
	quote := s.opts.quote()
	buf := (*s.buf)[:0]
	inQuote := false
	quotedRun := 0
	any := false

	for {
		b, rerr := s.r.ReadByte()
		if rerr != nil {
			if rerr == io.EOF {
				*s.buf = buf
				if !any && len(buf) == 0 {
					return "", false, nil
				}
				s.lineNo++
				return string(buf), true, nil
			}
			return "", false, fmt.Errorf("linescan: %w", rerr)
		}
		any = true

		if b == quote {
			inQuote = !inQuote
			if inQuote {
				quotedRun = 0
			}
			buf = append(buf, b)
			continue
		}

		if inQuote {
			quotedRun++
			if s.opts.MaxQuotedFieldLength > 0 && quotedRun > s.opts.MaxQuotedFieldLength {
				*s.buf = buf
				return "", false, ErrQuotedFieldTooLong
			}
		}

		isTerminator := b == '\n' || b == '\r'
		if isTerminator && (!inQuote || !s.opts.AllowMultilineFields) {
			if b == '\r' {
				nb, perr := s.peekByte()
				if perr == nil && nb == '\n' {
					_, _ = s.r.ReadByte()
				}
			}
			s.lineNo++
			*s.buf = buf
			return string(buf), true, nil
		}

		if isTerminator {
			s.lineNo++
		}
		buf = append(buf, b)
	}
}

// peekByte is only used to look one byte ahead for CRLF collapsing; since
// io.ByteReader has no native peek, byteReader below buffers one byte.
func (s *Scanner) peekByte() (byte, error) {
	if pb, ok := s.r.(*byteReader); ok {
		return pb.peek()
	}
	return 0, io.EOF
}

// byteReader adapts an io.Reader lacking ReadByte/peek support.
type byteReader struct {
	r         io.Reader
	buf       [4096]byte
	pos, n    int
	peeked    bool
	peekedVal byte
}

func newByteReader(r io.Reader) *byteReader { return &byteReader{r: r} }

func (b *byteReader) fill() error {
	n, err := b.r.Read(b.buf[:])
	b.pos, b.n = 0, n
	if n > 0 {
		return nil
	}
	return err
}

func (b *byteReader) ReadByte() (byte, error) {
	if b.peeked {
		b.peeked = false
		return b.peekedVal, nil
	}
	if b.pos >= b.n {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	c := b.buf[b.pos]
	b.pos++
	return c, nil
}

func (b *byteReader) peek() (byte, error) {
	if b.peeked {
		return b.peekedVal, nil
	}
	c, err := b.ReadByte()
	if err != nil {
		return 0, err
	}
	b.peeked = true
	b.peekedVal = c
	return c, nil
}

var bomBytes = []byte{0xEF, 0xBB, 0xBF}

// wrapEncoding resolves Options.Encoding to a decoding io.Reader. The UTF-8
// default strips a leading BOM the same non-destructive way
// kokes-smda's skipBom does: peek 3 bytes, replay them if they aren't the
// BOM.
func wrapEncoding(r io.Reader, name string) (io.Reader, error) {
	switch name {
	case "", "utf-8", "utf8":
		return skipUTF8BOM(r)
	case "utf-16le":
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()), nil
	case "utf-16be":
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()), nil
	case "latin1", "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "shift_jis", "shiftjis":
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedEncoding, name)
	}
}

func skipUTF8BOM(r io.Reader) (io.Reader, error) {
	first := make([]byte, 3)
	n, err := io.ReadFull(r, first)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return bytes.NewReader(first[:n]), nil
		}
		return nil, err
	}
	if bytes.Equal(first, bomBytes) {
		return r, nil
	}
	return io.MultiReader(bytes.NewReader(first[:n]), r), nil
}
