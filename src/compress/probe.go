// Package compress sniffs magic bytes on an input stream and wraps it in a
// bounded decompressor, guarding against decompression bombs.
//
// Grounded on kokes-smda's src/database/inference_format.go (inferCompression,
// readCompressed, skipBom's header-peek-then-MultiReader trick), generalised
// from that package's fixed {gzip, bzip2, snappy} set to the spec's
// {gzip, deflate, brotli, zlib} plus snappy carried over from the teacher.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Type enumerates the compression kinds this probe recognises.
type Type uint8

const (
	TypeNone Type = iota
	TypeGzip
	TypeDeflate
	TypeBrotli
	TypeZLib
	TypeSnappy
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeGzip:
		return "gzip"
	case TypeDeflate:
		return "deflate"
	case TypeBrotli:
		return "brotli"
	case TypeZLib:
		return "zlib"
	case TypeSnappy:
		return "snappy"
	default:
		return "unknown"
	}
}

// ErrDecompressionBomb is returned (wrapped with byte counts) once the
// decompressed byte count would exceed the configured budget.
var ErrDecompressionBomb = errors.New("compress: decompressed size exceeds configured budget")

var errUnsupportedType = errors.New("compress: unsupported compression type")

// Options configures Probe.
type Options struct {
	// AutoDetect sniffs the stream's magic bytes to pick a Type, ignoring
	// the Type field below. When false, Type must be set explicitly.
	AutoDetect bool
	// Type is used verbatim when AutoDetect is false.
	Type Type
	// MaxDecompressedSize caps the number of decompressed bytes a Probe'd
	// reader will yield before failing with ErrDecompressionBomb. Zero
	// disables the check.
	MaxDecompressedSize int64
}

const sniffLen = 8

var snappyMagic = []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}

// detect inspects up to sniffLen bytes and returns the best-guess Type.
// Brotli has no reserved magic number, so it is only ever chosen when the
// caller asks for it explicitly - detect never returns TypeBrotli. Snappy is
// matched on the first sniffLen bytes of its stream identifier.
func detect(header []byte) Type {
	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		return TypeGzip
	case bytes.HasPrefix(header, snappyMagic[:sniffLen]):
		return TypeSnappy
	case len(header) >= 2 && header[0] == 0x78 &&
		(header[1] == 0x01 || header[1] == 0x5e || header[1] == 0x9c || header[1] == 0xda):
		return TypeZLib
	default:
		return TypeNone
	}
}

// Probe peeks at the head of r, decides (or accepts) a compression Type, and
// returns a reader that transparently decompresses the stream, bounded by
// opts.MaxDecompressedSize. The peek is non-destructive: bytes consumed to
// sniff the header are replayed to the returned reader via io.MultiReader,
// so a downstream LineScanner never misses them.
func Probe(r io.Reader, opts Options) (io.Reader, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("compress: reading header: %w", err)
	}
	header = header[:n]
	replay := io.MultiReader(bytes.NewReader(header), r)

	ctype := opts.Type
	if opts.AutoDetect {
		ctype = detect(header)
	}

	dr, err := open(replay, ctype)
	if err != nil {
		return nil, err
	}
	if opts.MaxDecompressedSize <= 0 {
		return dr, nil
	}
	return &boundedReader{r: dr, budget: opts.MaxDecompressedSize}, nil
}

func open(r io.Reader, ctype Type) (io.Reader, error) {
	switch ctype {
	case TypeNone:
		return r, nil
	case TypeGzip:
		return gzip.NewReader(r)
	case TypeDeflate:
		return flate.NewReader(r), nil
	case TypeZLib:
		return zlib.NewReader(r)
	case TypeBrotli:
		return brotli.NewReader(r), nil
	case TypeSnappy:
		return snappy.NewReader(r), nil
	default:
		return nil, fmt.Errorf("%w: %v", errUnsupportedType, ctype)
	}
}

// boundedReader enforces MaxDecompressedSize by counting bytes as they flow
// through Read, failing fast instead of letting a caller buffer an unbounded
// expansion.
type boundedReader struct {
	r      io.Reader
	budget int64
	read   int64
}

func (b *boundedReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if b.read+int64(n) > b.budget {
		n = int(b.budget - b.read)
		b.read = b.budget
		return n, fmt.Errorf("%w: budget %d bytes", ErrDecompressionBomb, b.budget)
	}
	b.read += int64(n)
	return n, err
}
