package compress

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"strings"
	"testing"
)

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProbeAutoDetectGzip(t *testing.T) {
	payload := gzipBytes(t, "hello,world\n1,2\n")
	r, err := Probe(bytes.NewReader(payload), Options{AutoDetect: true})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello,world\n1,2\n" {
		t.Errorf("got %q", got)
	}
}

func TestProbePlainPassthrough(t *testing.T) {
	r, err := Probe(strings.NewReader("a,b,c\n"), Options{AutoDetect: true})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,b,c\n" {
		t.Errorf("got %q", got)
	}
}

func TestProbeDecompressionBomb(t *testing.T) {
	payload := gzipBytes(t, strings.Repeat("x", 1000))
	r, err := Probe(bytes.NewReader(payload), Options{AutoDetect: true, MaxDecompressedSize: 100})
	if err != nil {
		t.Fatal(err)
	}
	_, err = io.ReadAll(r)
	if !errors.Is(err, ErrDecompressionBomb) {
		t.Fatalf("expected ErrDecompressionBomb, got %v", err)
	}
}

func TestProbeBudgetZeroDisablesCheck(t *testing.T) {
	payload := gzipBytes(t, strings.Repeat("y", 10000))
	r, err := Probe(bytes.NewReader(payload), Options{AutoDetect: true, MaxDecompressedSize: 0})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10000 {
		t.Errorf("expected 10000 bytes, got %d", len(got))
	}
}

func TestProbeExplicitType(t *testing.T) {
	payload := gzipBytes(t, "explicit\n")
	r, err := Probe(bytes.NewReader(payload), Options{AutoDetect: false, Type: TypeGzip})
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "explicit\n" {
		t.Errorf("got %q", got)
	}
}

func TestDetectSignatures(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Type
	}{
		{"gzip", []byte{0x1f, 0x8b, 0x08}, TypeGzip},
		{"zlib-default", []byte{0x78, 0x9c}, TypeZLib},
		{"plain", []byte("name,age\n"), TypeNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := detect(c.header); got != c.want {
				t.Errorf("detect(%v) = %v, want %v", c.header, got, c.want)
			}
		})
	}
}
