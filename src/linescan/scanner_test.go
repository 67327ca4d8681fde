package linescan

import (
	"io"
	"strings"
	"testing"
)

func collectLines(t *testing.T, s *Scanner) []string {
	t.Helper()
	var lines []string
	for {
		line, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		lines = append(lines, line)
	}
	return lines
}

func TestNextSplitsOnLFCRCRLF(t *testing.T) {
	s, err := New(strings.NewReader("a,1\nb,2\r\nc,3\rd,4"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := collectLines(t, s)
	want := []string{"a,1", "b,2", "c,3", "d,4"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextCRLFDoesNotProduceEmptyLine(t *testing.T) {
	s, err := New(strings.NewReader("a,1\r\nb,2\r\n"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := collectLines(t, s)
	if len(got) != 2 {
		t.Fatalf("expected 2 logical lines, got %d: %q", len(got), got)
	}
}

func TestNextMultilineQuotedFieldAllowed(t *testing.T) {
	input := "A^!B\n1^!\"line1\nline2\"\n"
	s, err := New(strings.NewReader(input), Options{AllowMultilineFields: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := collectLines(t, s)
	want := []string{"A^!B", "1^!\"line1\nline2\""}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %d: %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextMultilineQuotedFieldDisallowed(t *testing.T) {
	input := "1,\"line1\nline2\"\n"
	s, err := New(strings.NewReader(input), Options{AllowMultilineFields: false})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := collectLines(t, s)
	want := []string{`1,"line1`, `line2"`}
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %d: %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextQuotedFieldTooLong(t *testing.T) {
	input := `1,"` + strings.Repeat("x", 20) + "\"\n"
	s, err := New(strings.NewReader(input), Options{AllowMultilineFields: true, MaxQuotedFieldLength: 10})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, _, err = s.Next()
	if err == nil {
		t.Fatal("expected ErrQuotedFieldTooLong")
	}
	if !strings.Contains(err.Error(), ErrQuotedFieldTooLong.Error()) {
		t.Errorf("got %v, want wrapped ErrQuotedFieldTooLong", err)
	}
}

func TestNextTrailingLineWithoutTerminator(t *testing.T) {
	s, err := New(strings.NewReader("a,1\nb,2"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := collectLines(t, s)
	want := []string{"a,1", "b,2"}
	if len(got) != len(want) || got[1] != want[1] {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNextEmptyInputYieldsNoLines(t *testing.T) {
	s, err := New(strings.NewReader(""), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, ok, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected no logical lines from empty input")
	}
}

func TestLineNumberAdvancesPerPhysicalLine(t *testing.T) {
	s, err := New(strings.NewReader("a\nb\nc\n"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for i := 0; i < 3; i++ {
		if _, ok, err := s.Next(); err != nil || !ok {
			t.Fatalf("Next() #%d: ok=%v err=%v", i, ok, err)
		}
		if s.LineNumber() != i+1 {
			t.Errorf("after line %d: LineNumber() = %d, want %d", i, s.LineNumber(), i+1)
		}
	}
}

func TestPooledBufferCountRestoredAfterClose(t *testing.T) {
	before := PooledBufferCount()

	s, err := New(strings.NewReader("a,b,c\n1,2,3\n"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for {
		_, ok, err := s.Next()
		if err != nil && err != io.EOF {
			t.Fatal(err)
		}
		if !ok {
			break
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	after := PooledBufferCount()
	if after != before+1 {
		t.Errorf("pooled buffer count = %d, want %d (before=%d)", after, before+1, before)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if got := PooledBufferCount(); got != after {
		t.Errorf("double Close changed pool size: %d -> %d", after, got)
	}
}

func TestUTF8BOMStripped(t *testing.T) {
	input := "\xEF\xBB\xBFname,age\n"
	s, err := New(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got := collectLines(t, s)
	if len(got) != 1 || got[0] != "name,age" {
		t.Fatalf("got %q, want [\"name,age\"]", got)
	}
}

func TestUnsupportedEncodingErrors(t *testing.T) {
	_, err := New(strings.NewReader(""), Options{Encoding: "ebcdic"})
	if err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}
