package recordadapter

import (
	"testing"

	"github.com/streamrow/csvcore/src/convert"
	"github.com/streamrow/csvcore/src/culture"
	"github.com/streamrow/csvcore/src/fieldsplit"
	"github.com/streamrow/csvcore/src/header"
	"github.com/streamrow/csvcore/src/schema"
)

func rawFields(values ...string) []fieldsplit.Field {
	out := make([]fieldsplit.Field, len(values))
	for i, v := range values {
		out[i] = fieldsplit.Field{Value: v}
	}
	return out
}

func basicColumns() []schema.Column {
	return []schema.Column{
		{Name: "Name", Ordinal: 0, SourceIndex: 0, TargetType: convert.Text},
		{Name: "Age", Ordinal: 1, SourceIndex: 1, TargetType: convert.Int32},
		{Name: "City", Ordinal: 2, SourceIndex: 2, TargetType: convert.Text},
	}
}

func TestAdaptBasicRow(t *testing.T) {
	a := New(Options{Culture: culture.Invariant}, basicColumns(), nil, convert.NewRegistry())
	rec, perr := a.Adapt(rawFields("John", "30", "New York"), 0)
	if perr != nil {
		t.Fatal(perr)
	}
	name, _ := rec.Values[0].AsString()
	age, _ := rec.Values[1].AsInt32()
	city, _ := rec.Values[2].AsString()
	if name != "John" || age != 30 || city != "New York" {
		t.Errorf("got %q %d %q", name, age, city)
	}
}

func TestAdaptMismatchThrow(t *testing.T) {
	a := New(Options{MismatchAction: MismatchThrow, Culture: culture.Invariant}, basicColumns(), nil, convert.NewRegistry())
	_, perr := a.Adapt(rawFields("John", "30"), 0)
	if perr == nil {
		t.Fatal("expected field count mismatch error")
	}
}

func TestAdaptMismatchPad(t *testing.T) {
	a := New(Options{MismatchAction: MismatchPad, Culture: culture.Invariant}, basicColumns(), nil, convert.NewRegistry())
	rec, perr := a.Adapt(rawFields("John", "30"), 0)
	if perr != nil {
		t.Fatal(perr)
	}
	if !rec.Values[2].IsNull() {
		city, _ := rec.Values[2].AsString()
		t.Errorf("expected padded field null or empty, got %q", city)
	}
}

func TestAdaptMismatchTruncate(t *testing.T) {
	a := New(Options{MismatchAction: MismatchTruncate, Culture: culture.Invariant}, basicColumns(), nil, convert.NewRegistry())
	rec, perr := a.Adapt(rawFields("John", "30", "New York", "extra"), 0)
	if perr != nil {
		t.Fatal(perr)
	}
	if len(rec.Values) != 3 {
		t.Fatalf("got %d values, want 3", len(rec.Values))
	}
}

func TestAdaptNullValueMarker(t *testing.T) {
	a := New(Options{NullValue: "NULL", Culture: culture.Invariant}, basicColumns(), nil, convert.NewRegistry())
	rec, perr := a.Adapt(rawFields("John", "NULL", "Boston"), 0)
	if perr != nil {
		t.Fatal(perr)
	}
	if !rec.Values[1].IsNull() {
		t.Error("expected Age to be null")
	}
}

func TestAdaptDistinguishEmptyFromNull(t *testing.T) {
	cols := []schema.Column{
		{Name: "A", Ordinal: 0, SourceIndex: 0, TargetType: convert.Int32},
		{Name: "B", Ordinal: 1, SourceIndex: 1, TargetType: convert.Text},
		{Name: "C", Ordinal: 2, SourceIndex: 2, TargetType: convert.Int32},
	}
	a := New(Options{DistinguishEmptyFromNull: true, Culture: culture.Invariant}, cols, nil, convert.NewRegistry())

	// unquoted empty -> null
	rec1, perr := a.Adapt([]fieldsplit.Field{{Value: "1"}, {Value: ""}, {Value: "3"}}, 0)
	if perr != nil {
		t.Fatal(perr)
	}
	if !rec1.Values[1].IsNull() {
		t.Error("expected unquoted empty to be null")
	}

	// quoted empty on a text column -> empty string, not null
	rec2, perr := a.Adapt([]fieldsplit.Field{{Value: "4"}, {Value: "", WasQuoted: true}, {Value: "6"}}, 1)
	if perr != nil {
		t.Fatal(perr)
	}
	if rec2.Values[1].IsNull() {
		t.Error("expected quoted empty to be empty string, not null")
	}
	s, ok := rec2.Values[1].AsString()
	if !ok || s != "" {
		t.Errorf("got %q, %v", s, ok)
	}
}

func TestAdaptUseDefaultForNull(t *testing.T) {
	cols := []schema.Column{
		{Name: "A", Ordinal: 0, SourceIndex: 0, TargetType: convert.Int32, UseDefaultForNull: true, Default: int32(99)},
	}
	a := New(Options{NullValue: "NULL", Culture: culture.Invariant}, cols, nil, convert.NewRegistry())
	rec, perr := a.Adapt(rawFields("NULL"), 0)
	if perr != nil {
		t.Fatal(perr)
	}
	v, ok := rec.Values[0].AsInt32()
	if !ok || v != 99 {
		t.Errorf("got %v, %v", v, ok)
	}
}

func TestAdaptConversionFailure(t *testing.T) {
	cols := []schema.Column{{Name: "Age", Ordinal: 0, SourceIndex: 0, TargetType: convert.Int32}}
	a := New(Options{Culture: culture.Invariant}, cols, nil, convert.NewRegistry())
	_, perr := a.Adapt(rawFields("not-a-number"), 0)
	if perr == nil {
		t.Fatal("expected conversion failure")
	}
}

func TestAdaptStaticColumns(t *testing.T) {
	cols := []schema.Column{{Name: "Name", Ordinal: 0, SourceIndex: 0, TargetType: convert.Text}}
	statics := []schema.StaticColumn{
		{Name: "RowNum", Ordinal: 1, RowFunc: func(idx int64) any { return idx }},
		{Name: "Source", Ordinal: 2, Constant: "import.csv"},
	}
	a := New(Options{Culture: culture.Invariant}, cols, statics, convert.NewRegistry())
	rec, perr := a.Adapt(rawFields("John"), 7)
	if perr != nil {
		t.Fatal(perr)
	}
	if len(rec.Values) != 3 {
		t.Fatalf("got %d values, want 3", len(rec.Values))
	}
	if rec.Values[1].Raw != int64(7) {
		t.Errorf("got %v, want row index 7", rec.Values[1].Raw)
	}
	if rec.Values[2].Raw != "import.csv" {
		t.Errorf("got %v", rec.Values[2].Raw)
	}
}

func TestAdaptTrimPolicyRespectsWasQuoted(t *testing.T) {
	cols := []schema.Column{
		{Name: "A", Ordinal: 0, SourceIndex: 0, TargetType: convert.Text},
		{Name: "B", Ordinal: 1, SourceIndex: 1, TargetType: convert.Text},
	}
	a := New(Options{TrimPolicy: header.TrimUnquotedOnly, Culture: culture.Invariant}, cols, nil, convert.NewRegistry())
	rec, perr := a.Adapt([]fieldsplit.Field{
		{Value: " hello "},
		{Value: " world ", WasQuoted: true},
	}, 0)
	if perr != nil {
		t.Fatal(perr)
	}
	s0, _ := rec.Values[0].AsString()
	s1, _ := rec.Values[1].AsString()
	if s0 != "hello" {
		t.Errorf("expected unquoted field trimmed, got %q", s0)
	}
	if s1 != " world " {
		t.Errorf("expected quoted field untrimmed, got %q", s1)
	}
}
