package inference

import (
	"context"
	"strings"
	"testing"

	"github.com/streamrow/csvcore/src/analyzer"
	"github.com/streamrow/csvcore/src/convert"
	"github.com/streamrow/csvcore/src/reader"
)

func analyzerSQLTypeInt() analyzer.SQLType {
	return analyzer.SQLType{Name: "int"}
}

func newTestReader(t *testing.T, input string) *reader.CsvDataReader {
	t.Helper()
	r, err := reader.New(strings.NewReader(input), reader.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestInferMixedTypes(t *testing.T) {
	input := "ID,Name,Score,Active\n1,John,3.5,true\n2,Jane,4.0,false\n3,Amy,2.75,true\n"
	r := newTestReader(t, input)
	defer r.Close()

	res, err := Infer(context.Background(), r, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.RowCount != 3 {
		t.Fatalf("RowCount = %d, want 3", res.RowCount)
	}
	want := map[string]string{
		"ID":     "int",
		"Name":   "varchar",
		"Score":  "decimal",
		"Active": "bit",
	}
	for _, c := range res.Columns {
		if got := c.Type.Name; got != want[c.Name] {
			t.Errorf("column %s: got %q, want %q", c.Name, got, want[c.Name])
		}
	}
}

func TestInferPreCancelledContextFailsBeforeAnyRow(t *testing.T) {
	r := newTestReader(t, "A,B\n1,2\n")
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Infer(ctx, r, Options{})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	var ce *ErrCancelled
	if !errorsAsCancelled(err, &ce) {
		t.Fatalf("got %v, want *ErrCancelled", err)
	}
}

func errorsAsCancelled(err error, target **ErrCancelled) bool {
	if e, ok := err.(*ErrCancelled); ok {
		*target = e
		return true
	}
	return false
}

func TestInferMaxRowsLimitsSample(t *testing.T) {
	input := "A\n1\n2\n3\n4\n5\n"
	r := newTestReader(t, input)
	defer r.Close()

	res, err := Infer(context.Background(), r, Options{MaxRows: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", res.RowCount)
	}
}

func TestToColumnTypesMapsSQLTypeBack(t *testing.T) {
	res := Result{Columns: []ColumnResult{
		{Name: "ID", Type: analyzerSQLTypeInt()},
	}}
	m := ToColumnTypes(res)
	if m["ID"] != convert.Int32 {
		t.Errorf("got %v, want Int32", m["ID"])
	}
}

func TestGenerateCreateTableStatementBracketsIdentifiers(t *testing.T) {
	res := Result{Columns: []ColumnResult{
		{Name: "weird]name", Type: analyzerSQLTypeInt()},
	}}
	stmt := GenerateCreateTableStatement(res, "dbo", "mytable")
	if !strings.Contains(stmt, "[dbo].[mytable]") {
		t.Errorf("missing bracketed table name: %s", stmt)
	}
	if !strings.Contains(stmt, "[weird]]name]") {
		t.Errorf("missing doubled bracket for injected name: %s", stmt)
	}
}

func TestProgressCallbackMonotonicAndBounded(t *testing.T) {
	input := "A\n" + strings.Repeat("1\n", 50)
	r := newTestReader(t, input)
	defer r.Close()

	var lastFraction float64
	var calls int
	_, err := Infer(context.Background(), r, Options{
		TotalBytes: int64(len(input)),
		Progress: func(rows, bytesRead int64, fraction float64) {
			calls++
			if fraction < lastFraction {
				t.Fatalf("fraction decreased: %f -> %f", lastFraction, fraction)
			}
			if fraction > 1 {
				t.Fatalf("fraction exceeded 1: %f", fraction)
			}
			lastFraction = fraction
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls == 0 {
		t.Error("expected at least one progress callback")
	}
}
