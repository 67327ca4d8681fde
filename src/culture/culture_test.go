package culture

import "testing"

func TestLookupFallsBackToInvariant(t *testing.T) {
	if got := Lookup("xx-zz-nonsense"); got.Name != Invariant.Name {
		t.Errorf("expected invariant fallback, got %v", got.Name)
	}
}

func TestLookupDE(t *testing.T) {
	c := Lookup("de-DE")
	if c.DecimalSep != ',' || c.GroupSep != '.' {
		t.Errorf("unexpected DE separators: %+v", c)
	}
}

func TestNormalizeNumber(t *testing.T) {
	got := DE.NormalizeNumber("1.234,56")
	if got != "1234.56" {
		t.Errorf("got %q", got)
	}
}

func TestStripCurrency(t *testing.T) {
	got, ok := US.StripCurrency("$1,234.56")
	if !ok || got != "1,234.56" {
		t.Errorf("got %q, %v", got, ok)
	}
	if _, ok := US.StripCurrency("1,234.56"); ok {
		t.Error("expected no currency symbol found")
	}
}
