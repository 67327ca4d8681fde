// Package culture captures the small, explicit locale descriptor the
// converters need for numbers and dates - decimal separator, group
// separator, currency symbol, and a prioritised list of datetime layouts -
// instead of reaching for an ambient platform locale.
//
// Grounded on spec.md section 9's design note ("Runtime culture objects from
// the host platform -> a small NumericFormat/DateFormat descriptor captured
// at construction"). golang.org/x/text/language resolves a BCP-47 tag to the
// handful of fields this package actually needs, the way the encoding pass
// in other_examples' UNO-SOFT-dbcsv resolves a named encoding rather than
// depending on the OS.
package culture

import (
	"strings"

	"golang.org/x/text/language"
)

// Culture is an immutable numeric/date formatting descriptor.
type Culture struct {
	Name            string
	DecimalSep      byte
	GroupSep        byte
	CurrencySymbols []string
	// DatetimeLayouts are tried, in order, by the datetime converter after
	// its custom formats and its fixed standard-layout list have failed.
	DatetimeLayouts []string
}

// Invariant is the culture-neutral default: '.' decimal separator, ','
// group separator, no currency symbols, no custom layouts.
var Invariant = Culture{
	Name:       "invariant",
	DecimalSep: '.',
	GroupSep:   ',',
}

// US matches Invariant's separators but recognises the dollar sign.
var US = Culture{
	Name:            "en-US",
	DecimalSep:      '.',
	GroupSep:        ',',
	CurrencySymbols: []string{"$", "USD"},
}

// DE uses the European comma-decimal, dot-group convention.
var DE = Culture{
	Name:            "de-DE",
	DecimalSep:      ',',
	GroupSep:        '.',
	CurrencySymbols: []string{"€", "EUR"},
}

// FR uses a comma decimal separator and a space group separator, with the
// euro symbol, matching common French CSV exports.
var FR = Culture{
	Name:            "fr-FR",
	DecimalSep:      ',',
	GroupSep:        ' ',
	CurrencySymbols: []string{"€", "EUR"},
}

var byTag = map[string]Culture{
	"en":    US,
	"en-us": US,
	"de":    DE,
	"de-de": DE,
	"fr":    FR,
	"fr-fr": FR,
}

// Lookup resolves a BCP-47-ish tag (e.g. "de-DE", "en") to a Culture,
// falling back to Invariant for anything unrecognised. The tag is parsed
// through golang.org/x/text/language purely to normalise casing and
// separators (e.g. "de_DE") before the small table lookup above.
func Lookup(tag string) Culture {
	if tag == "" {
		return Invariant
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return Invariant
	}
	key := strings.ToLower(parsed.String())
	if c, ok := byTag[key]; ok {
		return c
	}
	base, _ := parsed.Base()
	if c, ok := byTag[strings.ToLower(base.String())]; ok {
		return c
	}
	return Invariant
}

// NormalizeNumber rewrites s from this culture's separators into invariant
// ('.' decimal, no group separators), ready for strconv/decimal parsing.
func (c Culture) NormalizeNumber(s string) string {
	if c.GroupSep != 0 {
		s = strings.ReplaceAll(s, string(c.GroupSep), "")
	}
	if c.DecimalSep != '.' && c.DecimalSep != 0 {
		s = strings.ReplaceAll(s, string(c.DecimalSep), ".")
	}
	return s
}

// StripCurrency removes a recognised currency symbol (and surrounding
// whitespace) from s, reporting whether one was found.
func (c Culture) StripCurrency(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	for _, sym := range c.CurrencySymbols {
		if strings.HasPrefix(trimmed, sym) {
			return strings.TrimSpace(trimmed[len(sym):]), true
		}
		if strings.HasSuffix(trimmed, sym) {
			return strings.TrimSpace(trimmed[:len(trimmed)-len(sym)]), true
		}
	}
	return s, false
}
