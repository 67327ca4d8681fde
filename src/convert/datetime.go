package convert

import (
	"strings"
	"time"

	"github.com/streamrow/csvcore/src/culture"
)

// standardDatetimeLayouts lists the fixed fallback formats tried after any
// custom formats, in order: ISO date-time with fractional seconds and/or a
// zone, ISO date-time with a 'T' or space separator, ISO date, yyyy/MM/dd,
// US MM/dd/yyyy (tried before European dd/MM/yyyy, so an ambiguous value
// parses as US), dd-MM-yyyy, and compact yyyyMMddHHmmss / yyyyMMdd.
var standardDatetimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"02-01-2006",
	"20060102150405",
	"20060102",
}

// tryConvertDateTime returns a converter that tries customFormats first (in
// order), then the fixed standard list, then a general culture-aware parse
// against the culture's own DatetimeLayouts.
//
// Grounded on kokes-smda's column/date.go parseDate/parseDatetime
// fixed-width byte-offset parse, generalised here to a list of
// time.Parse-compatible layouts instead of one hardcoded shape.
func tryConvertDateTime(customFormats []string) func(string, culture.Culture) (any, bool) {
	return func(text string, c culture.Culture) (any, bool) {
		s := strings.TrimSpace(text)
		if s == "" {
			return nil, false
		}

		for _, layout := range customFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, layout := range standardDatetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		for _, layout := range c.DatetimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return nil, false
	}
}
