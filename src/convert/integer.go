package convert

import (
	"strconv"
	"strings"

	"github.com/streamrow/csvcore/src/culture"
)

func tryConvertInt32(text string, c culture.Culture) (any, bool) {
	s := normalizeIntegerText(text, c)
	if s == "" {
		return nil, false
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, false
	}
	return int32(v), true
}

// tryConvertInt64 rejects non-integer strings and anything beyond 19
// significant decimal digits, matching int64's max width.
func tryConvertInt64(text string, c culture.Culture) (any, bool) {
	s := normalizeIntegerText(text, c)
	if s == "" {
		return nil, false
	}
	digits := s
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		digits = digits[1:]
	}
	digits = strings.TrimLeft(digits, "0")
	if len(digits) > 19 {
		return nil, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, false
	}
	return v, true
}

// normalizeIntegerText strips the culture's group separator and rejects
// anything that doesn't look like a plain (possibly signed) integer.
func normalizeIntegerText(text string, c culture.Culture) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if c.GroupSep != 0 {
		s = strings.ReplaceAll(s, string(c.GroupSep), "")
	}
	for i, r := range s {
		if r == '+' || r == '-' {
			if i != 0 {
				return ""
			}
			continue
		}
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s
}
