package convert

import (
	"strconv"
	"strings"

	"github.com/streamrow/csvcore/src/culture"
)

// tryConvertFloat64 is culture-aware and accepts scientific notation, since
// NormalizeNumber only rewrites separators and strconv.ParseFloat already
// understands exponents.
func tryConvertFloat64(text string, c culture.Culture) (any, bool) {
	s := c.NormalizeNumber(strings.TrimSpace(text))
	if s == "" {
		return nil, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return v, true
}
