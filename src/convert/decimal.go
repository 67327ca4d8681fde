package convert

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/streamrow/csvcore/src/culture"
)

// tryConvertDecimal is culture-aware and supports scientific notation. The
// parsed value is re-normalised through decimal.NewFromString's exact
// decimal representation (no float64 round-trip) so precision/scale
// tracking downstream stays exact.
func tryConvertDecimal(text string, c culture.Culture) (any, bool) {
	s := c.NormalizeNumber(strings.TrimSpace(text))
	if s == "" {
		return nil, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	return d, true
}
