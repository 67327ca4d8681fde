package convert

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/streamrow/csvcore/src/culture"
)

// tryConvertMoney layers currency-style conventions on top of the decimal
// converter: an optional leading/trailing currency symbol, thousands
// grouping, and parenthesised negatives (common in accounting exports:
// "(1,234.56)" means -1234.56).
func tryConvertMoney(text string, c culture.Culture) (any, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}

	if stripped, ok := c.StripCurrency(s); ok {
		s = stripped
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = c.NormalizeNumber(s)
	if s == "" {
		return nil, false
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
