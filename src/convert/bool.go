package convert

import (
	"strings"

	"github.com/streamrow/csvcore/src/culture"
)

var defaultTrueValues = []string{"true", "yes", "y", "on", "t", "1"}
var defaultFalseValues = []string{"false", "no", "n", "off", "f", "0"}

func tryConvertBool(text string, c culture.Culture) (any, bool) {
	return tryConvertBoolWith(defaultTrueValues, defaultFalseValues)(text, c)
}

// tryConvertBoolWith builds a bool converter recognising the given
// true/false value sets case-insensitively, in addition (not replacement)
// to nothing else - callers pass the full desired set.
func tryConvertBoolWith(trueValues, falseValues []string) func(string, culture.Culture) (any, bool) {
	return func(text string, c culture.Culture) (any, bool) {
		lower := strings.ToLower(strings.TrimSpace(text))
		for _, v := range trueValues {
			if lower == strings.ToLower(v) {
				return true, true
			}
		}
		for _, v := range falseValues {
			if lower == strings.ToLower(v) {
				return false, true
			}
		}
		return nil, false
	}
}
