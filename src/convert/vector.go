package convert

import (
	"strconv"
	"strings"

	"github.com/streamrow/csvcore/src/culture"
)

// tryConvertVectorF32 accepts a bracketed ("[1,2,3]") or bare ("1,2,3")
// comma-separated list of culture-neutral floats. An empty list fails.
func tryConvertVectorF32(text string, c culture.Culture) (any, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	parts := strings.Split(s, ",")
	out := make([]float32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, false
		}
		v, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, false
		}
		out = append(out, float32(v))
	}
	return out, true
}
