package convert

import (
	"strings"

	"github.com/google/uuid"

	"github.com/streamrow/csvcore/src/culture"
)

// tryConvertGuid accepts the canonical hyphenated form, braced form
// ({xxxx...}), and unhyphenated 32-hex form, delegating the actual parse to
// google/uuid.
func tryConvertGuid(text string, c culture.Culture) (any, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return id, true
}
