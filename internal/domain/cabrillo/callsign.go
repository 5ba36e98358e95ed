package cabrillo

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strippedSuffixes are designators that do not change station identity.
var strippedSuffixes = map[string]bool{ //nolint:gochecknoglobals // lookup table
	"P":   true,
	"M":   true,
	"MM":  true,
	"AM":  true,
	"QRP": true,
	"A":   true,
}

// NormalizeCall returns the canonical form of a call sign: upper case,
// trimmed, with trailing portable/operator designators removed. Prefix
// designators such as "OH0/" are kept because they identify a different
// entity.
func NormalizeCall(raw string) string {
	c := cases.Upper(language.Und).String(strings.TrimSpace(raw))
	for {
		i := strings.LastIndexByte(c, '/')
		if i < 0 {
			return c
		}
		suffix := c[i+1:]
		if !strippedSuffixes[suffix] && !isCallArea(suffix) {
			return c
		}
		c = c[:i]
	}
}

func isCallArea(s string) bool {
	return len(s) == 1 && s[0] >= '0' && s[0] <= '9'
}
