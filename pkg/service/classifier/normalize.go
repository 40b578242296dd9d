package classifier

import "regexp"

var ordinalPattern = regexp.MustCompile(`\b(\d+)(st|nd|rd|th)\b`)

// Normalize rewrites ordinal numbers to cardinals ("21st" becomes "21").
// Applying it twice gives the same result as applying it once.
func Normalize(message string) string {
	return ordinalPattern.ReplaceAllString(message, "$1")
}
