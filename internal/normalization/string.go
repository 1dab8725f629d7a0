package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// TrimInputString keeps case; used for free-text fields where only
// surrounding whitespace is noise.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
