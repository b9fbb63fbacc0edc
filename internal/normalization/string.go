package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

// TrimInputString keeps the original casing. Names, notes and dimension
// strings lose information when lowercased.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}

func ParseTrackingNumber(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}
