package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// user text is stored and later rendered as plain text, so no markup survives
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips markup from user supplied text and trims surrounding whitespace.
func Sanitize(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}

// SanitizeList applies Sanitize to each item and drops the ones left empty.
func SanitizeList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := Sanitize(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

var richSanitizer = bluemonday.UGCPolicy()

// SanitizeRich keeps user-generated formatting such as links and emphasis but drops scripts and handlers.
func SanitizeRich(input string) string {
	return strings.TrimSpace(richSanitizer.Sanitize(input))
}
