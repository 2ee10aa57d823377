package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares text for search and comparison:
//   - applies Unicode NFC
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses runs of whitespace into one space
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return strings.ToLower(CompactSpaces(norm.NFC.String(text)))
}

// CompactSpaces collapses every run of whitespace into a single space and
// trims the ends. Case is preserved.
func CompactSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NFC returns the canonical composition of s.
func NFC(s string) string {
	return norm.NFC.String(s)
}
