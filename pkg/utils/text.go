// Package utils provides shared utilities for text, math, and logging.
package utils

// TruncateRunes returns s truncated to maxRunes runes, with ".." appended if
// truncated. Rune-based so multi-byte text (Turkish ı/ğ/ş) is never cut
// mid-character. If maxRunes is 0 or negative, returns s unchanged.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + ".."
}
