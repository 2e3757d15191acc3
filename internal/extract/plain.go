package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain returns the file content as a string. Invalid UTF-8 byte
// sequences are replaced with U+FFFD so downstream cleaning always sees
// valid text.
func extractPlain(content []byte) (string, error) {
	text := string(content)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return text, nil
}
