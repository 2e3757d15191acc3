package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/destek-ai/destek/internal/config"
)

// hyphenBreak matches a hyphen followed by a line break: a word split across
// lines by the PDF layout. Both hyphen and break are deleted to rejoin the word.
var hyphenBreak = regexp.MustCompile(`-\s*\n`)

// Cleaner applies the OCR correction table and text normalization to raw
// extracted document text.
type Cleaner struct {
	corrections []config.Correction
}

// NewCleaner creates a cleaner with the given ordered correction table.
func NewCleaner(corrections []config.Correction) *Cleaner {
	return &Cleaner{corrections: corrections}
}

// Clean applies, in order: the OCR correction table (sequentially, so later
// entries see earlier replacements), hyphenation rejoin, whitespace-run
// collapse to single spaces, and trim.
func (cl *Cleaner) Clean(text string) string {
	for _, c := range cl.corrections {
		text = strings.ReplaceAll(text, c.From, c.To)
	}
	text = hyphenBreak.ReplaceAllString(text, "")
	return collapseWhitespace(text)
}

// collapseWhitespace replaces every run of whitespace (including newlines)
// with a single space and trims the ends.
func collapseWhitespace(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
