package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDFRange extracts the text of pages [startPage, numPages-skipEndPages]
// (startPage 1-based inclusive). The window is clamped to the document: a
// start past the last page or a skip larger than the document yields an empty
// result rather than an error.
func extractPDFRange(content []byte, startPage, skipEndPages int) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	numPages := r.NumPage()

	if startPage < 1 {
		startPage = 1
	}
	if skipEndPages < 0 {
		skipEndPages = 0
	}
	// Convert to 0-based half-open [first, last).
	first := startPage - 1
	last := numPages - skipEndPages
	if last > numPages {
		last = numPages
	}

	var buf bytes.Buffer
	for i := first; i < last; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		if i < last-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}
