package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// ExtractFromPDF extracts plain text page by page, prefixing each page with a
// marker so chunk previews can be traced back.
func (te *TextExtractor) ExtractFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		fmt.Fprintf(&sb, "\n[Page %d]\n%s", i, text)
	}

	return strings.TrimSpace(sb.String()), nil
}

// ExtractFromTXT decodes the file as UTF-8, falling back to Latin-1 for
// legacy encodings.
func (te *TextExtractor) ExtractFromTXT(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimSpace(string(data)), nil
	}

	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return strings.TrimSpace(string(runes)), nil
}
