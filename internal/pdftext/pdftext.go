// Package pdftext pulls the raw text layer out of PDF files.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageMarker separates pages in the extracted text.
const PageMarker = "--- KONIEC STRONY ---"

var ErrNoText = errors.New("pdf has no text layer")

// Extract returns the text of every page, each followed by PageMarker.
// Pages without text are skipped.
func Extract(data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}

		if strings.TrimSpace(pageText) == "" {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n" + PageMarker + "\n")
	}

	if sb.Len() == 0 {
		return "", ErrNoText
	}
	return sb.String(), nil
}
