package pdftext

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

func makePDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		if text != "" {
			doc.Text(20, 30, text)
		}
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

func TestExtractMarksPages(t *testing.T) {
	text, err := Extract(makePDF(t, "Invoice 01/03/2025", "Total 520"))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.Count(text, PageMarker) != 2 {
		t.Fatalf("expected two page markers in %q", text)
	}
	first := strings.Index(text, "Invoice")
	second := strings.Index(text, "Total")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("page text missing or out of order: %q", text)
	}
}

func TestExtractEmptyPages(t *testing.T) {
	if _, err := Extract(makePDF(t, "")); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestExtractGarbage(t *testing.T) {
	if _, err := Extract([]byte("not a pdf")); err == nil {
		t.Fatal("expected an error")
	}
}
