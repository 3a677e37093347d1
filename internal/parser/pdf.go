package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/foldline/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first, then falls
// back to pdftotext if available. Every non-blank text line becomes a
// line with its leading whitespace.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*outline.Document, error) {
	// ledongthuc/pdf opens by path, so we write to a temp file.
	tmp, err := os.CreateTemp("", "foldline-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return &outline.Document{
		Title: titleFromFilename(filename),
		Lines: splitTextLines(text),
	}, nil
}

// splitTextLines keeps non-blank lines with their indentation. Form feeds
// separate pages and are dropped.
func splitTextLines(text string) []outline.Line {
	var lines []outline.Line
	for _, page := range strings.Split(text, "\f") {
		for _, l := range strings.Split(page, "\n") {
			l = strings.TrimRight(l, " \t\r")
			if l == "" {
				continue
			}
			lines = append(lines, outline.Line{ID: outline.NewID(), Text: l})
		}
	}
	return lines
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
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
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
