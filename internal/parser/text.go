package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/foldline/internal/outline"
)

// TextParser handles plain text outlines. Every non-blank line is kept
// with its leading whitespace.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*outline.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &outline.Document{Title: titleFromFilename(filename)}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		doc.Lines = append(doc.Lines, outline.Line{ID: outline.NewID(), Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}
