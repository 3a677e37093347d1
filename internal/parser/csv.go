package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/foldline/internal/outline"
)

// CSVParser handles spreadsheet outlines: each row is a line whose depth
// is the number of empty cells before its first non-empty one.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*outline.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &outline.Document{Title: titleFromFilename(filename)}
	for _, row := range records {
		for depth, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			doc.Lines = append(doc.Lines, outline.NewLine(depth, cell))
			break
		}
	}
	return doc, nil
}
