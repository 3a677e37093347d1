package outline

import "unicode"

// Document is a page of outliner lines.
type Document struct {
	Title string // Page title (from metadata or filename)
	Lines []Line // Lines in document order
}

// Line is a single line of a page. Its structure is carried only by the
// leading whitespace of Text.
type Line struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// IndentLevel returns the depth of the line: the number of leading
// whitespace characters.
func (l Line) IndentLevel() int {
	return IndentLevel(l.Text)
}

// IndentLevel counts leading whitespace runes in text.
func IndentLevel(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

// Indent returns text prefixed with level spaces.
func Indent(level int, text string) string {
	if level <= 0 {
		return text
	}
	buf := make([]byte, 0, level+len(text))
	for range level {
		buf = append(buf, ' ')
	}
	return string(append(buf, text...))
}

// NewLine builds a line with a fresh ID at the given depth.
func NewLine(level int, text string) Line {
	return Line{ID: NewID(), Text: Indent(level, text)}
}
