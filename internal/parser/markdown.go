package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/foldline/internal/outline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings and
// paragraphs become top-level lines; list items are indented by their
// list nesting depth.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*outline.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &outline.Document{Title: titleFromFilename(filename)}
	emit := func(depth int, s string) {
		if s = collapseSpace(s); s != "" {
			doc.Lines = append(doc.Lines, outline.NewLine(depth, s))
		}
	}

	var walk func(n ast.Node, depth int)
	walk = func(n ast.Node, depth int) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
				emit(depth, inlineText(node, src))
			case *ast.List:
				walk(node, depth+1)
			case *ast.ListItem:
				// The item's own text sits at the list's depth, nested
				// lists one deeper.
				walk(node, depth)
			case *ast.Blockquote:
				walk(node, depth)
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				lines := node.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					emit(depth, string(seg.Value(src)))
				}
			case *ast.ThematicBreak:
			default:
				emit(depth, inlineText(node, src))
			}
		}
	}
	walk(root, 0)

	return doc, nil
}

// inlineText collects the text of a node's inline descendants.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.URL(src))
		default:
			if c.Type() == ast.TypeInline {
				buf.WriteString(inlineText(c, src))
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
