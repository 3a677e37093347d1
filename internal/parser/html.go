package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/foldline/internal/dom"
	"github.com/dgallion1/foldline/internal/outline"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. A page view rendered by this service
// keeps its line IDs and text. Otherwise headings and paragraphs become
// top-level lines and list items are indented by their <ul>/<ol> nesting
// depth.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*outline.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if view, err := dom.Parse(bytes.NewReader(src)); err == nil {
		if lines := view.Lines(); len(lines) > 0 {
			title := view.Title()
			if title == "" {
				title = titleFromFilename(filename)
			}
			return &outline.Document{Title: title, Lines: lines}, nil
		}
	}

	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &outline.Document{Title: titleFromFilename(filename)}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	emit := func(depth int, s string) {
		if s = collapseSpace(s); s != "" {
			doc.Lines = append(doc.Lines, outline.NewLine(depth, s))
		}
	}

	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "head":
				return
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "blockquote", "pre", "dt", "dd":
				emit(depth, textContent(n))
				return
			case "ul", "ol":
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, depth+1)
				}
				return
			case "li":
				emit(depth, ownText(n))
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if isList(c) {
						walk(c, depth)
					}
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth)
		}
	}

	if body := findBody(root); body != nil {
		walk(body, 0)
	} else {
		walk(root, 0)
	}

	return doc, nil
}

func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol")
}

// ownText is the text of n without any nested lists.
func ownText(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) {
			continue
		}
		buf.WriteString(textContent(c))
		buf.WriteByte(' ')
	}
	return buf.String()
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
