// Package dom is the HTML view of a page. Each line is rendered inside a
// "page" container as a "line" element with id "L{lineID}" whose inline display style carries its
// visibility, and whose optional ".dot" child shows the fold marker.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/foldline/internal/outline"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	pageClass = "page"
	lineClass = "line"
	dotClass  = "dot"
	idPrefix  = "L"
)

// Page is a parsed or rendered page view. It is not safe for concurrent
// use; callers serialize access.
type Page struct {
	doc      *html.Node
	elements map[string]*html.Node // line ID -> line element
	order    []string
}

// LineState is the visual state of one line.
type LineState struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
	Folded  bool   `json:"folded"`
}

// New renders a fresh view of doc with every line visible and expanded.
func New(doc *outline.Document) *Page {
	root := &html.Node{Type: html.DocumentNode}
	htmlEl := element(atom.Html)
	head := element(atom.Head)
	title := element(atom.Title)
	title.AppendChild(&html.Node{Type: html.TextNode, Data: doc.Title})
	head.AppendChild(title)
	body := element(atom.Body)
	container := element(atom.Div, html.Attribute{Key: "class", Val: pageClass})

	for _, l := range doc.Lines {
		line := element(atom.Div,
			html.Attribute{Key: "class", Val: lineClass},
			html.Attribute{Key: "id", Val: idPrefix + l.ID},
			html.Attribute{Key: "style", Val: "display:block"},
		)
		dot := element(atom.Span,
			html.Attribute{Key: "class", Val: dotClass},
			html.Attribute{Key: "style", Val: markerStyle(false)},
		)
		line.AppendChild(dot)
		line.AppendChild(&html.Node{Type: html.TextNode, Data: l.Text})
		container.AppendChild(line)
	}

	body.AppendChild(container)
	htmlEl.AppendChild(head)
	htmlEl.AppendChild(body)
	root.AppendChild(htmlEl)

	p := &Page{doc: root}
	p.index()
	return p
}

// Parse reads an existing page view.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	p := &Page{doc: doc}
	p.index()
	return p, nil
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

// index records the line elements of the view: elements of class "line"
// with an "L{id}" id inside a "page" container.
func (p *Page) index() {
	p.elements = make(map[string]*html.Node)
	p.order = p.order[:0]
	var walk func(n *html.Node, inPage bool)
	walk = func(n *html.Node, inPage bool) {
		if n.Type == html.ElementNode {
			if hasClass(n, pageClass) {
				inPage = true
			}
			if id := attr(n, "id"); inPage && hasClass(n, lineClass) &&
				strings.HasPrefix(id, idPrefix) && len(id) > len(idPrefix) {
				lineID := id[len(idPrefix):]
				if _, dup := p.elements[lineID]; !dup {
					p.elements[lineID] = n
					p.order = append(p.order, lineID)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inPage)
		}
	}
	walk(p.doc, false)
}

// Title returns the text of the <title> element.
func (p *Page) Title() string {
	if t := find(p.doc, func(n *html.Node) bool { return n.DataAtom == atom.Title }); t != nil {
		return strings.TrimSpace(textContent(t))
	}
	return ""
}

// Lines returns the lines of the view in document order. Text is the
// element's text without the marker, leading whitespace included.
func (p *Page) Lines() []outline.Line {
	lines := make([]outline.Line, 0, len(p.order))
	for _, id := range p.order {
		var buf strings.Builder
		for c := p.elements[id].FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasClass(c, dotClass) {
				continue
			}
			buf.WriteString(textContent(c))
		}
		lines = append(lines, outline.Line{ID: id, Text: strings.TrimRight(buf.String(), "\r\n")})
	}
	return lines
}

// IsVisible reports whether the line element is displayed. Lines without
// an element count as visible.
func (p *Page) IsVisible(id string) bool {
	el, ok := p.elements[id]
	if !ok {
		return true
	}
	return styleValue(el, "display") != "none"
}

// SetVisible shows or hides the line element. Unknown lines are ignored.
func (p *Page) SetVisible(id string, visible bool) {
	el, ok := p.elements[id]
	if !ok {
		return
	}
	if visible {
		setStyle(el, "display", "block")
	} else {
		setStyle(el, "display", "none")
	}
}

// SetFoldMarker shapes the line's marker: round when expanded, a rotated
// square when folded. Lines without a marker are ignored.
func (p *Page) SetFoldMarker(id string, folded bool) {
	dot := p.marker(id)
	if dot == nil {
		return
	}
	if folded {
		setStyle(dot, "border-radius", "0")
		setStyle(dot, "transform", "rotate(45deg)")
	} else {
		setStyle(dot, "border-radius", "50%")
		setStyle(dot, "transform", "rotate(0deg)")
	}
}

// IsMarkedFolded reports the marker state of a line.
func (p *Page) IsMarkedFolded(id string) bool {
	dot := p.marker(id)
	return dot != nil && styleValue(dot, "border-radius") == "0"
}

func (p *Page) marker(id string) *html.Node {
	el, ok := p.elements[id]
	if !ok {
		return nil
	}
	return find(el, func(n *html.Node) bool { return n != el && hasClass(n, dotClass) })
}

// Snapshot returns the state of every line in document order.
func (p *Page) Snapshot() []LineState {
	out := make([]LineState, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, LineState{
			ID:      id,
			Visible: p.IsVisible(id),
			Folded:  p.IsMarkedFolded(id),
		})
	}
	return out
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.doc)
}

func markerStyle(folded bool) string {
	if folded {
		return "border-radius:0;transform:rotate(45deg)"
	}
	return "border-radius:50%;transform:rotate(0deg)"
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := find(c, match); m != nil {
			return m
		}
	}
	return nil
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
	return buf.String()
}
