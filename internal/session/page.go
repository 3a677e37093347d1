package session

import (
	"sync/atomic"
	"time"

	"github.com/dgallion1/foldline/internal/dom"
	"github.com/dgallion1/foldline/internal/fold"
	"github.com/dgallion1/foldline/internal/outline"
)

// Page is one hosted outliner page: its lines and the view that carries
// their fold state. Pages are only touched from the manager's event loop,
// except for UpdatedAt which the store reads for eviction.
type Page struct {
	ID     string
	Title  string
	Source string

	CreatedAt time.Time

	lines   []outline.Line
	view    *dom.Page
	updated atomicTime
}

func newPage(id, source string, doc *outline.Document) *Page {
	now := time.Now()
	p := &Page{
		ID:        id,
		Title:     doc.Title,
		Source:    source,
		CreatedAt: now,
		lines:     doc.Lines,
		view:      dom.New(doc),
	}
	p.updated.Store(now)
	return p
}

// Lines returns the page's lines in document order.
func (p *Page) Lines() []outline.Line {
	return p.lines
}

// View returns the page's visual layer.
func (p *Page) View() *dom.Page {
	return p.view
}

// UpdatedAt returns when the page was last operated on.
func (p *Page) UpdatedAt() time.Time {
	return p.updated.Load()
}

func (p *Page) touch() {
	p.updated.Store(time.Now())
}

// LineSnapshot is the JSON-safe state of one line.
type LineSnapshot struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IndentLevel int    `json:"indent_level"`
	Visible     bool   `json:"visible"`
	// Folded is true when a direct child is hidden. MarkerFolded is the
	// marker shown on the page, which operations only refresh for the
	// lines they touch.
	Folded       bool `json:"folded"`
	MarkerFolded bool `json:"marker_folded"`
}

// PageSnapshot is a read-only, JSON-safe copy of page state.
type PageSnapshot struct {
	ID        string         `json:"page_id"`
	Title     string         `json:"title"`
	Source    string         `json:"source"`
	Lines     []LineSnapshot `json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Snapshot copies the page state. Callers run it on the event loop.
func (p *Page) Snapshot() PageSnapshot {
	folded := fold.FoldedSet(p.view, p.lines)
	lines := make([]LineSnapshot, 0, len(p.lines))
	for _, l := range p.lines {
		lines = append(lines, LineSnapshot{
			ID:          l.ID,
			Text:        l.Text,
			IndentLevel: l.IndentLevel(),
			Visible:     p.view.IsVisible(l.ID),
			Folded:       folded[l.ID],
			MarkerFolded: p.view.IsMarkedFolded(l.ID),
		})
	}
	return PageSnapshot{
		ID:        p.ID,
		Title:     p.Title,
		Source:    p.Source,
		Lines:     lines,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt(),
	}
}

type atomicTime struct {
	v atomic.Int64
}

func (t *atomicTime) Store(tm time.Time) { t.v.Store(tm.UnixNano()) }
func (t *atomicTime) Load() time.Time    { return time.Unix(0, t.v.Load()) }
