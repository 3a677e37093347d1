// Package fold hides and shows lines of an outliner page by their
// indentation tree.
//
// Visibility lives in the Display, never on the tree. Every operation
// rebuilds the forest from the current lines, mutates the display and
// then recomputes the fold marker of each node it may have affected. A
// node is folded when at least one of its direct children is hidden.
package fold

import (
	"github.com/dgallion1/foldline/internal/foldtree"
	"github.com/dgallion1/foldline/internal/outline"
)

// Display is the visual layer holding line visibility. Implementations
// treat unknown line IDs as visible and ignore updates to them.
type Display interface {
	IsVisible(id string) bool
	SetVisible(id string, visible bool)
	SetFoldMarker(id string, folded bool)
}

// Collapse hides every line deeper than level and shows every line
// between 1 and level. Top-level lines are left alone; a negative level
// is treated as 0.
func Collapse(d Display, lines []outline.Line, level int) {
	level = max(level, 0)
	f := foldtree.Build(lines)
	for i, n := range f.Nodes {
		if n.IndentLevel > level {
			hide(d, f, i)
		}
		if n.IndentLevel > 0 && n.IndentLevel <= level {
			show(d, f, i)
		}
	}
	refreshAll(d, f)
}

// Expand shows every level-1 line together with its subtree. Lines at
// level 2 and deeper that are not under a level-1 line keep their
// visibility.
func Expand(d Display, lines []outline.Line) {
	f := foldtree.Build(lines)
	for i, n := range f.Nodes {
		if n.IndentLevel == 1 {
			show(d, f, i)
		}
	}
	refreshAll(d, f)
}

// Toggle flips each direct child of the line with the given ID: a hidden
// child is shown with its whole subtree, a visible one is hidden with
// its whole subtree. Top-level lines and unknown IDs are ignored. It
// reports whether anything was toggled.
func Toggle(d Display, lines []outline.Line, id string) bool {
	f := foldtree.Build(lines)
	i, ok := f.Lookup(id)
	if !ok || f.Nodes[i].IndentLevel == 0 {
		return false
	}

	for _, c := range f.Nodes[i].Children {
		if isHidden(d, f, c) {
			show(d, f, c)
		} else {
			hide(d, f, c)
		}
	}
	for _, c := range f.Nodes[i].Children {
		refresh(d, f, c)
	}
	refresh(d, f, i)
	return true
}

// IsFolded reports whether any direct child of node i is hidden.
func IsFolded(d Display, f *foldtree.Forest, i int) bool {
	for _, c := range f.Nodes[i].Children {
		if isHidden(d, f, c) {
			return true
		}
	}
	return false
}

// FoldedSet returns the IDs of folded lines.
func FoldedSet(d Display, lines []outline.Line) map[string]bool {
	f := foldtree.Build(lines)
	out := make(map[string]bool)
	for i, n := range f.Nodes {
		if IsFolded(d, f, i) {
			out[n.ID] = true
		}
	}
	return out
}

func isHidden(d Display, f *foldtree.Forest, i int) bool {
	return !d.IsVisible(f.Nodes[i].ID)
}

// show makes i and all of its descendants visible. Folds inside the
// subtree are not preserved.
func show(d Display, f *foldtree.Forest, i int) {
	f.Walk(i, func(j int) { d.SetVisible(f.Nodes[j].ID, true) })
}

func hide(d Display, f *foldtree.Forest, i int) {
	f.Walk(i, func(j int) { d.SetVisible(f.Nodes[j].ID, false) })
}

func refresh(d Display, f *foldtree.Forest, i int) {
	d.SetFoldMarker(f.Nodes[i].ID, IsFolded(d, f, i))
}

// refreshAll only reads visibility, so order does not matter.
func refreshAll(d Display, f *foldtree.Forest) {
	for i := range f.Nodes {
		refresh(d, f, i)
	}
}
