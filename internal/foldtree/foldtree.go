// Package foldtree links a flat sequence of indented lines into a forest.
package foldtree

import "github.com/dgallion1/foldline/internal/outline"

// NoParent marks a node with no parent.
const NoParent = -1

// Node is one line of the page. Parent and Children are indices into
// Forest.Nodes.
type Node struct {
	ID          string
	IndentLevel int
	Parent      int
	Children    []int
}

// Forest holds one node per line, in document order.
type Forest struct {
	Nodes []Node
	index map[string]int
}

// Build links lines into a forest in a single pass.
//
// Each line is compared with the one before it. A deeper line becomes the
// previous line's last child, a line at the same depth becomes its
// sibling, and a shallower line is attached to the nearest ancestor of
// the previous line whose depth is exactly one less than its own. Lines
// with no such ancestor are left as roots. The first line never gets a
// parent.
func Build(lines []outline.Line) *Forest {
	f := &Forest{
		Nodes: make([]Node, len(lines)),
		index: make(map[string]int, len(lines)),
	}
	for i, l := range lines {
		f.Nodes[i] = Node{ID: l.ID, IndentLevel: l.IndentLevel(), Parent: NoParent}
		if _, dup := f.index[l.ID]; !dup {
			f.index[l.ID] = i
		}
	}

	for i := 1; i < len(f.Nodes); i++ {
		prev := i - 1
		diff := f.Nodes[i].IndentLevel - f.Nodes[prev].IndentLevel
		switch {
		case diff > 0:
			f.attach(prev, i)
		case diff == 0:
			if p := f.Nodes[prev].Parent; p != NoParent {
				f.attach(p, i)
			}
		default:
			if p := f.findAncestor(prev, f.Nodes[i].IndentLevel-1); p != NoParent {
				f.attach(p, i)
			}
		}
	}
	return f
}

func (f *Forest) attach(parent, child int) {
	f.Nodes[parent].Children = append(f.Nodes[parent].Children, child)
	f.Nodes[child].Parent = parent
}

// findAncestor walks from i (inclusive) up the parent chain looking for a
// node at exactly level.
func (f *Forest) findAncestor(i, level int) int {
	for i != NoParent {
		if f.Nodes[i].IndentLevel == level {
			return i
		}
		i = f.Nodes[i].Parent
	}
	return NoParent
}

// Len returns the number of nodes.
func (f *Forest) Len() int {
	return len(f.Nodes)
}

// Lookup returns the index of the node for a line ID.
func (f *Forest) Lookup(id string) (int, bool) {
	i, ok := f.index[id]
	return i, ok
}

// Roots returns the indices of parentless nodes in document order.
func (f *Forest) Roots() []int {
	var roots []int
	for i := range f.Nodes {
		if f.Nodes[i].Parent == NoParent {
			roots = append(roots, i)
		}
	}
	return roots
}

// Walk calls fn for i and every descendant of i, parents before children.
func (f *Forest) Walk(i int, fn func(int)) {
	fn(i)
	for _, c := range f.Nodes[i].Children {
		f.Walk(c, fn)
	}
}
