package fold

import (
	"fmt"
	"maps"
	"testing"

	"github.com/dgallion1/foldline/internal/foldtree"
	"github.com/dgallion1/foldline/internal/outline"
)

// memDisplay records visibility and markers for known IDs only.
type memDisplay struct {
	hidden  map[string]bool
	markers map[string]bool
	known   map[string]bool
}

func newMemDisplay(lines []outline.Line) *memDisplay {
	d := &memDisplay{
		hidden:  make(map[string]bool),
		markers: make(map[string]bool),
		known:   make(map[string]bool),
	}
	for _, l := range lines {
		d.known[l.ID] = true
	}
	return d
}

func (d *memDisplay) IsVisible(id string) bool { return !d.hidden[id] }

func (d *memDisplay) SetVisible(id string, visible bool) {
	if !d.known[id] {
		return
	}
	if visible {
		delete(d.hidden, id)
	} else {
		d.hidden[id] = true
	}
}

func (d *memDisplay) SetFoldMarker(id string, folded bool) {
	if d.known[id] {
		d.markers[id] = folded
	}
}

func (d *memDisplay) hiddenSet() map[string]bool {
	return maps.Clone(d.hidden)
}

// page builds lines L0..Ln with one space per indent level.
func page(levels ...int) []outline.Line {
	out := make([]outline.Line, len(levels))
	for i, lv := range levels {
		out[i] = outline.Line{ID: fmt.Sprintf("L%d", i), Text: outline.Indent(lv, fmt.Sprintf("line %d", i))}
	}
	return out
}

// sample:
//
//	L0 title
//	 L1
//	  L2
//	   L3
//	  L4
//	 L5
//	  L6
var sample = []int{0, 1, 2, 3, 2, 1, 2}

func assertMarkersConsistent(t *testing.T, d *memDisplay, lines []outline.Line) {
	t.Helper()
	f := foldtree.Build(lines)
	for i, n := range f.Nodes {
		want := false
		for _, c := range n.Children {
			if d.hidden[f.Nodes[c].ID] {
				want = true
			}
		}
		if got := IsFolded(d, f, i); got != want {
			t.Errorf("%s: IsFolded=%v, expected %v", n.ID, got, want)
		}
		if m, ok := d.markers[n.ID]; ok && m != want {
			t.Errorf("%s: marker=%v, expected %v", n.ID, m, want)
		}
	}
}

func TestCollapse_HidesDeeperLines(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	Collapse(d, lines, 1)

	want := map[string]bool{"L2": true, "L3": true, "L4": true, "L6": true}
	if got := d.hiddenSet(); !maps.Equal(got, want) {
		t.Fatalf("expected hidden %v, got %v", want, got)
	}
	if !d.markers["L1"] || !d.markers["L5"] {
		t.Errorf("expected L1 and L5 folded, got %v", d.markers)
	}
	if d.markers["L0"] {
		t.Error("expected title not folded")
	}
	assertMarkersConsistent(t, d, lines)
}

func TestCollapse_Idempotent(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	Collapse(d, lines, 1)
	once := d.hiddenSet()
	Collapse(d, lines, 1)
	if got := d.hiddenSet(); !maps.Equal(got, once) {
		t.Errorf("expected %v after second collapse, got %v", once, got)
	}
	assertMarkersConsistent(t, d, lines)
}

func TestCollapse_NegativeLevelKeepsTitle(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	Collapse(d, lines, -1)

	want := map[string]bool{"L1": true, "L2": true, "L3": true, "L4": true, "L5": true, "L6": true}
	if got := d.hiddenSet(); !maps.Equal(got, want) {
		t.Fatalf("expected hidden %v, got %v", want, got)
	}
	assertMarkersConsistent(t, d, lines)
}

func TestCollapse_ShowsLinesAtOrAboveLevel(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	for _, l := range lines {
		d.SetVisible(l.ID, false)
	}
	Collapse(d, lines, 2)

	// L0 is never touched; L3 is deeper than 2.
	want := map[string]bool{"L0": true, "L3": true}
	if got := d.hiddenSet(); !maps.Equal(got, want) {
		t.Errorf("expected hidden %v, got %v", want, got)
	}
	assertMarkersConsistent(t, d, lines)
}

func TestExpand_OnlyForcesLevelOneSubtrees(t *testing.T) {
	// L4 sits at level 2 under a second title line, with no level-1
	// ancestor, so it keeps its state.
	lines := page(0, 1, 2, 0, 2)
	d := newMemDisplay(lines)
	d.SetVisible("L2", false)
	d.SetVisible("L4", false)

	Expand(d, lines)

	want := map[string]bool{"L4": true}
	if got := d.hiddenSet(); !maps.Equal(got, want) {
		t.Errorf("expected hidden %v, got %v", want, got)
	}
	assertMarkersConsistent(t, d, lines)
}

func TestExpand_AfterCollapseShowsEverything(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	Collapse(d, lines, 1)
	Expand(d, lines)
	if got := d.hiddenSet(); len(got) != 0 {
		t.Errorf("expected nothing hidden, got %v", got)
	}
	for id, folded := range d.markers {
		if folded {
			t.Errorf("expected %s unfolded", id)
		}
	}
}

func TestToggle_HidesAndShowsSubtrees(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)

	if !Toggle(d, lines, "L1") {
		t.Fatal("expected toggle on L1 to apply")
	}
	want := map[string]bool{"L2": true, "L3": true, "L4": true}
	if got := d.hiddenSet(); !maps.Equal(got, want) {
		t.Fatalf("expected hidden %v, got %v", want, got)
	}
	if !d.markers["L1"] {
		t.Error("expected L1 marker folded")
	}
	assertMarkersConsistent(t, d, lines)

	Toggle(d, lines, "L1")
	if got := d.hiddenSet(); len(got) != 0 {
		t.Errorf("expected round trip to all visible, got %v", got)
	}
	if d.markers["L1"] {
		t.Error("expected L1 marker expanded")
	}
	assertMarkersConsistent(t, d, lines)
}

func TestToggle_ShowReopensNestedFold(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)

	Toggle(d, lines, "L2") // hides L3
	Toggle(d, lines, "L1") // hides L2, L3, L4
	Toggle(d, lines, "L1") // shows L2 and its subtree, L3 included

	if got := d.hiddenSet(); len(got) != 0 {
		t.Errorf("expected nested fold not preserved, got hidden %v", got)
	}
	assertMarkersConsistent(t, d, lines)
}

func TestToggle_MixedChildrenFlipIndependently(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	d.SetVisible("L2", false)
	d.SetVisible("L3", false)

	Toggle(d, lines, "L1")

	want := map[string]bool{"L4": true}
	if got := d.hiddenSet(); !maps.Equal(got, want) {
		t.Errorf("expected hidden %v, got %v", want, got)
	}
	assertMarkersConsistent(t, d, lines)
}

func TestToggle_LevelZeroIsInert(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	Collapse(d, lines, 1)
	before := d.hiddenSet()

	if Toggle(d, lines, "L0") {
		t.Error("expected toggle on title to be a no-op")
	}
	if got := d.hiddenSet(); !maps.Equal(got, before) {
		t.Errorf("expected visibility unchanged, got %v", got)
	}
}

func TestToggle_UnknownID(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	if Toggle(d, lines, "nope") {
		t.Error("expected unknown id to be ignored")
	}
}

func TestToggle_LeafOnlyRefreshesMarker(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	if !Toggle(d, lines, "L3") {
		t.Fatal("expected leaf toggle to apply")
	}
	if len(d.hidden) != 0 {
		t.Errorf("expected nothing hidden, got %v", d.hidden)
	}
	if folded, ok := d.markers["L3"]; !ok || folded {
		t.Errorf("expected L3 marker refreshed to expanded, got %v %v", folded, ok)
	}
}

func TestOperations_EmptyPage(t *testing.T) {
	d := newMemDisplay(nil)
	Collapse(d, nil, 1)
	Expand(d, nil)
	if Toggle(d, nil, "L0") {
		t.Error("expected toggle on empty page to be a no-op")
	}
	if len(FoldedSet(d, nil)) != 0 {
		t.Error("expected no folded lines")
	}
}

func TestOperations_MissingElementsAreNoOps(t *testing.T) {
	lines := page(sample...)
	// Display only knows about the first half of the page.
	d := newMemDisplay(lines[:3])
	Collapse(d, lines, 1)

	want := map[string]bool{"L2": true}
	if got := d.hiddenSet(); !maps.Equal(got, want) {
		t.Errorf("expected hidden %v, got %v", want, got)
	}
	if _, ok := d.markers["L5"]; ok {
		t.Error("expected no marker for missing element")
	}
}

func TestFoldedSet(t *testing.T) {
	lines := page(sample...)
	d := newMemDisplay(lines)
	Collapse(d, lines, 2)
	want := map[string]bool{"L2": true}
	if got := FoldedSet(d, lines); !maps.Equal(got, want) {
		t.Errorf("expected folded %v, got %v", want, got)
	}
}
