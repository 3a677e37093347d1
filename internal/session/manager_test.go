package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/foldline/internal/config"
	"github.com/dgallion1/foldline/internal/menu"
	"github.com/dgallion1/foldline/internal/outline"
)

func testConfig() config.Config {
	return config.Config{
		MaxQueueSize:    8,
		PageTTL:         time.Hour,
		CleanupInterval: time.Hour,
		StatsWindow:     time.Hour,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDoc() *outline.Document {
	return &outline.Document{
		Title: "Weekly",
		Lines: []outline.Line{
			{ID: "t", Text: "Weekly"},
			{ID: "m", Text: " monday"},
			{ID: "m1", Text: "  gym"},
			{ID: "m2", Text: "  groceries"},
			{ID: "u", Text: " tuesday"},
			{ID: "u1", Text: "  dentist"},
		},
	}
}

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(testConfig(), testLogger())
	m.Start(context.Background())
	t.Cleanup(m.Stop)
	return m
}

func visibility(snap PageSnapshot) map[string]bool {
	out := make(map[string]bool, len(snap.Lines))
	for _, l := range snap.Lines {
		out[l.ID] = l.Visible
	}
	return out
}

func TestManager_CollapseToggleExpand(t *testing.T) {
	m := startManager(t)
	ctx := context.Background()
	p := m.Create(testDoc(), "weekly.txt")

	if err := m.Collapse(ctx, p.ID, 1); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	snap, err := m.Snapshot(ctx, p.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	vis := visibility(snap)
	for _, id := range []string{"m1", "m2", "u1"} {
		if vis[id] {
			t.Errorf("expected %s hidden after collapse", id)
		}
	}
	if snap.Lines[1].IndentLevel != 1 || !snap.Lines[1].Folded {
		t.Errorf("expected monday folded at level 1, got %+v", snap.Lines[1])
	}

	toggled, err := m.Toggle(ctx, p.ID, "m")
	if err != nil || !toggled {
		t.Fatalf("toggle: %v %v", toggled, err)
	}
	snap, _ = m.Snapshot(ctx, p.ID)
	vis = visibility(snap)
	if !vis["m1"] || !vis["m2"] || vis["u1"] {
		t.Errorf("expected only monday opened, got %v", vis)
	}

	toggled, err = m.Toggle(ctx, p.ID, "t")
	if err != nil || toggled {
		t.Errorf("expected title toggle to be ignored, got %v %v", toggled, err)
	}

	if err := m.Expand(ctx, p.ID); err != nil {
		t.Fatalf("expand: %v", err)
	}
	snap, _ = m.Snapshot(ctx, p.ID)
	for _, l := range snap.Lines {
		if !l.Visible || l.Folded {
			t.Errorf("%s: expected visible and expanded, got %+v", l.ID, l)
		}
	}

	stats := m.Stats()
	if stats["toggle"].Count != 2 || stats["collapse"].Count != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestManager_SnapshotFoldedBelowToggledLine(t *testing.T) {
	m := startManager(t)
	ctx := context.Background()
	doc := &outline.Document{Lines: []outline.Line{
		{ID: "r", Text: "root"},
		{ID: "a", Text: " a"},
		{ID: "b", Text: "  b"},
		{ID: "c", Text: "   c"},
		{ID: "d", Text: "    d"},
	}}
	p := m.Create(doc, "deep.txt")

	if _, err := m.Toggle(ctx, p.ID, "a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	snap, err := m.Snapshot(ctx, p.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	c := snap.Lines[3]
	if c.Visible || !c.Folded {
		t.Errorf("expected c hidden and folded, got %+v", c)
	}
	// Toggle refreshes markers of a and its children only.
	if c.MarkerFolded {
		t.Errorf("expected c marker untouched, got %+v", c)
	}
	if b := snap.Lines[2]; !b.Folded || !b.MarkerFolded {
		t.Errorf("expected b folded with marker, got %+v", b)
	}
}

func TestManager_Render(t *testing.T) {
	m := startManager(t)
	p := m.Create(testDoc(), "weekly.txt")
	var buf bytes.Buffer
	if err := m.Render(context.Background(), p.ID, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), `id="Lm1"`) {
		t.Errorf("expected line element in output, got %s", buf.String())
	}
}

func TestManager_UnknownPage(t *testing.T) {
	m := startManager(t)
	err := m.Collapse(context.Background(), "missing", 1)
	if !errors.Is(err, ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
	if err := m.Delete("missing"); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound on delete, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	m := startManager(t)
	p := m.Create(testDoc(), "weekly.txt")
	if err := m.Delete(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if m.PageCount() != 0 {
		t.Errorf("expected no pages, got %d", m.PageCount())
	}
}

func TestManager_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxQueueSize = 1
	m := NewManager(cfg, testLogger())
	p := m.Create(testDoc(), "weekly.txt")

	// Not started: the queue never drains.
	m.queue <- &event{}
	err := m.Expand(context.Background(), p.ID)
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestManager_ContextCanceledWhileQueued(t *testing.T) {
	m := NewManager(testConfig(), testLogger())
	p := m.Create(testDoc(), "weekly.txt")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := m.Expand(ctx, p.ID)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestManager_Stopped(t *testing.T) {
	m := NewManager(testConfig(), testLogger())
	m.Start(context.Background())
	p := m.Create(testDoc(), "weekly.txt")
	m.Stop()
	m.Stop()

	if err := m.Expand(context.Background(), p.ID); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestManager_RecoversFromPanic(t *testing.T) {
	m := startManager(t)
	p := m.Create(testDoc(), "weekly.txt")
	err := m.Do(context.Background(), "boom", p.ID, func(*Page) error { panic("bad") })
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Errorf("expected panic converted to error, got %v", err)
	}
	if err := m.Expand(context.Background(), p.ID); err != nil {
		t.Errorf("expected loop to keep running, got %v", err)
	}
}

func TestManager_RegisterMenu(t *testing.T) {
	m := startManager(t)
	reg := menu.NewRegistry()
	if err := m.RegisterMenu(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	cmds := reg.Commands()
	if len(cmds) != 2 || cmds[0].Name != CommandCollapse || cmds[1].Name != CommandExpand {
		t.Fatalf("unexpected commands %+v", cmds)
	}

	p := m.Create(testDoc(), "weekly.txt")
	ctx := context.Background()
	if err := reg.Click(ctx, CommandCollapse, p.ID); err != nil {
		t.Fatalf("click collapse: %v", err)
	}
	snap, _ := m.Snapshot(ctx, p.ID)
	if visibility(snap)["m1"] {
		t.Error("expected gym hidden after collapse command")
	}
	if err := reg.Click(ctx, CommandExpand, p.ID); err != nil {
		t.Fatalf("click expand: %v", err)
	}
	snap, _ = m.Snapshot(ctx, p.ID)
	if !visibility(snap)["m1"] {
		t.Error("expected gym visible after expand command")
	}

	if err := m.RegisterMenu(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
