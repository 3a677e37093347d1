package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/foldline/internal/config"
	"github.com/dgallion1/foldline/internal/fold"
	"github.com/dgallion1/foldline/internal/outline"
)

// event is one unit of work for a page.
type event struct {
	op   string
	page *Page
	fn   func(*Page) error
	done chan error
}

// Manager owns the hosted pages and runs every page operation on a single
// event loop, so operations never interleave.
type Manager struct {
	pages *Store
	queue chan *event
	stats *OpStats
	log   *slog.Logger
	cfg   config.Config

	cancel  context.CancelFunc
	stopped chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
}

func NewManager(cfg config.Config, log *slog.Logger) *Manager {
	return &Manager{
		pages:   NewStore(cfg.PageTTL),
		queue:   make(chan *event, cfg.MaxQueueSize),
		stats:   NewOpStats(cfg.StatsWindow),
		log:     log,
		cfg:     cfg,
		stopped: make(chan struct{}),
	}
}

// Start launches the event loop and the page cleanup ticker.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-loopCtx.Done():
				return
			case ev := <-m.queue:
				m.run(ev)
			}
		}
	}()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := m.pages.Cleanup(); n > 0 {
					m.log.Info("evicted expired pages", "count", n)
				}
			}
		}
	}()
}

// Stop shuts down the event loop. Queued events that have not run fail
// with ErrStopped.
func (m *Manager) Stop() {
	m.stop.Do(func() {
		close(m.stopped)
		if m.cancel != nil {
			m.cancel()
		}
	})
	m.wg.Wait()
}

func (m *Manager) run(ev *event) {
	log := m.log.With("page_id", ev.page.ID, "op", ev.op)
	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panicked: %v", ev.op, r)
			}
		}()
		return ev.fn(ev.page)
	}()
	elapsed := time.Since(start)
	m.stats.Record(ev.op, elapsed)
	ev.page.touch()
	if err != nil {
		log.Error("page operation failed", "error", err)
	} else {
		log.Debug("page operation done", "duration_us", elapsed.Microseconds())
	}
	ev.done <- err
}

// Do runs fn against a page on the event loop and waits for it.
func (m *Manager) Do(ctx context.Context, op, pageID string, fn func(*Page) error) error {
	select {
	case <-m.stopped:
		return ErrStopped
	default:
	}

	page := m.pages.Get(pageID)
	if page == nil {
		return fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}

	ev := &event{op: op, page: page, fn: fn, done: make(chan error, 1)}
	select {
	case m.queue <- ev:
	default:
		return fmt.Errorf("%w (%d)", ErrQueueFull, m.cfg.MaxQueueSize)
	}

	select {
	case err := <-ev.done:
		return err
	case <-m.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Create registers a new page for doc and returns it.
func (m *Manager) Create(doc *outline.Document, source string) *Page {
	p := newPage(outline.NewID(), source, doc)
	m.pages.Put(p)
	m.log.Info("page created", "page_id", p.ID, "source", source, "lines", len(doc.Lines))
	return p
}

// Delete removes a page.
func (m *Manager) Delete(pageID string) error {
	if !m.pages.Delete(pageID) {
		return fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	return nil
}

// Collapse hides every line of the page deeper than level.
func (m *Manager) Collapse(ctx context.Context, pageID string, level int) error {
	return m.Do(ctx, "collapse", pageID, func(p *Page) error {
		fold.Collapse(p.view, p.lines, level)
		return nil
	})
}

// Expand shows the level-1 lines of the page and their subtrees.
func (m *Manager) Expand(ctx context.Context, pageID string) error {
	return m.Do(ctx, "expand", pageID, func(p *Page) error {
		fold.Expand(p.view, p.lines)
		return nil
	})
}

// Toggle flips the children of one line. It reports false for top-level
// or unknown lines, which are left alone.
func (m *Manager) Toggle(ctx context.Context, pageID, lineID string) (bool, error) {
	var toggled bool
	err := m.Do(ctx, "toggle", pageID, func(p *Page) error {
		toggled = fold.Toggle(p.view, p.lines, lineID)
		return nil
	})
	return toggled, err
}

// Snapshot returns the current state of a page.
func (m *Manager) Snapshot(ctx context.Context, pageID string) (PageSnapshot, error) {
	var snap PageSnapshot
	err := m.Do(ctx, "snapshot", pageID, func(p *Page) error {
		snap = p.Snapshot()
		return nil
	})
	return snap, err
}

// Render writes the page view as HTML.
func (m *Manager) Render(ctx context.Context, pageID string, w io.Writer) error {
	return m.Do(ctx, "render", pageID, func(p *Page) error {
		return p.view.Render(w)
	})
}

// Stats returns latency aggregates per operation.
func (m *Manager) Stats() map[string]StatsSnapshot {
	return m.stats.Snapshot()
}

// QueueDepth returns current queue depth.
func (m *Manager) QueueDepth() int {
	return len(m.queue)
}

// PageCount returns the number of hosted pages.
func (m *Manager) PageCount() int {
	return m.pages.Len()
}
