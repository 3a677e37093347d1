package hostapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(url string) *Client {
	c := NewClient(url, "key", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestFetchPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/pages/notes/My%20Page" {
			t.Errorf("unexpected path %q", r.URL.EscapedPath())
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("expected bearer auth, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"p","title":"My Page","lines":[{"id":"a","text":"My Page"},{"id":"b","text":" item"}]}`))
	}))
	defer srv.Close()

	doc, err := testClient(srv.URL).FetchPage(context.Background(), "notes", "My Page")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "My Page" || len(doc.Lines) != 2 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Lines[1].ID != "b" || doc.Lines[1].IndentLevel() != 1 {
		t.Errorf("unexpected line %+v", doc.Lines[1])
	}
}

func TestFetchPage_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), "notes", "nope")
	if !errors.Is(err, ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}

func TestFetchPage_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"title":"T","lines":[]}`))
	}))
	defer srv.Close()

	doc, err := testClient(srv.URL).FetchPage(context.Background(), "p", "T")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "T" || calls.Load() != 3 {
		t.Errorf("expected success on third call, got title=%q calls=%d", doc.Title, calls.Load())
	}
}

func TestFetchPage_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), "p", "T")
	if !IsRetryable(err) {
		t.Errorf("expected wrapped retryable error, got %v", err)
	}
	if calls.Load() != MaxRetries+1 {
		t.Errorf("expected %d calls, got %d", MaxRetries+1, calls.Load())
	}
}

func TestFetchPage_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchPage(context.Background(), "p", "T")
	if err == nil || IsRetryable(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("attempt %d: backoff %s outside [%s, %s)", attempt, d, base, base+base/2)
		}
	}
	if d := Backoff(10); d >= 45*time.Second {
		t.Errorf("expected cap at 30s plus jitter, got %s", d)
	}
}
