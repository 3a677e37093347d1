package hostapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/foldline/internal/outline"
)

// ErrPageNotFound is returned when the host has no such page.
var ErrPageNotFound = errors.New("host page not found")

// Client reads pages from an outliner host's HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger

	// backoff is replaceable in tests.
	backoff func(attempt int) time.Duration
}

func NewClient(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		backoff: Backoff,
	}
}

// PageResponse is the response from GET /api/pages/{project}/{title}.
type PageResponse struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Lines []outline.Line `json:"lines"`
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// FetchPage retrieves a page's lines, retrying transient failures.
func (c *Client) FetchPage(ctx context.Context, project, title string) (*outline.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)
			c.log.Warn("retrying host page fetch", "project", project, "title", title, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		page, err := c.getPage(ctx, project, title)
		if err == nil {
			return &outline.Document{Title: page.Title, Lines: page.Lines}, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetch page after %d retries: %w", MaxRetries, lastErr)
}

func (c *Client) getPage(ctx context.Context, project, title string) (*PageResponse, error) {
	u := c.baseURL + "/api/pages/" + url.PathEscape(project) + "/" + url.PathEscape(title)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s/%s", ErrPageNotFound, project, title)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	case resp.StatusCode != http.StatusOK:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get page %s/%s: status %d: %s", project, title, resp.StatusCode, string(respBody))
	}

	var page PageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if page.Title == "" {
		page.Title = title
	}
	return &page, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
