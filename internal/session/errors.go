package session

import "errors"

var (
	// ErrPageNotFound is returned for operations on unknown or evicted pages.
	ErrPageNotFound = errors.New("page not found")
	// ErrQueueFull is returned when the event queue cannot take more work.
	ErrQueueFull = errors.New("event queue is full")
	// ErrStopped is returned once the manager has shut down.
	ErrStopped = errors.New("manager stopped")
)
