package menu

import "errors"

// ErrUnknownCommand is returned when clicking a command that was never
// registered.
var ErrUnknownCommand = errors.New("unknown menu command")
