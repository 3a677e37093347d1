// Package menu is the page menu: named commands the host shows to the
// user and runs against the current page.
package menu

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler runs a command against one page.
type Handler func(ctx context.Context, pageID string) error

// Command is a page menu entry.
type Command struct {
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	Image   string  `json:"image,omitempty"`
	OnClick Handler `json:"-"`
}

// Registry holds the registered page menu commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command. Names must be unique.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("menu command name is required")
	}
	if cmd.OnClick == nil {
		return fmt.Errorf("menu command %q has no handler", cmd.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commands[cmd.Name]; ok {
		return fmt.Errorf("menu command %q already registered", cmd.Name)
	}
	r.commands[cmd.Name] = cmd
	r.order = append(r.order, cmd.Name)
	return nil
}

// Lookup returns a command by name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Click runs the named command against a page.
func (r *Registry) Click(ctx context.Context, name, pageID string) error {
	cmd, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.OnClick(ctx, pageID)
}
