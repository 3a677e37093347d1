package session

import (
	"context"

	"github.com/dgallion1/foldline/internal/menu"
)

// Names of the page menu commands.
const (
	CommandCollapse = "collapse-indent"
	CommandExpand   = "expand-indent"
)

// RegisterMenu adds the fold commands to the page menu.
func (m *Manager) RegisterMenu(reg *menu.Registry) error {
	if err := reg.Register(menu.Command{
		Name:  CommandCollapse,
		Title: "Collapse indent",
		OnClick: func(ctx context.Context, pageID string) error {
			return m.Collapse(ctx, pageID, 1)
		},
	}); err != nil {
		return err
	}
	return reg.Register(menu.Command{
		Name:  CommandExpand,
		Title: "Expand indent",
		OnClick: func(ctx context.Context, pageID string) error {
			return m.Expand(ctx, pageID)
		},
	})
}
