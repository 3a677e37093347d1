package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/foldline/internal/menu"
	"github.com/go-chi/chi/v5"
)

// handleCollapse hides lines deeper than ?level= (default 1).
func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	level := 1
	if v := r.URL.Query().Get("level"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "level must be a non-negative integer", http.StatusBadRequest)
			return
		}
		level = n
	}

	pageID := chi.URLParam(r, "pageID")
	if err := s.manager.Collapse(r.Context(), pageID, level); err != nil {
		s.sessionError(w, err)
		return
	}
	s.writeSnapshot(w, r, pageID, http.StatusOK)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if err := s.manager.Expand(r.Context(), pageID); err != nil {
		s.sessionError(w, err)
		return
	}
	s.writeSnapshot(w, r, pageID, http.StatusOK)
}

// handleToggle is a click on a line. Clicks on top-level lines succeed
// without changing anything.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	lineID := chi.URLParam(r, "lineID")

	toggled, err := s.manager.Toggle(r.Context(), pageID, lineID)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	snap, err := s.manager.Snapshot(r.Context(), pageID)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"toggled": toggled,
		"page":    snap,
	})
}

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"commands": s.menu.Commands()})
}

func (s *Server) handleMenuClick(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	command := chi.URLParam(r, "command")

	if err := s.menu.Click(r.Context(), command, pageID); err != nil {
		if errors.Is(err, menu.ErrUnknownCommand) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		s.sessionError(w, err)
		return
	}
	s.writeSnapshot(w, r, pageID, http.StatusOK)
}

func (s *Server) handleFoldStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"pages":       s.manager.PageCount(),
		"queue_depth": s.manager.QueueDepth(),
		"stats":       s.manager.Stats(),
	})
}
