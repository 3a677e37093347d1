package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/foldline/internal/hostapi"
	"github.com/dgallion1/foldline/internal/parser"
	"github.com/dgallion1/foldline/internal/session"
	"github.com/go-chi/chi/v5"
)

// handleCreatePage parses an uploaded outline into a new page.
func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("parse failed", "filename", filename, "error", err)
		jsonError(w, "parse: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if title := r.FormValue("title"); title != "" {
		doc.Title = title
	}

	page := s.manager.Create(doc, filename)
	s.writeSnapshot(w, r, page.ID, http.StatusCreated)
}

type importRequest struct {
	Project string `json:"project"`
	Title   string `json:"title"`
}

// handleImportPage loads a page from the outliner host.
func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	if s.host == nil {
		jsonError(w, "host import unavailable", http.StatusServiceUnavailable)
		return
	}

	var req importRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Project == "" || req.Title == "" {
		jsonError(w, "project and title are required", http.StatusBadRequest)
		return
	}

	doc, err := s.host.FetchPage(r.Context(), req.Project, req.Title)
	if err != nil {
		if errors.Is(err, hostapi.ErrPageNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("host import failed", "project", req.Project, "title", req.Title, "error", err)
		jsonError(w, "host import failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	page := s.manager.Create(doc, "host:"+req.Project+"/"+req.Title)
	s.writeSnapshot(w, r, page.ID, http.StatusCreated)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r, chi.URLParam(r, "pageID"), http.StatusOK)
}

// handleViewPage renders the page's HTML view.
func (s *Server) handleViewPage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.manager.Render(r.Context(), chi.URLParam(r, "pageID"), &buf); err != nil {
		s.sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "pageID")
	if err := s.manager.Delete(pageID); err != nil {
		s.sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"page_id": pageID, "deleted": true})
}

func (s *Server) writeSnapshot(w http.ResponseWriter, r *http.Request, pageID string, code int) {
	snap, err := s.manager.Snapshot(r.Context(), pageID)
	if err != nil {
		s.sessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(snap)
}

// sessionError maps manager errors onto status codes.
func (s *Server) sessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrPageNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrQueueFull), errors.Is(err, session.ErrStopped):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
