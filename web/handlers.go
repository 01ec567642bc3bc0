package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"keysnip/hotkey"
	"keysnip/snippet"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleGetSnippets returns the full snippet set keyed by name.
func (s *Server) handleGetSnippets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.store.All())
}

// handlePutSnippets replaces the snippet set wholesale. The form UI sends
// the whole mapping back on every save, mirroring the store's
// write-everything persistence.
func (s *Server) handlePutSnippets(w http.ResponseWriter, r *http.Request) {
	var snippets map[string]snippet.Snippet
	if err := json.NewDecoder(r.Body).Decode(&snippets); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.store.ReplaceAll(snippets); err != nil {
		slog.Error("Failed to save snippets", "error", err)
		http.Error(w, "Failed to save snippets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.store.All())
}

func (s *Server) handleClearSnippets(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(); err != nil {
		slog.Error("Failed to clear snippets", "error", err)
		http.Error(w, "Failed to clear snippets", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

// handleImport merges snippets from a JSON file on the local machine.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	count, err := s.store.Import(req.Path)
	if err != nil {
		if errors.Is(err, snippet.ErrNotObject) {
			http.Error(w, "Import file must be a JSON object of snippets", http.StatusBadRequest)
			return
		}
		slog.Error("Import failed", "path", req.Path, "error", err)
		http.Error(w, "Import failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"status": "success", "imported": count})
}

// handleExport writes the snippet set to a JSON file on the local machine.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.store.Export(req.Path); err != nil {
		slog.Error("Export failed", "path", req.Path, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

// handleType starts a typing run for the named snippet ("Test Typing").
func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := s.store.Get(name); !ok {
		http.Error(w, "Snippet not found", http.StatusNotFound)
		return
	}
	s.execute(name)
	writeJSON(w, map[string]string{"status": "typing"})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.log.Entries()
	writeJSON(w, map[string]any{
		"entries": entries,
		"total":   len(entries),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.log.Clear(); err != nil {
		slog.Error("Failed to clear history", "error", err)
		http.Error(w, "Failed to clear history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "success"})
}

// handleGetRuns returns recent typing runs from the metrics database,
// newest first.
func (s *Server) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}
	offset := 0
	if n, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && n > 0 {
		offset = n
	}

	runs, err := s.db.GetRuns(limit, offset)
	if err != nil {
		slog.Error("Failed to get runs", "error", err)
		http.Error(w, "Failed to get runs", http.StatusInternalServerError)
		return
	}
	total, err := s.db.GetRunCount()
	if err != nil {
		slog.Error("Failed to count runs", "error", err)
		http.Error(w, "Failed to get runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"runs":  runs,
		"total": total,
	})
}

// handleStats returns run statistics for the requested day window.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 {
		days = d
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}
	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}
	perSnippet, err := s.db.GetSnippetStats(days)
	if err != nil {
		slog.Error("Failed to get snippet stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"overall":  overall,
		"daily":    daily,
		"snippets": perSnippet,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"snippets":  len(s.store.All()),
		"suspended": s.registrar.Suspended(),
	})
}

// handleCaptureStart begins a hotkey capture session; intermediate combos
// stream over the websocket as the user holds keys.
func (s *Server) handleCaptureStart(w http.ResponseWriter, r *http.Request) {
	id, err := s.capture.Start()
	if err != nil {
		if errors.Is(err, hotkey.ErrCaptureActive) {
			http.Error(w, "Capture already in progress", http.StatusConflict)
			return
		}
		slog.Error("Failed to start capture", "error", err)
		http.Error(w, "Failed to start capture", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"session": id})
}

// handleCaptureStop ends the session and returns the final combo.
func (s *Server) handleCaptureStop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session string `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	combo, err := s.capture.Stop(req.Session)
	if err != nil {
		http.Error(w, "No such capture session", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]string{"combo": combo})
}
