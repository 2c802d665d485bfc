package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"contentstudio/internal/core"
)

// HistoryListResponse is the GET /api/history body.
type HistoryListResponse struct {
	Entries []core.HistoryEntry `json:"entries"`
	Total   int                 `json:"total"`
}

// handleListHistory handles GET /api/history?kind=&q=
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	kind := core.ContentKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != "all" && !kind.Known() {
		s.respondError(w, http.StatusBadRequest, "unknown content kind "+string(kind))
		return
	}

	entries := s.history.Filter(kind, r.URL.Query().Get("q"))
	if entries == nil {
		entries = []core.HistoryEntry{}
	}
	s.respondJSON(w, http.StatusOK, HistoryListResponse{
		Entries: entries,
		Total:   len(entries),
	})
}

// handleDeleteHistory handles DELETE /api/history/{id}
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := s.history.Delete(r.Context(), id)
	if !found {
		s.respondError(w, http.StatusNotFound, "History entry not found")
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("History entry deleted in memory only")
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleClearHistory handles DELETE /api/history
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.log.Warn().Err(err).Msg("History cleared in memory only")
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadHistory handles POST /api/history/{id}/load. The entry's form and
// kind are restored; no agent is called.
func (s *Server) handleLoadHistory(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.history.Get(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "History entry not found")
		return
	}
	s.studio.LoadEntry(entry)
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}
