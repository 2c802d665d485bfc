package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"contentstudio/internal/core"
	"contentstudio/internal/export"
	"contentstudio/internal/render"
	"contentstudio/internal/workflow"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status  string `json:"status"`
	History int    `json:"history"`
}

// KindRequest selects a content kind.
type KindRequest struct {
	Kind core.ContentKind `json:"kind"`
}

// ToneRequest toggles a tone adjustment.
type ToneRequest struct {
	Tone string `json:"tone"`
}

// FetchRequest names a competitor article to load into the analysis form.
type FetchRequest struct {
	URL string `json:"url"`
}

// DisplayResponse is the displayed content, raw and split into blocks.
type DisplayResponse struct {
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Blocks []render.Block `json:"blocks"`
}

// ErrorResponse wraps an error with the studio state it left behind.
type ErrorResponse struct {
	Error ErrorBody       `json:"error"`
	State *workflow.State `json:"state,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		History: s.history.Len(),
	})
}

// handleState handles GET /api/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}

// handleSelectKind handles PUT /api/kind
func (s *Server) handleSelectKind(w http.ResponseWriter, r *http.Request) {
	var req KindRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !req.Kind.Known() {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown content kind %q", req.Kind))
		return
	}
	s.studio.SelectKind(req.Kind)
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}

// handleSetForm handles PUT /api/form
func (s *Server) handleSetForm(w http.ResponseWriter, r *http.Request) {
	form := core.NewContentRequest()
	if !s.decode(w, r, &form) {
		return
	}
	s.studio.SetForm(form)
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}

// handleSetAnalysisForm handles PUT /api/analysis-form
func (s *Server) handleSetAnalysisForm(w http.ResponseWriter, r *http.Request) {
	var form core.AnalysisRequest
	if !s.decode(w, r, &form) {
		return
	}
	s.studio.SetAnalysisForm(form)
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}

// handleFetchCompetitor handles POST /api/analysis-form/fetch. The article
// text replaces the competitor content; the source is filled only when blank.
func (s *Server) handleFetchCompetitor(w http.ResponseWriter, r *http.Request) {
	if s.fetcher == nil {
		s.respondError(w, http.StatusNotImplemented, "URL fetching is disabled")
		return
	}
	var req FetchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	page, err := s.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.log.Warn().Err(err).Str("url", req.URL).Msg("Failed to fetch competitor page")
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	form := s.studio.Snapshot().AnalysisForm
	form.CompetitorContent = page.Text
	if strings.TrimSpace(form.CompetitorSource) == "" {
		form.CompetitorSource = page.SourceLabel()
	}
	s.studio.SetAnalysisForm(form)
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}

// handleSetFeedback handles PUT /api/feedback
func (s *Server) handleSetFeedback(w http.ResponseWriter, r *http.Request) {
	var fb core.FeedbackInput
	if !s.decode(w, r, &fb) {
		return
	}
	if fb.ToneAdjustment != "" && !core.IsToneAdjustment(fb.ToneAdjustment) {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown tone adjustment %q", fb.ToneAdjustment))
		return
	}
	s.studio.SetFeedback(fb)
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}

// handleToggleTone handles POST /api/feedback/tone
func (s *Server) handleToggleTone(w http.ResponseWriter, r *http.Request) {
	var req ToneRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.studio.ToggleTone(req.Tone); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.studio.Snapshot())
}

// handleGenerate handles POST /api/generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.runStage(w, core.RoleGenerator, s.studio.Generate(r.Context()))
}

// handleAnalyze handles POST /api/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	s.runStage(w, core.RoleAnalyzer, s.studio.Analyze(r.Context()))
}

// handleRefine handles POST /api/refine
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	s.runStage(w, core.RoleRefiner, s.studio.Refine(r.Context()))
}

// runStage answers a workflow run with the resulting state, or with the error
// and the state it left behind.
func (s *Server) runStage(w http.ResponseWriter, role core.Role, err error) {
	st := s.studio.Snapshot()
	if err == nil {
		s.respondJSON(w, http.StatusOK, st)
		return
	}

	status := statusFor(err)
	msg := err.Error()
	if errors.Is(err, workflow.ErrAgentFailed) {
		if slot := s.studio.Error(role); slot != "" {
			msg = slot
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("role", string(role)).Msg("Workflow stage failed")
	}
	s.respondJSON(w, status, ErrorResponse{
		Error: ErrorBody{Status: status, Message: msg},
		State: &st,
	})
}

// statusFor maps workflow errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrTopicRequired),
		errors.Is(err, workflow.ErrContentRequired),
		errors.Is(err, workflow.ErrFeedbackRequired),
		errors.Is(err, workflow.ErrUnknownTone):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrWrongMode),
		errors.Is(err, workflow.ErrNoResult),
		errors.Is(err, workflow.ErrBusy),
		errors.Is(err, workflow.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrAgentFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleDisplay handles GET /api/display
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	title, body := s.studio.Display()
	blocks := render.Blocks(body)
	if blocks == nil {
		blocks = []render.Block{}
	}
	s.respondJSON(w, http.StatusOK, DisplayResponse{Title: title, Body: body, Blocks: blocks})
}

var contentTypes = map[export.Format]string{
	export.FormatText:     "text/plain; charset=utf-8",
	export.FormatMarkdown: "text/markdown; charset=utf-8",
	export.FormatHTML:     "text/html; charset=utf-8",
}

// handleExport handles GET /api/export?format=txt|md|html and sends the
// displayed content as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.studio.Document()
	if err != nil {
		s.respondError(w, http.StatusConflict, err.Error())
		return
	}

	data, err := export.Render(doc, format)
	if err != nil {
		s.log.Error().Err(err).Str("format", string(format)).Msg("Failed to render export")
		s.respondError(w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(doc.Title, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: ErrorBody{Status: status, Message: message}})
}
