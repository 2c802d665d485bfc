package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contentstudio/internal/agent"
	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/fetch"
	"contentstudio/internal/history"
	"contentstudio/internal/store"
	"contentstudio/internal/workflow"
)

type stubFetcher struct {
	page *fetch.Page
	err  error
}

func (f stubFetcher) Fetch(ctx context.Context, rawURL string) (*fetch.Page, error) {
	return f.page, f.err
}

func newTestServer(t *testing.T, caller agent.Caller, fetcher PageFetcher) (*Server, *history.Store) {
	t.Helper()
	hist := history.Open(context.Background(), store.NewMemory())
	studio := workflow.New(caller, hist, workflow.WithEntryFactory(history.NewEntry))
	srv := New(studio, hist, fetcher, config.Server{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second})
	return srv, hist
}

func do(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) workflow.State {
	t.Helper()
	var st workflow.State
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, agent.NewSample(), nil)
	rec := do(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestGenerateRefineFlow(t *testing.T) {
	srv, hist := newTestServer(t, agent.NewSample(), nil)

	rec := do(t, srv, http.MethodPost, "/api/generate", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("generate without topic: expected 400, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPut, "/api/form", agent.SampleContentRequest())
	if rec.Code != http.StatusOK {
		t.Fatalf("set form: expected 200, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/generate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	st := decodeState(t, rec)
	if st.Generated == nil || !strings.HasPrefix(st.DisplayTitle, "How AI is Transforming") {
		t.Errorf("unexpected state after generate: %+v", st)
	}
	if hist.Len() != 1 {
		t.Errorf("expected 1 history entry, got %d", hist.Len())
	}

	rec = do(t, srv, http.MethodPost, "/api/refine", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("refine without feedback: expected 400, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/feedback/tone", ToneRequest{Tone: "Shorter"})
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle tone: expected 200, got %d", rec.Code)
	}
	rec = do(t, srv, http.MethodPost, "/api/refine", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refine: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	st = decodeState(t, rec)
	if !st.RefinementActive || st.Refinement == nil || st.Refinement.BrandAlignmentScore != "9.2/10" {
		t.Errorf("unexpected state after refine: %+v", st.Refinement)
	}

	rec = do(t, srv, http.MethodGet, "/api/display", nil)
	var disp DisplayResponse
	if err := json.NewDecoder(rec.Body).Decode(&disp); err != nil {
		t.Fatalf("decode display: %v", err)
	}
	if disp.Title != st.Refinement.Title || len(disp.Blocks) == 0 {
		t.Errorf("display should show the refinement: %q, %d blocks", disp.Title, len(disp.Blocks))
	}
}

func TestAgentFailureResponse(t *testing.T) {
	caller := agent.CallerFunc(func(ctx context.Context, _ string, _ core.Role) (*agent.Result, error) {
		return agent.Failed("quota exceeded"), nil
	})
	srv, hist := newTestServer(t, caller, nil)
	do(t, srv, http.MethodPut, "/api/form", core.ContentRequest{Topic: "x", WordCount: 1200})

	rec := do(t, srv, http.MethodPost, "/api/generate", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Message != "quota exceeded" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
	if resp.State == nil || resp.State.Errors.Generate != "quota exceeded" {
		t.Errorf("state should carry the error slot: %+v", resp.State)
	}
	if hist.Len() != 0 {
		t.Error("failed generation must not be recorded")
	}
}

func TestSelectKind(t *testing.T) {
	srv, _ := newTestServer(t, agent.NewSample(), nil)

	rec := do(t, srv, http.MethodPut, "/api/kind", KindRequest{Kind: "poem"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind: expected 400, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPut, "/api/kind", KindRequest{Kind: core.KindCompetitorAnalysis})
	st := decodeState(t, rec)
	if st.Mode != core.ModeCompetitorAnalysis || st.KindLabel != "Critic Response" {
		t.Errorf("unexpected state: %+v", st)
	}

	rec = do(t, srv, http.MethodPost, "/api/generate", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("generate in analysis mode: expected 409, got %d", rec.Code)
	}
}

func TestFetchCompetitor(t *testing.T) {
	page := &fetch.Page{URL: "https://example.com/a", Title: "AI Kills Brands", Source: "Alex Rivera", Text: "Article text"}
	srv, _ := newTestServer(t, agent.NewSample(), stubFetcher{page: page})

	rec := do(t, srv, http.MethodPost, "/api/analysis-form/fetch", FetchRequest{URL: "https://example.com/a"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	st := decodeState(t, rec)
	if st.AnalysisForm.CompetitorContent != "Article text" || st.AnalysisForm.CompetitorSource != "AI Kills Brands (Alex Rivera)" {
		t.Errorf("unexpected analysis form: %+v", st.AnalysisForm)
	}

	failing, _ := newTestServer(t, agent.NewSample(), stubFetcher{err: errors.New("status code 404")})
	if rec := do(t, failing, http.MethodPost, "/api/analysis-form/fetch", FetchRequest{URL: "https://example.com/a"}); rec.Code != http.StatusBadGateway {
		t.Errorf("fetch failure: expected 502, got %d", rec.Code)
	}

	disabled, _ := newTestServer(t, agent.NewSample(), nil)
	if rec := do(t, disabled, http.MethodPost, "/api/analysis-form/fetch", FetchRequest{URL: "x"}); rec.Code != http.StatusNotImplemented {
		t.Errorf("no fetcher: expected 501, got %d", rec.Code)
	}
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t, agent.NewSample(), nil)

	if rec := do(t, srv, http.MethodGet, "/api/export", nil); rec.Code != http.StatusConflict {
		t.Errorf("export without content: expected 409, got %d", rec.Code)
	}

	do(t, srv, http.MethodPut, "/api/kind", KindRequest{Kind: core.KindCompetitorAnalysis})
	do(t, srv, http.MethodPut, "/api/analysis-form", agent.SampleAnalysisRequest())
	if rec := do(t, srv, http.MethodPost, "/api/analyze", nil); rec.Code != http.StatusOK {
		t.Fatalf("analyze: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, srv, http.MethodGet, "/api/export?format=pdf", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad format: expected 400, got %d", rec.Code)
	}

	rec := do(t, srv, http.MethodGet, "/api/export?format=md", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".md") {
		t.Errorf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "---\n") {
		t.Errorf("markdown export should start with front matter:\n%s", rec.Body.String())
	}
}

func TestHistoryEndpoints(t *testing.T) {
	srv, hist := newTestServer(t, agent.NewSample(), nil)
	do(t, srv, http.MethodPut, "/api/form", agent.SampleContentRequest())
	do(t, srv, http.MethodPost, "/api/generate", nil)
	do(t, srv, http.MethodPut, "/api/kind", KindRequest{Kind: core.KindCompetitorAnalysis})
	do(t, srv, http.MethodPut, "/api/analysis-form", agent.SampleAnalysisRequest())
	do(t, srv, http.MethodPost, "/api/analyze", nil)

	if hist.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", hist.Len())
	}

	var list HistoryListResponse
	rec := do(t, srv, http.MethodGet, "/api/history?kind=blog_post", nil)
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || list.Entries[0].ContentType != core.KindBlogPost {
		t.Fatalf("unexpected filtered list: %+v", list)
	}
	id := list.Entries[0].ID

	if rec := do(t, srv, http.MethodGet, "/api/history?kind=poem", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind filter: expected 400, got %d", rec.Code)
	}

	rec = do(t, srv, http.MethodPost, "/api/history/"+id+"/load", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load: expected 200, got %d", rec.Code)
	}
	st := decodeState(t, rec)
	if st.Kind != core.KindBlogPost || st.Form.Topic != agent.SampleContentRequest().Topic || st.HasResult() {
		t.Errorf("unexpected state after load: %+v", st)
	}

	if rec := do(t, srv, http.MethodDelete, "/api/history/"+id, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, "/api/history/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/api/history/missing/load", nil); rec.Code != http.StatusNotFound {
		t.Errorf("load missing: expected 404, got %d", rec.Code)
	}

	if rec := do(t, srv, http.MethodDelete, "/api/history", nil); rec.Code != http.StatusNoContent {
		t.Errorf("clear: expected 204, got %d", rec.Code)
	}
	if hist.Len() != 0 {
		t.Errorf("history should be empty, got %d", hist.Len())
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[error]int{
		workflow.ErrTopicRequired: http.StatusBadRequest,
		workflow.ErrBusy:          http.StatusConflict,
		workflow.ErrSuperseded:    http.StatusConflict,
		workflow.ErrAgentFailed:   http.StatusBadGateway,
		errors.New("other"):       http.StatusInternalServerError,
	}
	for err, want := range tests {
		if got := statusFor(err); got != want {
			t.Errorf("statusFor(%v) = %d, want %d", err, got, want)
		}
	}
}
