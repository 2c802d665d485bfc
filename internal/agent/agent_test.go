package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/normalize"
	"contentstudio/internal/prompts"
)

func TestRemoteCall(t *testing.T) {
	var got remoteRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"response":"{\"title\":\"Hello\"}"}`))
	}))
	defer srv.Close()

	r, err := NewRemote(config.RemoteConfig{URL: srv.URL, APIKey: "k", AnalyzerID: "agent-42"}, srv.Client())
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}

	res, err := r.Call(context.Background(), "Topic: x", core.RoleAnalyzer)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !res.Success || res.Response != `{"title":"Hello"}` {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(res.Envelope) == 0 {
		t.Error("expected envelope to be preserved")
	}
	if got.AgentID != "agent-42" || got.Message != "Topic: x" {
		t.Errorf("unexpected request: %+v", got)
	}
	if auth != "Bearer k" {
		t.Errorf("expected bearer auth, got %q", auth)
	}
}

func TestRemoteEnvelopes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		wantSuccess bool
		wantMsg     string
	}{
		{"object response", 200, `{"success":true,"response":{"result":{"title":"T"}}}`, false, true, ""},
		{"agent failure", 200, `{"success":false,"error":"quota exceeded"}`, false, false, "quota exceeded"},
		{"http error with envelope", 502, `{"success":false,"error":"upstream down"}`, false, false, "upstream down"},
		{"http error without json", 500, `Internal Server Error`, false, false, "agent request failed with status 500"},
		{"malformed 200", 200, `<html>`, true, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r, _ := NewRemote(config.RemoteConfig{URL: srv.URL}, srv.Client())
			res, err := r.Call(context.Background(), "p", core.RoleGenerator)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected transport error, got %+v", res)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Success != tt.wantSuccess || res.Error != tt.wantMsg {
				t.Errorf("got %+v", res)
			}
		})
	}
}

func TestRemoteObjectResponseReachesPayload(t *testing.T) {
	raw := []byte(`{"success":true,"response":{"result":{"title":"From envelope"}}}`)
	res := decodeEnvelope(raw, 200)

	payload := normalize.Payload(normalize.ExtractJSON(res.Response), res.Envelope)
	if got := normalize.Generation(payload).Title; got != "From envelope" {
		t.Errorf("expected title from nested result, got %q", got)
	}
}

func TestRemoteDefaultsAgentIDToRole(t *testing.T) {
	r, err := NewRemote(config.RemoteConfig{URL: "http://example.invalid"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.AgentID(core.RoleRefiner) != "refiner" {
		t.Errorf("expected role name as default agent id, got %q", r.AgentID(core.RoleRefiner))
	}
	if _, err := NewRemote(config.RemoteConfig{}, nil); err == nil {
		t.Error("expected error for missing URL")
	}
}

func TestSampleReplies(t *testing.T) {
	s := NewSample()

	res, err := s.Call(context.Background(), "ignored", core.RoleGenerator)
	if err != nil || !res.Success {
		t.Fatalf("unexpected result: %+v, %v", res, err)
	}
	gen := normalize.Generation(normalize.Payload(normalize.ExtractJSON(res.Response), res.Envelope))
	if gen.WordCount != 1487 || len(gen.SEOKeywords) != 6 || !strings.HasPrefix(gen.Title, "How AI is Transforming") {
		t.Errorf("unexpected sample generation: %+v", gen)
	}

	res, _ = s.Call(context.Background(), "ignored", core.RoleAnalyzer)
	an := normalize.Analysis(normalize.Payload(normalize.ExtractJSON(res.Response), nil))
	if an.ThreatLevel != "Medium" || len(an.StrategicTalkingPoints) != 5 {
		t.Errorf("unexpected sample analysis: %+v", an)
	}

	res, _ = s.Call(context.Background(), "ignored", core.RoleRefiner)
	ref := normalize.Refinement(normalize.Payload(normalize.ExtractJSON(res.Response), nil))
	if ref.BrandAlignmentScore != "9.2/10" {
		t.Errorf("unexpected sample refinement: %+v", ref)
	}

	res, _ = s.Call(context.Background(), "ignored", core.Role("critic"))
	if res.Success {
		t.Error("expected failure for unknown role")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Call(ctx, "p", core.RoleGenerator); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSampleForms(t *testing.T) {
	req := SampleContentRequest()
	if req.WordCount != 1500 || req.Tone != "Professional" {
		t.Errorf("unexpected sample form: %+v", req)
	}
	if err := req.Validate(core.KindBlogPost); err != nil {
		t.Errorf("sample form should be valid: %v", err)
	}

	an := SampleAnalysisRequest()
	if an.ResponseGoal != "Counter Narrative" || !an.Ready() {
		t.Errorf("unexpected sample analysis form: %+v", an)
	}
}

func TestResponseSchema(t *testing.T) {
	for _, role := range core.Roles {
		schema := ResponseSchema(role)
		fields := prompts.OutputFields(role)
		if len(schema.Properties) != len(fields) || len(schema.Required) != len(fields) {
			t.Fatalf("%s: schema has %d properties for %d fields", role, len(schema.Properties), len(fields))
		}
	}

	gen := ResponseSchema(core.RoleGenerator)
	if gen.Properties["seo_keywords"].Type != genai.TypeArray || gen.Properties["seo_keywords"].Items.Type != genai.TypeString {
		t.Error("seo_keywords should be an array of strings")
	}
	if gen.Properties["word_count"].Type != genai.TypeInteger {
		t.Error("word_count should be an integer")
	}
	if gen.Properties["title"].Type != genai.TypeString {
		t.Error("title should be a string")
	}
}

func TestWithTimeout(t *testing.T) {
	slow := CallerFunc(func(ctx context.Context, prompt string, role core.Role) (*Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := WithTimeout(slow, 10*time.Millisecond).Call(context.Background(), "p", core.RoleGenerator)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	if c := WithTimeout(slow, 0); c == nil {
		t.Error("zero timeout should return the caller")
	}
}

func TestLoggedPassesThrough(t *testing.T) {
	want := &Result{Success: true, Response: "{}"}
	inner := CallerFunc(func(ctx context.Context, prompt string, role core.Role) (*Result, error) {
		return want, nil
	})
	got, err := Logged(inner).Call(context.Background(), "p", core.RoleRefiner)
	if err != nil || got != want {
		t.Errorf("expected pass-through, got %+v, %v", got, err)
	}

	boom := errors.New("boom")
	failing := CallerFunc(func(ctx context.Context, prompt string, role core.Role) (*Result, error) {
		return nil, boom
	})
	if _, err := Logged(failing).Call(context.Background(), "p", core.RoleRefiner); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error to pass through, got %v", err)
	}
}

func TestNewProviders(t *testing.T) {
	c, err := New(context.Background(), config.Agent{Provider: ProviderSample, Timeout: "5s"}, config.AI{})
	if err != nil {
		t.Fatalf("New(sample): %v", err)
	}
	res, err := c.Call(context.Background(), "p", core.RoleGenerator)
	if err != nil || !res.Success {
		t.Errorf("sample caller failed: %+v, %v", res, err)
	}

	if _, err := New(context.Background(), config.Agent{Provider: "carrier-pigeon"}, config.AI{}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := New(context.Background(), config.Agent{Provider: ProviderOpenAI}, config.AI{}); err == nil {
		t.Error("expected error for missing OpenAI key")
	}
	if _, err := New(context.Background(), config.Agent{Provider: ProviderGemini}, config.AI{}); err == nil {
		t.Error("expected error for missing Gemini key")
	}
}
