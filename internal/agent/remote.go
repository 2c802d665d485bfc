package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
)

const maxEnvelopeBytes = 8 << 20

// Remote reaches agents hosted on an agent platform over HTTP. Each role maps
// to a platform agent id; the platform answers with an envelope of the form
// {"success": bool, "response": string|object, "error": string}.
type Remote struct {
	url     string
	apiKey  string
	agents  map[core.Role]string
	httpCli *http.Client
}

type remoteRequest struct {
	Message string `json:"message"`
	AgentID string `json:"agent_id"`
}

// NewRemote creates a Remote back end. A nil client gets a default one.
func NewRemote(cfg config.RemoteConfig, client *http.Client) (*Remote, error) {
	if cfg.URL == "" {
		return nil, errors.New("agent.remote.url is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Remote{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		agents: map[core.Role]string{
			core.RoleGenerator: orDefault(cfg.GeneratorID, string(core.RoleGenerator)),
			core.RoleAnalyzer:  orDefault(cfg.AnalyzerID, string(core.RoleAnalyzer)),
			core.RoleRefiner:   orDefault(cfg.RefinerID, string(core.RoleRefiner)),
		},
		httpCli: client,
	}, nil
}

// AgentID returns the platform agent id serving role.
func (r *Remote) AgentID(role core.Role) string {
	if id, ok := r.agents[role]; ok {
		return id
	}
	return string(role)
}

// Call implements Caller.
func (r *Remote) Call(ctx context.Context, prompt string, role core.Role) (*Result, error) {
	body, err := json.Marshal(remoteRequest{Message: prompt, AgentID: r.AgentID(role)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call agent: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEnvelopeBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read agent response: %w", err)
	}

	if !gjson.ValidBytes(raw) {
		if resp.StatusCode >= 300 {
			return Failed(fmt.Sprintf("agent request failed with status %d", resp.StatusCode)), nil
		}
		return nil, fmt.Errorf("agent returned a malformed envelope (status %d)", resp.StatusCode)
	}

	return decodeEnvelope(raw, resp.StatusCode), nil
}

func decodeEnvelope(raw []byte, status int) *Result {
	env := gjson.ParseBytes(raw)

	errMsg := env.Get("error")
	if !env.Get("success").Bool() || status >= 300 {
		msg := ""
		if errMsg.Type == gjson.String {
			msg = errMsg.Str
		}
		if msg == "" && status >= 300 {
			msg = fmt.Sprintf("agent request failed with status %d", status)
		}
		return &Result{Success: false, Error: msg, Envelope: json.RawMessage(raw)}
	}

	response := env.Get("response")
	text := response.Raw
	if response.Type == gjson.String {
		text = response.Str
	}
	return &Result{Success: true, Response: text, Envelope: json.RawMessage(raw)}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
