// Package agent talks to the AI agents behind the three studio roles. A Caller
// sends one natural-language prompt to the agent serving a role and hands back
// the raw reply; interpreting the reply is left to the normalize package.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/logger"
)

// Result is the outcome of a single agent call.
type Result struct {
	Success  bool            `json:"success"`
	Response string          `json:"response"`           // Reply text, usually JSON possibly wrapped in prose
	Envelope json.RawMessage `json:"envelope,omitempty"` // Raw transport envelope when the back end has one
	Error    string          `json:"error,omitempty"`    // Agent-reported failure message
}

// Failed builds an agent-reported failure.
func Failed(msg string) *Result {
	return &Result{Success: false, Error: msg}
}

// Caller sends a prompt to the agent serving role. A non-nil error means the
// call itself failed (network, timeout, SDK error); an agent that answered but
// reported a problem yields a Result with Success false.
type Caller interface {
	Call(ctx context.Context, prompt string, role core.Role) (*Result, error)
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(ctx context.Context, prompt string, role core.Role) (*Result, error)

func (f CallerFunc) Call(ctx context.Context, prompt string, role core.Role) (*Result, error) {
	return f(ctx, prompt, role)
}

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderRemote = "remote"
	ProviderSample = "sample"
)

// New builds the Caller selected by cfg.Provider, bounded by the configured
// per-call timeout and wrapped with call logging.
func New(ctx context.Context, cfg config.Agent, ai config.AI) (Caller, error) {
	var (
		c   Caller
		err error
	)
	switch cfg.Provider {
	case ProviderGemini, "":
		c, err = NewGemini(ctx, ai.Gemini)
	case ProviderOpenAI:
		c, err = NewOpenAI(ai.OpenAI)
	case ProviderRemote:
		c, err = NewRemote(cfg.Remote, nil)
	case ProviderSample:
		c = NewSample()
	default:
		return nil, fmt.Errorf("unknown agent provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s agent: %w", cfg.Provider, err)
	}
	return Logged(WithTimeout(c, cfg.AgentTimeout())), nil
}

// WithTimeout bounds every call with d. A zero d returns c unchanged.
func WithTimeout(c Caller, d time.Duration) Caller {
	if d <= 0 {
		return c
	}
	return CallerFunc(func(ctx context.Context, prompt string, role core.Role) (*Result, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return c.Call(ctx, prompt, role)
	})
}

// Logged records role, latency and outcome of every call.
func Logged(c Caller) Caller {
	return CallerFunc(func(ctx context.Context, prompt string, role core.Role) (*Result, error) {
		start := time.Now()
		logger.Debug("Calling agent", "role", string(role), "prompt_chars", len(prompt))

		res, err := c.Call(ctx, prompt, role)
		latency := time.Since(start).Milliseconds()
		switch {
		case err != nil:
			logger.Error("Agent call failed", err, "role", string(role), "latency_ms", latency)
		case res == nil || !res.Success:
			msg := ""
			if res != nil {
				msg = res.Error
			}
			logger.Warn("Agent reported failure", "role", string(role), "latency_ms", latency, "agent_error", msg)
		default:
			logger.Info("Agent call completed", "role", string(role), "latency_ms", latency, "response_chars", len(res.Response))
		}
		return res, err
	})
}
