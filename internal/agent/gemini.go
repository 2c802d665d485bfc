package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/prompts"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash-latest"

// Gemini serves every role with one Gemini model, configured per role with a
// system instruction and a JSON response schema.
type Gemini struct {
	client *genai.Client
	cfg    config.GeminiConfig

	mu     sync.Mutex
	models map[core.Role]*genai.GenerativeModel
}

// NewGemini creates a Gemini back end.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		cfg:    cfg,
		models: make(map[core.Role]*genai.GenerativeModel),
	}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) model(role core.Role) *genai.GenerativeModel {
	g.mu.Lock()
	defer g.mu.Unlock()

	if m, ok := g.models[role]; ok {
		return m
	}

	m := g.client.GenerativeModel(g.cfg.Model)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.SystemInstruction(role))},
	}
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = ResponseSchema(role)
	if g.cfg.MaxTokens > 0 {
		m.SetMaxOutputTokens(g.cfg.MaxTokens)
	}
	if g.cfg.Temperature > 0 {
		m.SetTemperature(g.cfg.Temperature)
	}

	g.models[role] = m
	return m
}

// Call implements Caller.
func (g *Gemini) Call(ctx context.Context, prompt string, role core.Role) (*Result, error) {
	resp, err := g.model(role).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return Failed("empty response from model"), nil
	}
	return &Result{Success: true, Response: text}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		// The first candidate with content is the answer.
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

// ResponseSchema builds the structured-output schema for role from its reply
// contract.
func ResponseSchema(role core.Role) *genai.Schema {
	fields := prompts.OutputFields(role)
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		prop := &genai.Schema{Description: f.Description}
		switch f.Type {
		case prompts.FieldList:
			prop.Type = genai.TypeArray
			prop.Items = &genai.Schema{Type: genai.TypeString}
		case prompts.FieldInteger:
			prop.Type = genai.TypeInteger
		default:
			prop.Type = genai.TypeString
		}
		schema.Properties[f.Name] = prop
		schema.Required = append(schema.Required, f.Name)
	}
	return schema
}
