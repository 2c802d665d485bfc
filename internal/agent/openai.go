package agent

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/prompts"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI serves every role through chat completions with the role's system
// instruction and JSON-object output.
type OpenAI struct {
	Model string
	Opts  []option.RequestOption
}

// NewOpenAI creates an OpenAI back end. BaseURL allows any compatible endpoint.
func NewOpenAI(cfg config.OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY or ai.openai.api_key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{Model: cfg.Model, Opts: opts}, nil
}

// Call implements Caller.
func (o *OpenAI) Call(ctx context.Context, prompt string, role core.Role) (*Result, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompts.SystemInstruction(role)),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Failed("openai: empty choices"), nil
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return Failed("empty response from model"), nil
	}
	return &Result{Success: true, Response: content}, nil
}
