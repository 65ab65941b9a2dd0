package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openaiv1 "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible chat
// completions endpoint through the official openai-go SDK. Model ids are
// passed through as-is ("vendor/model").
type OpenRouterProvider struct {
	client openaiv1.Client
	model  string
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	client := openaiv1.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHeader("X-Title", "quizgenius"),
	)

	return &OpenRouterProvider{client: client, model: cfg.Model}, nil
}

func (p *OpenRouterProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := openaiv1.ChatCompletionNewParams{
		Model:    openaiv1.ChatModel(p.model),
		Messages: buildOpenRouterMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaiv1.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openaiv1.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapOpenRouterError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in OpenRouter response")}
	}

	choice := resp.Choices[0]
	content := json.RawMessage(choice.Message.Content)
	stop := "end"
	if choice.FinishReason == "length" {
		stop = "max_tokens"
	}

	if req.Schema != nil {
		if stop == "max_tokens" {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		if err := ValidateJSON(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
		Model:      resp.Model,
		StopReason: stop,
	}, nil
}

func (p *OpenRouterProvider) ModelID() string {
	return p.model
}

func buildOpenRouterMessages(req Request) []openaiv1.ChatCompletionMessageParamUnion {
	var msgs []openaiv1.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openaiv1.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			msgs = append(msgs, openaiv1.ChatCompletionMessageParamOfAssistant(m.Content))
			continue
		}
		msgs = append(msgs, openaiv1.UserMessage(m.Content))
	}
	return msgs
}

func mapOpenRouterError(err error) error {
	var apiErr *openaiv1.Error
	if errors.As(err, &apiErr) {
		var h http.Header
		if apiErr.Response != nil {
			h = apiErr.Response.Header
		}
		return classifyStatus(apiErr.StatusCode, parseRetryAfter(h), err)
	}
	return transportError(err)
}
