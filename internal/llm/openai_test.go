package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	client := openai.NewClientWithConfig(config)

	return &OpenAIProvider{
		client: client,
		model:  "gpt-4o-mini",
	}
}

func chatCompletionBody(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	}
}

func openAIErrorHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "error",
				"message": "failure",
			},
		})
	}
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	var gotBody map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody(`{"questions":[]}`, "stop"))
	}

	p := newTestOpenAIProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You write exam questions.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate questions."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user message, got %d", len(msgs))
	}
}

func TestOpenAIProvider_TruncatedStructuredOutput(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletionBody(`{"questions":[{"quest`, "length"))
	}

	p := newTestOpenAIProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
		Schema:   &Schema{Name: "openai-truncated", Definition: map[string]any{"type": "object"}},
	})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusTooManyRequests, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }, "ErrRateLimit"},
		{http.StatusInternalServerError, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }, "ErrProviderUnavailable"},
		{http.StatusGatewayTimeout, func(err error) bool { var e *ErrTimeout; return errors.As(err, &e) }, "ErrTimeout"},
		{http.StatusUnauthorized, func(err error) bool { var e *ErrInvalidRequest; return errors.As(err, &e) }, "ErrInvalidRequest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, openAIErrorHandler(tt.status))
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Fatalf("status %d: expected %s, got: %T (%v)", tt.status, tt.name, err, err)
			}
		})
	}
}

func TestOpenAIProvider_ModelMapping(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-mini"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4.1-mini" {
		t.Fatalf("expected 'gpt-4.1-mini', got %q", p.ModelID())
	}

	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
