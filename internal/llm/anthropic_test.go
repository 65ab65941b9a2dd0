package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

func anthropicErrorHandler(status int, errType string, header map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		for k, v := range header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type": "error",
			"error": map[string]any{
				"type":    errType,
				"message": "failure",
			},
		})
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"questions":[{"question":"What drives osmosis?"}]}`},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  50,
				"output_tokens": 30,
			},
		})
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You write exam questions.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate questions."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 80 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
	if resp.Text() != `{"questions":[{"question":"What drives osmosis?"}]}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	t.Run("rate limit with retry-after", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicErrorHandler(http.StatusTooManyRequests, "rate_limit_error", map[string]string{"Retry-After": "2"}))
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}, MaxTokens: 100})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
		}
		if rl.RetryAfter != 2*time.Second {
			t.Fatalf("RetryAfter = %v, want 2s", rl.RetryAfter)
		}
	})

	t.Run("server error", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicErrorHandler(http.StatusInternalServerError, "api_error", nil))
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}, MaxTokens: 100})
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
		}
	})

	t.Run("bad request", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicErrorHandler(http.StatusBadRequest, "invalid_request_error", nil))
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}, MaxTokens: 100})
		var inv *ErrInvalidRequest
		if !errors.As(err, &inv) {
			t.Fatalf("expected ErrInvalidRequest, got: %T (%v)", err, err)
		}
		if inv.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d", inv.StatusCode)
		}
		if IsTransient(err) {
			t.Fatal("bad request must not be transient")
		}
	})
}

func TestAnthropicProvider_ModelID(t *testing.T) {
	p := &AnthropicProvider{model: "claude-sonnet-4-20250514"}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Fatalf("expected 'claude-sonnet-4-20250514', got %q", p.ModelID())
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
