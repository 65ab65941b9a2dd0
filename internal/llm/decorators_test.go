package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/quizgenius/internal/store"
)

// slowProvider blocks until ctx is done or its delay elapses.
type slowProvider struct {
	delay time.Duration
}

func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return &Response{Content: json.RawMessage(`{}`), Model: "slow"}, nil
	}
}

func (s *slowProvider) ModelID() string { return "slow" }

func TestWithTimeout_ConvertsOwnDeadline(t *testing.T) {
	p := WithTimeout(&slowProvider{delay: time.Second}, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	var to *ErrTimeout
	if !errors.As(err, &to) {
		t.Fatalf("expected *ErrTimeout, got %v", err)
	}
	if to.After != 10*time.Millisecond {
		t.Errorf("After = %v, want 10ms", to.After)
	}
	if !IsTransient(err) {
		t.Error("timeout should be transient")
	}
	if IsCancellation(err) {
		t.Error("own deadline is not a cancellation")
	}
}

func TestWithTimeout_ParentCancellationPassesThrough(t *testing.T) {
	p := WithTimeout(&slowProvider{delay: time.Second}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var to *ErrTimeout
	if errors.As(err, &to) {
		t.Error("parent cancellation should not become a timeout")
	}
}

func TestWithTimeout_RetriedAsTransient(t *testing.T) {
	slow := &slowProvider{delay: time.Second}
	p := WithRetry(WithTimeout(slow, 5*time.Millisecond), retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var re *RetryError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RetryError, got %v", err)
	}
	if !re.Exhausted || re.Attempts != 3 {
		t.Errorf("exhausted = %v after %d attempts, want true after 3", re.Exhausted, re.Attempts)
	}
}

func TestWithRateLimit_SpacesCalls(t *testing.T) {
	mock := NewMockProviderFunc(func(Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`{}`)}
	})
	p := WithRateLimit(mock, 50, 1) // one token every 20ms

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := p.Generate(context.Background(), Request{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("three calls took %v, want >= 35ms", elapsed)
	}
}

func TestWithRateLimit_DisabledWhenZero(t *testing.T) {
	mock := NewMockProvider()
	if p := WithRateLimit(mock, 0, 0); p != Provider(mock) {
		t.Errorf("zero rate should return the provider unchanged, got %T", p)
	}
}

func TestWithRateLimit_CancelledWhileWaiting(t *testing.T) {
	mock := NewMockProviderFunc(func(Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`{}`)}
	})
	p := WithRateLimit(mock, 0.001, 1)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = val
	m.sets++
	return nil
}

func TestWithCache_ServesRepeatRequests(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage("plain text, not JSON"), Usage: Usage{TotalTokens: 7}},
	)
	cache := &memoryCache{}
	p := WithCache(mock, cache, time.Hour, nil)

	req := Request{Messages: []Message{{Role: RoleUser, Content: "same"}}}
	first, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if first.Cached {
		t.Error("first response should not be cached")
	}

	second, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !second.Cached {
		t.Error("second response should be cached")
	}
	if second.Text() != "plain text, not JSON" {
		t.Errorf("cached text = %q", second.Text())
	}
	if second.Usage.TotalTokens != 7 {
		t.Errorf("cached usage = %d tokens, want 7", second.Usage.TotalTokens)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 provider call, got %d", mock.CallCount())
	}

	// A different request misses the cache and drains the empty queue.
	if _, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "other"}}}); err == nil {
		t.Error("expected error from the drained mock")
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
}

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func TestWithLogging_RecordsEvents(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[]}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	repo := &recordingRepo{}
	p := WithLogging(mock, "mock", repo, nil)

	ctx := WithPurpose(context.Background(), "question-gen:true_false")
	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "chunk text"}}}

	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected rate limit error")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok := repo.events[0]
	if !ok.Success {
		t.Error("first event should succeed")
	}
	if ok.Purpose != "question-gen:true_false" {
		t.Errorf("purpose = %q", ok.Purpose)
	}
	if ok.InputTokens != 12 {
		t.Errorf("input tokens = %d, want 12", ok.InputTokens)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nsys") || !strings.Contains(ok.RequestBody, "chunk text") {
		t.Errorf("request body = %q", ok.RequestBody)
	}
	if ok.ResponseBody != `{"questions":[]}` {
		t.Errorf("response body = %q", ok.ResponseBody)
	}

	failed := repo.events[1]
	if failed.Success {
		t.Error("second event should fail")
	}
	if !strings.Contains(failed.ErrorMessage, "rate limited") {
		t.Errorf("error message = %q", failed.ErrorMessage)
	}
}

func TestWithLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestNewProvider_MockStack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	cfg.Retry = retryConfig()

	p, closeFn, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer closeFn()

	if p.ModelID() != "mock" {
		t.Errorf("model = %q, want mock", p.ModelID())
	}
	_, err = p.Generate(context.Background(), Request{})
	var re *RetryError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RetryError, got %v", err)
	}
	if !re.Exhausted {
		t.Error("empty mock should exhaust retries")
	}

	if _, _, err := NewProvider(context.Background(), Config{Provider: "nope"}, nil, nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}
