package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/quizgenius/internal/logger"
	"github.com/abhisek/quizgenius/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with the
// decorator stack:
//
//	caller → cache → retry → rate limit → timeout → logging → base
//
// The cache layer is present only when cfg.Cache.RedisURL is set.
// eventRepo and log may be nil. The returned close func releases the
// cache connection and is never nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, func() error, error) {
	if log == nil {
		log = logger.Nop()
	}
	closeFn := func() error { return nil }

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, closeFn, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, closeFn, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	var cache Cache
	if cfg.Cache.RedisURL != "" {
		rc, err := NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, closeFn, fmt.Errorf("connect completion cache: %w", err)
		}
		cache, closeFn = rc, rc.Close
	}

	return Decorate(base, cfg, eventRepo, cache, log), closeFn, nil
}

// Decorate applies the standard decorator stack to base. cache may be nil.
func Decorate(base Provider, cfg Config, eventRepo store.EventRepo, cache Cache, log *logger.Logger) Provider {
	p := WithLogging(base, cfg.Provider, eventRepo, log)
	p = WithTimeout(p, cfg.Timeout)
	p = WithRateLimit(p, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	p = WithRetry(p, cfg.Retry)
	return WithCache(p, cache, cfg.Cache.TTL, log)
}
