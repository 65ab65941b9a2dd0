package questiongen

import "time"

// Config holds the orchestrator's limits.
type Config struct {
	// MaxConcurrency bounds in-flight model calls.
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=1,lte=64"`

	// BatchTimeout bounds the whole batch. Zero disables it.
	BatchTimeout time.Duration `yaml:"batch_timeout" validate:"gte=0"`

	MaxTokens   int     `yaml:"max_tokens" validate:"gte=256"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=1"`

	// OverGenerationFactor scales the per-chunk request so that rejected
	// drafts can be absorbed before truncation.
	OverGenerationFactor float64 `yaml:"over_generation_factor" validate:"gte=1,lte=4"`

	// StructuredOutput asks providers for schema-constrained JSON.
	StructuredOutput bool `yaml:"structured_output"`
}

// DefaultConfig returns the standard orchestrator limits.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency:       4,
		BatchTimeout:         2 * time.Minute,
		MaxTokens:            4096,
		Temperature:          0.7,
		OverGenerationFactor: 1.5,
	}
}
