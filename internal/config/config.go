// Package config assembles the process configuration: defaults, an
// optional YAML file, then QUIZGENIUS_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizgenius/internal/llm"
	"github.com/abhisek/quizgenius/internal/pipeline"
)

// Log configures the zap logger.
type Log struct {
	Mode  string `yaml:"mode" validate:"oneof=dev prod development production"`
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Config is the root configuration.
type Config struct {
	Log      Log             `yaml:"log"`
	LLM      llm.Config      `yaml:"llm"`
	Pipeline pipeline.Config `yaml:"pipeline"`

	// DBPath overrides the default SQLite location when set.
	DBPath string `yaml:"db_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:      Log{Mode: "dev", Level: "warn"},
		LLM:      llm.DefaultConfig(),
		Pipeline: pipeline.DefaultConfig(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file; a missing file at an
// explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Parse(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping existing values for absent keys.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every struct tag in the tree.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	llm.ApplyEnv(&cfg.LLM)

	if v := os.Getenv("QUIZGENIUS_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("QUIZGENIUS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("QUIZGENIUS_DB"); v != "" {
		cfg.DBPath = v
	}
}
