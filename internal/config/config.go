// Package config holds process configuration for the experiment harness.
//
// All credentials and tunables are resolved once at startup (environment
// first, CLI flags layered on top by cmd) and handed to clients by
// reference. Nothing below cmd reads the environment directly.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Defaults mirror the upstream experiment configuration.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1500

	DefaultTopK          = 5
	DefaultSearchTimeout = 10 * time.Second
)

// Config carries everything the generation and retrieval clients need.
type Config struct {
	// OpenAIAPIKey authenticates against the chat-completion endpoint.
	OpenAIAPIKey string
	// OpenAIBaseURL overrides the generation endpoint (empty = provider default).
	OpenAIBaseURL string
	// TavilyAPIKey authenticates against the web-search endpoint.
	TavilyAPIKey string

	Model       string
	Temperature float64
	MaxTokens   int

	// TopK bounds the number of retrieval hits folded into a RAG prompt.
	TopK          int
	SearchTimeout time.Duration
}

// FromEnv builds a Config from the process environment with defaults applied.
func FromEnv() *Config {
	return &Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		TavilyAPIKey:  os.Getenv("TAVILY_API_KEY"),
		Model:         DefaultModel,
		Temperature:   DefaultTemperature,
		MaxTokens:     DefaultMaxTokens,
		TopK:          DefaultTopK,
		SearchTimeout: DefaultSearchTimeout,
	}
}

// ConfigurationError reports missing or invalid startup configuration.
// It is fatal: the orchestrator refuses to execute any pair under it.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that the credentials required for a run are present.
// needSearch must be true when any selected strategy performs retrieval.
func (c *Config) Validate(needSearch bool) error {
	var missing []string
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if needSearch && strings.TrimSpace(c.TavilyAPIKey) == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}
