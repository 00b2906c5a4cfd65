package cmd

import (
	"net/http"

	"github.com/giantswarm/rag-compare/internal/config"
	"github.com/giantswarm/rag-compare/internal/llm"
	"github.com/giantswarm/rag-compare/internal/search"
)

// newLLMClient creates a generation client from resolved configuration.
func newLLMClient(cfg *config.Config) llm.Client {
	var opts []llm.Option
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, llm.WithAPIKey(cfg.OpenAIAPIKey))
	}
	return llm.NewOpenAIClient(opts...)
}

// newSearchClient creates a retrieval client, or nil when no search
// credential is configured.
func newSearchClient(cfg *config.Config) search.Client {
	if cfg.TavilyAPIKey == "" {
		return nil
	}
	opts := []search.TavilyOption{search.WithAPIKey(cfg.TavilyAPIKey)}
	if cfg.SearchTimeout > 0 {
		opts = append(opts, search.WithHTTPClient(&http.Client{Timeout: cfg.SearchTimeout}))
	}
	return search.NewTavilyClient(opts...)
}
