package server

import (
	"github.com/giantswarm/rag-compare/internal/llm"
	"github.com/giantswarm/rag-compare/internal/runner"
	"github.com/giantswarm/rag-compare/internal/search"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	LLMClient    llm.Client
	SearchClient search.Client // nil disables retrieval strategies
	RunnerConfig runner.Config
	OutputDir    string
	ScenariosDir string // external scenario sets directory (optional)
}
