// Package strategy defines the four prompting configurations the harness
// compares. The set is closed: every strategy resolves to a Definition at
// startup, so there is no dynamic template lookup at run time.
package strategy

import (
	"fmt"
	"strings"

	"github.com/giantswarm/rag-compare/internal/llm"
	"github.com/giantswarm/rag-compare/internal/scenario"
	"github.com/giantswarm/rag-compare/internal/search"
)

// Strategy identifies one prompting configuration.
type Strategy string

const (
	// LLMOnly answers from the model alone, ignoring history and retrieval.
	LLMOnly Strategy = "llm-only"
	// LLMWithHistory replays the prior conversation before the question.
	LLMWithHistory Strategy = "llm-with-history"
	// RAG folds web-search results into the prompt.
	RAG Strategy = "rag"
	// RAGWithHistory combines conversation replay with web-search results.
	RAGWithHistory Strategy = "rag-with-history"
)

// All returns the strategies in their fixed execution order.
func All() []Strategy {
	return []Strategy{LLMOnly, LLMWithHistory, RAG, RAGWithHistory}
}

// Definition describes how a strategy assembles its prompt.
type Definition struct {
	Strategy      Strategy
	UsesHistory   bool
	UsesRetrieval bool
	SystemPrompt  string
}

// Get resolves a strategy name to its definition. The switch is exhaustive
// over the closed set; unknown names are an error.
func Get(s Strategy) (Definition, error) {
	switch s {
	case LLMOnly:
		return Definition{Strategy: s, SystemPrompt: systemPromptLLMOnly}, nil
	case LLMWithHistory:
		return Definition{Strategy: s, UsesHistory: true, SystemPrompt: systemPromptLLMWithHistory}, nil
	case RAG:
		return Definition{Strategy: s, UsesRetrieval: true, SystemPrompt: systemPromptRAG}, nil
	case RAGWithHistory:
		return Definition{Strategy: s, UsesHistory: true, UsesRetrieval: true, SystemPrompt: systemPromptRAGWithHistory}, nil
	default:
		return Definition{}, fmt.Errorf("unknown strategy: %q", s)
	}
}

// Parse resolves a comma-separated strategy list, defaulting to All when
// the input is empty.
func Parse(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return All(), nil
	}

	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		s := Strategy(strings.TrimSpace(name))
		if _, err := Get(s); err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

// Render assembles the chat messages for one (scenario, strategy) pair.
// The hits argument is ignored by non-retrieval strategies and must be the
// retrieval output for the others.
func (d Definition) Render(scn scenario.Scenario, hits []search.Hit) []llm.Message {
	var messages []llm.Message

	if d.UsesHistory {
		for _, turn := range scn.History {
			messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
		}
	}

	switch {
	case d.UsesRetrieval && d.UsesHistory:
		// Search context rides as a system message between the replayed
		// conversation and the current question.
		messages = append(messages,
			llm.Message{Role: "system", Content: "Search Results:\n" + FormatHits(hits)},
			llm.Message{Role: "user", Content: scn.Query},
		)
	case d.UsesRetrieval:
		content := fmt.Sprintf("Search Results:\n%s\n\nQuestion: %s", FormatHits(hits), scn.Query)
		messages = append(messages, llm.Message{Role: "user", Content: content})
	default:
		messages = append(messages, llm.Message{Role: "user", Content: scn.Query})
	}

	return messages
}

// FormatHits renders retrieval hits as a numbered context block.
func FormatHits(hits []search.Hit) string {
	if len(hits) == 0 {
		return "No search results available."
	}

	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   Source: %s\n\n", i+1, h.Title, h.Snippet, h.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
