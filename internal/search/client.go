// Package search wraps the remote web-search call used by the RAG
// strategies. One network call per invocation, no caching, no local
// re-ranking: hits come back in the service's relevance order.
package search

import (
	"context"
	"fmt"
)

// Hit is a single ranked search result. Hits are ephemeral: they are folded
// into the generation prompt and never persisted on their own.
type Hit struct {
	Title   string
	Snippet string
	URL     string
	Rank    int // 1-based service ranking
}

// Client performs one remote search per call.
type Client interface {
	// Search returns at most maxResults hits for a non-empty query,
	// ordered by the service's relevance ranking.
	Search(ctx context.Context, query string, maxResults int) ([]Hit, error)
}

// RetrievalError reports a failed or malformed remote search.
type RetrievalError struct {
	Query      string
	StatusCode int
	Message    string
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("search failed: %s", e.Message)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
