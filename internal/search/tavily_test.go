package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *TavilyClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTavilyClient(WithAPIKey("tvly-test"), WithBaseURL(srv.URL))
}

func TestSearchReturnsRankedHits(t *testing.T) {
	var gotBody tavilyRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"title": "First", "content": "first snippet", "url": "https://a.example", "score": 0.9},
			{"title": "Second", "content": "second snippet", "url": "https://b.example", "score": 0.7},
			{"title": "Third", "content": "third snippet", "url": "https://c.example", "score": 0.5}
		]}`))
	})

	hits, err := client.Search(context.Background(), "flu symptoms", 5)
	require.NoError(t, err)

	assert.Equal(t, "flu symptoms", gotBody.Query)
	assert.Equal(t, "tvly-test", gotBody.APIKey)
	assert.Equal(t, 5, gotBody.MaxResults)

	require.Len(t, hits, 3)
	assert.Equal(t, "First", hits[0].Title)
	assert.Equal(t, 1, hits[0].Rank)
	assert.Equal(t, "third snippet", hits[2].Snippet)
	assert.Equal(t, 3, hits[2].Rank)
}

func TestSearchHonorsMaxResultsBound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"title": "A", "content": "a", "url": "u1"},
			{"title": "B", "content": "b", "url": "u2"},
			{"title": "C", "content": "c", "url": "u3"}
		]}`))
	})

	hits, err := client.Search(context.Background(), "query", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewTavilyClient(WithAPIKey("tvly-test"))

	_, err := client.Search(context.Background(), "   ", 5)
	var retErr *RetrievalError
	require.True(t, errors.As(err, &retErr))
	assert.Contains(t, retErr.Message, "empty")
}

func TestSearchInvalidMaxResults(t *testing.T) {
	client := NewTavilyClient(WithAPIKey("tvly-test"))

	_, err := client.Search(context.Background(), "query", 0)
	var retErr *RetrievalError
	require.True(t, errors.As(err, &retErr))
}

func TestSearchMissingAPIKey(t *testing.T) {
	client := NewTavilyClient()

	_, err := client.Search(context.Background(), "query", 5)
	var retErr *RetrievalError
	require.True(t, errors.As(err, &retErr))
	assert.Contains(t, retErr.Message, "API key")
}

func TestSearchHTTPError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.Search(context.Background(), "query", 5)
	var retErr *RetrievalError
	require.True(t, errors.As(err, &retErr))
	assert.Equal(t, http.StatusForbidden, retErr.StatusCode)
}

func TestSearchMalformedResponse(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [{`))
	})

	_, err := client.Search(context.Background(), "query", 5)
	var retErr *RetrievalError
	require.True(t, errors.As(err, &retErr))
	assert.Contains(t, retErr.Message, "malformed")
}

func TestSearchContextCancellation(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "query", 5)
	require.Error(t, err)
}
