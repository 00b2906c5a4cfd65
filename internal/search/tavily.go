package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// TavilyClient implements Client against the Tavily search API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	depth      string // "basic" or "advanced"
	httpClient *http.Client
}

// TavilyOption is a functional option for configuring a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithAPIKey sets the Tavily API key.
func WithAPIKey(key string) TavilyOption {
	return func(c *TavilyClient) { c.apiKey = key }
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithDepth sets Tavily's search depth parameter.
func WithDepth(depth string) TavilyOption {
	return func(c *TavilyClient) { c.depth = depth }
}

// WithHTTPClient overrides the HTTP client, e.g. to change the timeout.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(c *TavilyClient) { c.httpClient = client }
}

// NewTavilyClient creates a Tavily search client.
func NewTavilyClient(opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		baseURL:    defaultTavilyBaseURL,
		depth:      "advanced",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	Depth      string `json:"search_depth"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		Content string  `json:"content"`
		URL     string  `json:"url"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search posts one query to Tavily and returns at most maxResults hits.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &RetrievalError{Query: query, Message: "query must not be empty"}
	}
	if maxResults < 1 {
		return nil, &RetrievalError{Query: query, Message: fmt.Sprintf("maxResults must be >= 1, got %d", maxResults)}
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, &RetrievalError{Query: query, Message: "API key is missing"}
	}

	payload, err := json.Marshal(tavilyRequest{
		APIKey:     c.apiKey,
		Query:      query,
		Depth:      c.depth,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, &RetrievalError{Query: query, Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, &RetrievalError{Query: query, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetrievalError{Query: query, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &RetrievalError{
			Query:      query,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	var body tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &RetrievalError{Query: query, Message: "malformed response", Err: err}
	}

	hits := make([]Hit, 0, min(len(body.Results), maxResults))
	for i, r := range body.Results {
		if i >= maxResults {
			break
		}
		hits = append(hits, Hit{
			Title:   r.Title,
			Snippet: r.Content,
			URL:     r.URL,
			Rank:    i + 1,
		})
	}
	return hits, nil
}
