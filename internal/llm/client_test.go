package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientDefaults(t *testing.T) {
	client := NewOpenAIClient()
	assert.Empty(t, client.model)
	assert.Nil(t, client.temperature)
}

func TestNewOpenAIClientWithModel(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o"))
	assert.Equal(t, "gpt-4o", client.model)
}

func TestNewOpenAIClientWithAllOptions(t *testing.T) {
	client := NewOpenAIClient(
		WithBaseURL("https://api.example.com/v1"),
		WithAPIKey("sk-test"),
		WithModel("gpt-4o"),
		WithTemperature(0.5),
	)
	assert.Equal(t, "gpt-4o", client.model)
	require.NotNil(t, client.temperature)
	assert.Equal(t, 0.5, *client.temperature)
}

func TestApplyDefaultsUsesClientModel(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o"))

	req := client.applyDefaults(ChatRequest{Messages: UserMessage("hello")})
	assert.Equal(t, "gpt-4o", req.Model)
}

func TestApplyDefaultsRequestModelTakesPrecedence(t *testing.T) {
	client := NewOpenAIClient(WithModel("gpt-4o"))

	req := client.applyDefaults(ChatRequest{Model: "gpt-4o-mini", Messages: UserMessage("hello")})
	assert.Equal(t, "gpt-4o-mini", req.Model)
}

func TestApplyDefaultsUsesClientTemperature(t *testing.T) {
	client := NewOpenAIClient(WithTemperature(0.8))

	req := client.applyDefaults(ChatRequest{Model: "test", Messages: UserMessage("hello")})
	assert.Equal(t, 0.8, req.Temperature)
}

func TestBuildRequestMessageOrder(t *testing.T) {
	req := buildRequest(ChatRequest{
		Model:         "gpt-4o",
		SystemMessage: "You are helpful.",
		Messages: []Message{
			{Role: "user", Content: "first question"},
			{Role: "assistant", Content: "first answer"},
			{Role: "user", Content: "follow-up"},
		},
	})

	require.Len(t, req.Messages, 4)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "You are helpful.", req.Messages[0].Content)
	assert.Equal(t, "follow-up", req.Messages[3].Content)
}

func TestBuildRequestOmitsEmptySystemMessage(t *testing.T) {
	req := buildRequest(ChatRequest{
		Model:    "gpt-4o",
		Messages: UserMessage("hello"),
	})
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
}

func TestChatCompletionMapsUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(WithBaseURL(srv.URL), WithAPIKey("sk-test"))

	resp, err := client.ChatCompletion(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: UserMessage("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 7, resp.Usage.CompletionTokens)
	assert.Equal(t, 19, resp.Usage.TotalTokens)
}

func TestChatCompletionNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(WithBaseURL(srv.URL), WithAPIKey("sk-test"))

	_, err := client.ChatCompletion(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: UserMessage("hello"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestUserMessage(t *testing.T) {
	msgs := UserMessage("what is flu?")
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "what is flu?", msgs[0].Content)
}
