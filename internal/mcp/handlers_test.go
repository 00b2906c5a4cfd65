package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/rag-compare/internal/server"
	"github.com/giantswarm/rag-compare/internal/testutil"
)

func TestHandleListScenarioSets(t *testing.T) {
	sc := &server.ServerContext{
		ScenariosDir: "",
	}

	result, err := handleListScenarioSets(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Should return at least the embedded domain-consult-v1 set.
	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "domain-consult-v1")

	var sets []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content.Text), &sets))
	assert.GreaterOrEqual(t, len(sets), 1)

	s := sets[0]
	assert.Contains(t, s, "name")
	assert.Contains(t, s, "title")
	assert.Contains(t, s, "description")
	assert.Contains(t, s, "version")
	assert.Contains(t, s, "scenario_count")
}

func TestHandleRunExperimentNoClient(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"scenario_set": "domain-consult-v1",
	}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "LLM client is not configured")
}

func TestHandleRunExperimentMissingRequired(t *testing.T) {
	sc := &server.ServerContext{LLMClient: &testutil.MockLLMClient{}}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "scenario_set is required")
}

func TestHandleRunExperimentInvalidSet(t *testing.T) {
	sc := &server.ServerContext{LLMClient: &testutil.MockLLMClient{}}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"scenario_set": "nonexistent-set",
	}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "failed to load scenario set")
}

func TestHandleRunExperimentInvalidStrategy(t *testing.T) {
	sc := &server.ServerContext{LLMClient: &testutil.MockLLMClient{}}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"scenario_set": "domain-consult-v1",
		"strategies":   "made-up-strategy",
	}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "invalid strategies")
}

func TestHandleRunExperimentEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	sc := &server.ServerContext{
		LLMClient: &testutil.MockLLMClient{
			DefaultResponse: "a reasonably detailed answer about the question being asked",
		},
		OutputDir: tmpDir,
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"scenario_set": "domain-consult-v1",
		"strategies":   "llm-only",
		"model":        "test-model",
	}

	result, err := handleRunExperiment(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content.Text), &summary))
	assert.Contains(t, summary, "run_id")
	assert.Contains(t, summary, "results_file")
	assert.Equal(t, "test-model", summary["model"])
}

func TestHandleJudgeResultsNoClient(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"results_file": "some-file.json",
	}

	result, err := handleJudgeResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "LLM client is not configured")
}

func TestHandleJudgeResultsMissingRequired(t *testing.T) {
	sc := &server.ServerContext{LLMClient: &testutil.MockLLMClient{}}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleJudgeResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "either 'run_id' or 'results_file' is required")
}

func TestHandleJudgeResultsPathTraversal(t *testing.T) {
	sc := &server.ServerContext{
		LLMClient: &testutil.MockLLMClient{},
		OutputDir: t.TempDir(),
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"run_id": "..",
	}

	result, err := handleJudgeResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "path traversal is not allowed")
}

func TestHandleJudgeResultsEscapingFile(t *testing.T) {
	sc := &server.ServerContext{
		LLMClient: &testutil.MockLLMClient{},
		OutputDir: t.TempDir(),
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"results_file": "../outside.json",
	}

	result, err := handleJudgeResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "path must be within output directory")
}

func TestHandleGetResultsEmptyDir(t *testing.T) {
	sc := &server.ServerContext{
		OutputDir: t.TempDir(),
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Equal(t, "[]", content.Text)
}

func TestHandleGetResultsNonexistentDir(t *testing.T) {
	sc := &server.ServerContext{
		OutputDir: "/nonexistent/directory",
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Equal(t, "[]", content.Text)
}

func TestHandleGetResultsListsRuns(t *testing.T) {
	tmpDir := t.TempDir()

	runDir := filepath.Join(tmpDir, "test-run")
	require.NoError(t, os.MkdirAll(runDir, 0o755))
	doc := `{"id": "test-run", "set": "domain-consult-v1", "results": []}`
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "results.json"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "results_scores.json"), []byte(`{}`), 0o644))

	// Directories without a results document are not runs.
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "not-a-run"), 0o755))

	sc := &server.ServerContext{
		OutputDir: tmpDir,
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	var runs []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content.Text), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "test-run", runs[0]["id"])
	assert.NotContains(t, runs[0], "results", "listing returns metadata only")
	assert.Equal(t, []interface{}{"results_scores.json"}, runs[0]["score_files"])
}

func TestHandleGetResultsSpecificRun(t *testing.T) {
	tmpDir := t.TempDir()
	runDir := filepath.Join(tmpDir, "test-run")
	require.NoError(t, os.MkdirAll(runDir, 0o755))

	doc := `{"id": "test-run", "set": "domain-consult-v1", "results": []}`
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "results.json"), []byte(doc), 0o644))

	sc := &server.ServerContext{
		OutputDir: tmpDir,
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"run_id": "test-run",
	}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "test-run")
}

func TestResolveRunPathRejectsSeparators(t *testing.T) {
	_, err := resolveRunPath(t.TempDir(), "a/b")
	assert.Error(t, err)
}
