// Package mcp exposes the experiment harness over the Model Context
// Protocol: listing scenario sets, launching runs, fetching results and
// judging them.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/rag-compare/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("list_scenario_sets",
		mcp.WithDescription("List available scenario sets with metadata"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListScenarioSets(ctx, request, sc)
	})

	runTool := mcp.NewTool("run_experiment",
		mcp.WithDescription("Run a scenario set under the selected prompting strategies and persist the results"),
		mcp.WithString("scenario_set",
			mcp.Required(),
			mcp.Description("Name of the scenario set to run (e.g. 'domain-consult-v1')"),
		),
		mcp.WithString("strategies",
			mcp.Description("Comma-separated strategy names (default: all four)"),
		),
		mcp.WithString("model",
			mcp.Description("Model name for generation (overrides server default)"),
		),
		mcp.WithNumber("temperature",
			mcp.Description("Temperature for generation (default: server config)"),
		),
		mcp.WithNumber("concurrency",
			mcp.Description("Worker pool size (default: 1)"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunExperiment(ctx, request, sc)
	})

	resultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve results and judge scores for past experiment runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(resultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	judgeTool := mcp.NewTool("judge_results",
		mcp.WithDescription("Re-score a completed experiment run using an LLM as judge"),
		mcp.WithString("run_id",
			mcp.Description("Run ID whose results.json should be judged"),
		),
		mcp.WithString("results_file",
			mcp.Description("Path to a results file to judge (alternative to run_id)"),
		),
		mcp.WithString("judge_model",
			mcp.Description("Model to use for judging (default: from config)"),
		),
		mcp.WithNumber("repetitions",
			mcp.Description("Number of judging repetitions for confidence (default: 3)"),
		),
	)
	s.AddTool(judgeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleJudgeResults(ctx, request, sc)
	})

	return nil
}
