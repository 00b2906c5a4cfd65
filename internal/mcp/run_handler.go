package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/rag-compare/internal/runner"
	"github.com/giantswarm/rag-compare/internal/scenario"
	"github.com/giantswarm/rag-compare/internal/server"
	"github.com/giantswarm/rag-compare/internal/strategy"
)

func handleRunExperiment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.LLMClient == nil {
		return mcp.NewToolResultError("LLM client is not configured"), nil
	}

	args := request.GetArguments()

	setName, ok := args["scenario_set"].(string)
	if !ok || setName == "" {
		return mcp.NewToolResultError("scenario_set is required"), nil
	}

	set, err := scenario.Load(setName, sc.ScenariosDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load scenario set: %v", err)), nil
	}

	var names []string
	if raw, ok := args["strategies"].(string); ok && raw != "" {
		names = strings.Split(raw, ",")
	}
	strategies, err := strategy.Parse(names)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid strategies: %v", err)), nil
	}

	cfg := sc.RunnerConfig
	if model, ok := args["model"].(string); ok && model != "" {
		cfg.Model = model
	}
	if temp, ok := args["temperature"].(float64); ok {
		cfg.Temperature = temp
	}
	if c, ok := args["concurrency"].(float64); ok && c >= 1 {
		cfg.Concurrency = int(c)
	}

	r := runner.NewRunner(sc.LLMClient, sc.SearchClient, sc.OutputDir, cfg)
	run, err := r.Run(ctx, set, strategies)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("experiment run failed: %v", err)), nil
	}

	summaries := make([]map[string]interface{}, 0, len(strategies))
	for _, s := range run.Summarize() {
		summaries = append(summaries, map[string]interface{}{
			"strategy":   s.Strategy,
			"pairs":      s.Pairs,
			"failures":   s.Failures,
			"mean_score": s.MeanScore,
		})
	}

	summary := map[string]interface{}{
		"run_id":       run.ID,
		"set":          run.Set,
		"model":        run.Model,
		"scenarios":    run.ScenarioCount,
		"results_file": run.ResultsFile,
		"duration_s":   run.DurationSeconds,
		"strategies":   summaries,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
