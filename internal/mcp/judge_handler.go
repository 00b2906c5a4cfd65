package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/rag-compare/internal/judge"
	"github.com/giantswarm/rag-compare/internal/server"
)

func handleJudgeResults(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.LLMClient == nil {
		return mcp.NewToolResultError("LLM client is not configured"), nil
	}

	args := request.GetArguments()

	resultsFile, _ := args["results_file"].(string)
	runID, _ := args["run_id"].(string)

	if resultsFile == "" && runID == "" {
		return mcp.NewToolResultError("either 'run_id' or 'results_file' is required"), nil
	}

	cfg := judge.Config{}
	if model, ok := args["judge_model"].(string); ok && model != "" {
		cfg.Model = model
	}
	if reps, ok := args["repetitions"].(float64); ok && reps > 0 {
		cfg.Repetitions = int(reps)
	}

	var path string
	var err error
	if runID != "" {
		runPath, resolveErr := resolveRunPath(sc.OutputDir, runID)
		if resolveErr != nil {
			return mcp.NewToolResultError(resolveErr.Error()), nil
		}
		path = filepath.Join(runPath, "results.json")
		if _, statErr := os.Stat(path); statErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, statErr)), nil
		}
	} else {
		path, err = resolveResultFilePath(sc.OutputDir, resultsFile)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	j := judge.New(sc.LLMClient, cfg)
	output, err := j.JudgeFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("judging failed: %v", err)), nil
	}

	scoresFile, err := judge.WriteScoreFile(output, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write scores: %v", err)), nil
	}

	result := map[string]interface{}{
		"scores_file": scoresFile,
		"summary":     output.Summary,
		"passes":      len(output.Runs),
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
