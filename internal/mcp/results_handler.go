package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/rag-compare/internal/server"
)

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID, _ := args["run_id"].(string)

	if runID != "" {
		return getSpecificRun(sc.OutputDir, runID)
	}
	return listRuns(sc.OutputDir)
}

func listRuns(outputDir string) (*mcp.CallToolResult, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read results directory: %v", err)), nil
	}

	// An empty directory must list as [], not null.
	runs := []map[string]interface{}{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		resultsPath := filepath.Join(outputDir, e.Name(), "results.json")
		data, err := os.ReadFile(resultsPath)
		if err != nil {
			continue
		}

		var doc map[string]interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}

		// Listing returns run metadata only; the per-pair results stay
		// behind the run_id lookup.
		delete(doc, "results")
		doc["score_files"] = scoreFileNames(filepath.Join(outputDir, e.Name()))
		runs = append(runs, doc)
	}

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getSpecificRun(outputDir, runID string) (*mcp.CallToolResult, error) {
	runPath, err := resolveRunPath(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := os.ReadFile(filepath.Join(runPath, "results.json"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse run document: %v", err)), nil
	}

	scores := make(map[string]interface{})
	for _, name := range scoreFileNames(runPath) {
		scoreData, err := os.ReadFile(filepath.Join(runPath, name))
		if err != nil {
			continue
		}
		var scoreObj interface{}
		if json.Unmarshal(scoreData, &scoreObj) == nil {
			scores[name] = scoreObj
		}
	}
	if len(scores) > 0 {
		doc["scores"] = scores
	}

	result, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}

func scoreFileNames(runPath string) []string {
	files, _ := os.ReadDir(runPath)
	names := []string{}
	for _, f := range files {
		if strings.HasSuffix(f.Name(), "_scores.json") {
			names = append(names, f.Name())
		}
	}
	return names
}
