package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/rag-compare/internal/scenario"
	"github.com/giantswarm/rag-compare/internal/server"
)

func handleListScenarioSets(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	names, err := scenario.List(sc.ScenariosDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list scenario sets: %v", err)), nil
	}

	type setInfo struct {
		Name          string `json:"name"`
		Title         string `json:"title"`
		Description   string `json:"description"`
		Version       string `json:"version"`
		ScenarioCount int    `json:"scenario_count"`
	}

	var sets []setInfo
	for _, name := range names {
		set, err := scenario.Load(name, sc.ScenariosDir)
		if err != nil {
			continue
		}
		sets = append(sets, setInfo{
			Name:          name,
			Title:         set.Name,
			Description:   set.Description,
			Version:       set.Version,
			ScenarioCount: len(set.Scenarios),
		})
	}

	data, err := json.MarshalIndent(sets, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal scenario sets: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
