package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/hotspotter/core"
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	client  contract.GitClient
}

func (h *toolHandler) results() *core.Results {
	return core.NewResults(h.mgr.GetResultStores())
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	now := time.Now()

	repoPath := request.GetString("repo_path", "")
	if repoPath == "" {
		repoPath = "."
	}
	root, err := h.client.GetRepoRoot(ctx, repoPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid repo_path: %v", err)), nil
	}
	cfg.RepoPath = root

	if s := request.GetString("start", ""); s != "" {
		if cfg.StartTime, err = contract.ParseDate(s, now); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
		}
	}
	if e := request.GetString("end", ""); e != "" {
		if cfg.EndTime, err = contract.ParseDate(e, now); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid end: %v", err)), nil
		}
		cfg.ReferenceDate = contract.TruncateDay(cfg.EndTime)
	}
	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return mcp.NewToolResultError("start cannot be after end"), nil
	}

	runner := core.NewLocalRunner(h.client, h.mgr.GetResultStores(), cfg.Workers)
	info, err := runner.Run(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(info)
}

func (h *toolHandler) handleListAnalyses(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runs, err := h.results().Runs(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list analyses: %v", err)), nil
	}
	return jsonResult(runs)
}

func (h *toolHandler) handleGetFileKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return limitedQuery(ctx, h, request, h.results().Knowledge)
}

func (h *toolHandler) handleGetFileOwnership(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return limitedQuery(ctx, h, request, h.results().Ownership)
}

func (h *toolHandler) handleGetAuthorStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return limitedQuery(ctx, h, request, h.results().Authors)
}

func (h *toolHandler) handleGetActivityTrends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, errResult := requireRunID(request)
	if errResult != nil {
		return errResult, nil
	}
	rows, err := h.results().Trends(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return jsonResult(rows)
}

func (h *toolHandler) handleGetRepositoryStructure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, errResult := requireRunID(request)
	if errResult != nil {
		return errResult, nil
	}
	resp, err := h.results().Structure(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return jsonResult(resp)
}

// limitedQuery runs a per-run row query and caps it at the requested limit,
// or the configured one when none is given.
func limitedQuery[T any](ctx context.Context, h *toolHandler, request mcp.CallToolRequest, query func(context.Context, string) ([]T, error)) (*mcp.CallToolResult, error) {
	runID, errResult := requireRunID(request)
	if errResult != nil {
		return errResult, nil
	}
	limit := request.GetInt("limit", h.baseCfg.ResultLimit)
	if limit <= 0 || limit > contract.MaxResultLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be greater than 0 and cannot exceed %d", contract.MaxResultLimit)), nil
	}
	rows, err := query(ctx, runID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return jsonResult(core.Limit(rows, limit))
}

func requireRunID(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	runID := request.GetString("run_id", "")
	if runID == "" {
		return "", mcp.NewToolResultError("run_id is required")
	}
	return runID, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
