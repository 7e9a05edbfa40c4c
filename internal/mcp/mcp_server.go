// Package mcp exposes analysis runs and their results as Model Context
// Protocol tools.
package mcp

import (
	"context"

	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Hotspotter MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, client contract.GitClient) *server.MCPServer {
	s := server.NewMCPServer(
		"Hotspotter Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		client:  client,
	}

	runID := mcp.WithString("run_id", mcp.Description("Analysis run id, or 'latest' for the newest run."), mcp.Required())
	limit := mcp.WithNumber("limit", mcp.Description("Limit the number of results returned."))

	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Mine the git history of a repository and store knowledge, ownership, author, trend and file results as a new run."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithString("start", mcp.Description("Only commits after this date (YYYY-MM-DD, RFC3339 or 'N months ago').")),
		mcp.WithString("end", mcp.Description("Only commits before this date.")),
	), h.handleAnalyzeRepository)

	s.AddTool(mcp.NewTool("list_analyses",
		mcp.WithDescription("List stored analysis runs, newest first."),
	), h.handleListAnalyses)

	s.AddTool(mcp.NewTool("get_file_knowledge",
		mcp.WithDescription("Files ranked by knowledge loss: the share of their lines written by authors who are no longer active."),
		runID, limit,
	), h.handleGetFileKnowledge)

	s.AddTool(mcp.NewTool("get_file_ownership",
		mcp.WithDescription("Files with their contributions and co-equal lead authors, most changed first."),
		runID, limit,
	), h.handleGetFileOwnership)

	s.AddTool(mcp.NewTool("get_author_statistics",
		mcp.WithDescription("Per-author activity and lead-author counts, most commits first."),
		runID, limit,
	), h.handleGetAuthorStatistics)

	s.AddTool(mcp.NewTool("get_activity_trends",
		mcp.WithDescription("Daily commits with unique and trailing-window active author counts."),
		runID,
	), h.handleGetActivityTrends)

	s.AddTool(mcp.NewTool("get_repository_structure",
		mcp.WithDescription("Directory tree of a completed run with per-file activity and size."),
		runID,
	), h.handleGetRepositoryStructure)

	return s
}

// StartMCPServer starts the Hotspotter MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, client contract.GitClient) error {
	s := NewMCPServer(baseCfg, mgr, client)
	return server.ServeStdio(s)
}
