package cmd

import (
	"github.com/huangsam/hotspotter/internal/contract"
	"github.com/huangsam/hotspotter/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Hotspotter MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents run analyses and query stored results.`,
	// Logs already go to stderr, which keeps stdout for the protocol.
	PreRunE: querySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager, contract.NewLocalGitClient())
	},
}
