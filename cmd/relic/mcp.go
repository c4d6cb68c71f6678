package main

import (
	"fmt"

	"github.com/panbanda/relic/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP (Model Context Protocol) server for LLM tool integration",
	Long: `Starts an MCP server over stdio transport that exposes relic's analysis
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "relic": {
        "command": "relic",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_source    Measure one in-memory document
  - analyze_paths     Triage every artifact under a set of paths
  - compare_reports   Diff two saved reports`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the MCP registry manifest",
	Args:  cobra.NoArgs,
	Annotations: map[string]string{
		skipConfig: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	mcpCmd.Flags().Bool("no-cache", false, "Disable the on-disk result cache")

	mcpCmd.AddCommand(mcpManifestCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd)
	if err != nil {
		return err
	}
	return mcpserver.NewServer(version, svc).Run(cmd.Context())
}
