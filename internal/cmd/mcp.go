package cmd

import (
	"github.com/spf13/cobra"

	"github.com/docscore/docscore/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server (stdio transport)",
	Long: `Expose scoring as MCP tools so AI coding tools can score
documentation pages in place.

Tools:
  score_page   Score markdown passed inline
  score_url    Fetch a URL and score it

Add to your MCP config:

  {
    "mcpServers": {
      "docscore": {
        "command": "docscore",
        "args": ["mcp"]
      }
    }
  }`,
	RunE:         runMCP,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(mcpCmd)
}

func runMCP(_ *cobra.Command, _ []string) error {
	eng, cleanup, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	return mcpserver.ServeStdio(mcpserver.New(eng))
}
