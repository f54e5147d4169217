package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/isoguide/internal/adapters/driving/mcp"
)

var mcpPort int

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ask tool to MCP clients",
	Long: `Exposes an "ask" tool that answers ISO 27001 questions from the
collection, and the collection summary as the isoguide://collection resource.

Without --port the server speaks JSON-RPC over stdin/stdout, which is what
desktop assistants launch:

  {
    "mcpServers": {
      "isoguide": {"command": "/path/to/isoguide", "args": ["mcp", "serve"]}
    }
  }

With --port it serves the streamable HTTP transport instead, e.g. for the
MCP Inspector:

  isoguide mcp serve --port 8765`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve over HTTP on this port (0 = stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	c, err := openContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck

	server, err := mcp.NewServer(&mcp.Ports{
		Ask:         c.Ask,
		DefaultTopK: c.Settings.Server.DefaultTopK,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpPort <= 0 {
		// stdout carries the protocol.
		return server.Run(ctx)
	}
	addr := fmt.Sprintf(":%d", mcpPort)
	cmd.PrintErrf("MCP listening on http://localhost%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
