package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/custodia-labs/isoguide/internal/adapters/driving/http"
	"github.com/custodia-labs/isoguide/internal/adapters/driving/mcp"
	"github.com/custodia-labs/isoguide/internal/logger"
)

var (
	serveAddr    string
	serveMCPPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the question-answering API over HTTP:

  GET  /         banner
  GET  /healthz  collection status
  POST /ask      {"question": "...", "top_k": 3}

Use --mcp-port to serve the MCP endpoint alongside the API. The server
shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().IntVar(&serveMCPPort, "mcp-port", 0, "also serve MCP over HTTP on this port (0 = off)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	c, err := openContainer(cmd)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := serveAddr
	if addr == "" {
		addr = c.Settings.Server.Addr
	}

	api, err := httpapi.NewServer(c.Ask, httpapi.Config{
		Addr:        addr,
		DefaultTopK: c.Settings.Server.DefaultTopK,
		CORSOrigins: c.Settings.Server.CORSOrigins,
	})
	if err != nil {
		return err
	}

	var mcpServer *mcp.Server
	if serveMCPPort > 0 {
		mcpServer, err = mcp.NewServer(&mcp.Ports{
			Ask:         c.Ask,
			DefaultTopK: c.Settings.Server.DefaultTopK,
		})
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(gctx)
	})
	cmd.Printf("%s\nListening on %s\n", httpapi.Banner, addr)

	if mcpServer != nil {
		mcpAddr := fmt.Sprintf(":%d", serveMCPPort)
		g.Go(func() error {
			return mcpServer.RunHTTP(gctx, mcpAddr)
		})
		cmd.Printf("MCP listening on http://localhost%s\n", mcpAddr)
	}

	return g.Wait()
}
