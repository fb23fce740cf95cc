package commands

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/memograph/memograph/internal/server"
)

var (
	serveTransport string
	servePort      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio or HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := openStore()
		srv := server.New(store)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		switch serveTransport {
		case "stdio":
			log.Printf("memograph MCP server starting (stdio), memory file: %s", store.Path())
			return srv.Run(ctx, &mcp.StdioTransport{})
		case "http":
			addr := ":" + servePort
			handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
				return srv
			}, nil)
			log.Printf("memograph MCP server listening on %s, memory file: %s", addr, store.Path())
			return http.ListenAndServe(addr, handler)
		default:
			return fmt.Errorf("unknown transport: %s (use stdio or http)", serveTransport)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "transport mode: stdio or http")
	serveCmd.Flags().StringVar(&servePort, "port", "8081", "HTTP port (only used with --transport http)")
	rootCmd.AddCommand(serveCmd)
}
