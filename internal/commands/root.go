// Package commands implements the memograph CLI: an MCP server command
// plus one subcommand per knowledge-graph operation for direct use and
// scripting. Every operation prints the same JSON result envelope the MCP
// tools return.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memograph/memograph/internal/graph"
	"github.com/memograph/memograph/internal/tools"
)

var memoryFile string

var rootCmd = &cobra.Command{
	Use:   "memograph",
	Short: "Persistent knowledge-graph memory",
	Long: `memograph - a persistent knowledge graph of entities, relations,
and observations, stored as one JSON record per line in a local file.

The memory file is resolved from --file, then the MEMORY_FILE_PATH
environment variable, then ~/.memograph/graph.jsonl.

Examples:
  # Run as an MCP server over stdio
  memograph serve

  # Work with the graph directly
  memograph create-entities '[{"name":"Alice","entityType":"person"}]'
  memograph add-observations Alice "met at conf"
  memograph search-nodes conf
  memograph read-graph`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&memoryFile, "file", "",
		"memory file path (default $MEMORY_FILE_PATH or ~/.memograph/graph.jsonl)")
}

// openStore resolves the memory file path and returns a store for it.
// Precedence: --file flag, MEMORY_FILE_PATH, per-user default.
func openStore() *graph.Store {
	path := memoryFile
	if path == "" {
		path = os.Getenv("MEMORY_FILE_PATH")
	}
	if path == "" {
		path = graph.DefaultPath()
	}
	return graph.NewStore(path)
}

// printResult prints the result envelope for an operation. On error the
// error envelope goes to stdout and the error is also returned so the
// process exits nonzero.
func printResult(tool string, fields map[string]any, err error) error {
	var envelope map[string]any
	if err != nil {
		envelope = tools.ErrorEnvelope(tool, err)
	} else {
		envelope = tools.Envelope(tool, fields)
	}
	data, merr := json.MarshalIndent(envelope, "", "  ")
	if merr != nil {
		return fmt.Errorf("marshal result: %w", merr)
	}
	fmt.Println(string(data))
	return err
}
