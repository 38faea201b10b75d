package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aknsr/linecap/internal/config"
	"github.com/aknsr/linecap/internal/db"
	mcpserver "github.com/aknsr/linecap/internal/mcp"
	"github.com/aknsr/linecap/internal/records"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing record search tools for AI agents like Claude Code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		database, err := db.Open(filepath.Join(cfg.DataDir, "linecap.db"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		recs := records.NewStore(database)

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		count, err := recs.Count(context.Background())
		if err != nil {
			return fmt.Errorf("counting records: %w", err)
		}
		fmt.Fprintf(os.Stderr, "linecap MCP server started on stdio (records=%d)\n", count)

		return mcpserver.NewServer(recs).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
