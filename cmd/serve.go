package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/config"
	"github.com/aknsr/linecap/internal/db"
	"github.com/aknsr/linecap/internal/events"
	"github.com/aknsr/linecap/internal/extract"
	"github.com/aknsr/linecap/internal/line"
	"github.com/aknsr/linecap/internal/llm"
	"github.com/aknsr/linecap/internal/records"
	"github.com/aknsr/linecap/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LINE webhook server",
	Long:  `Starts the linecap HTTP server: the LINE webhook endpoint, the records read API and the live event feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, "linecap.db")
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		recs := records.NewStore(database)

		provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
		if cfg.RateLimitRPM > 0 {
			provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
		}
		extractor := extract.New(provider, cfg.Model)

		hub := events.NewHub()
		sessions := capture.NewStore()
		engine := capture.NewEngine(sessions, extractor, recs, hub)
		router := capture.NewRouter(engine, cfg.Line.BotNames)

		client := line.NewClient(cfg.Line.ChannelToken)
		webhook := line.NewWebhookHandler(router, client, cfg.Line.ChannelSecret)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: cfg.AllowAllOrigins,
		}, webhook, sessions, recs, hub)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go sessions.RunSweeper(ctx)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "linecap v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  Provider: %s (%s)\n", cfg.Provider, cfg.Model)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
