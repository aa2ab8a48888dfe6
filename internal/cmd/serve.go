package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/docscore/docscore/internal/api"
	"github.com/docscore/docscore/internal/config"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scoring HTTP server",
	Long: `Start an HTTP server exposing the scoring pipeline:

  POST /v1/score   Score a normalized content snapshot
  GET  /healthz    Health check
  GET  /metrics    Prometheus metrics

The config file is watched; threshold and weight changes apply to new
requests without a restart.`,
	RunE:         runServe,
	SilenceUsage: true,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	eng, cleanup, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	server := api.NewServer(serveAddr, eng, logger)

	// Hot reload: rebuild the engine on config changes; in-flight
	// requests keep their snapshot.
	if cfgPath != "" {
		err := config.Watch(cfgPath, func(updated *config.Config) {
			cfg = updated
			if offline {
				cfg.Semantic.APIKey = ""
			}
			fresh, freshCleanup, err := newEngine(nil)
			if err != nil {
				logger.Error("config reload failed", "error", err)
				return
			}
			old := cleanup
			cleanup = freshCleanup
			server.SwapEngine(fresh)
			old()
			logger.Info("config reloaded", "path", cfgPath)
		})
		if err != nil {
			logger.Warn("config watch unavailable", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx)
}
