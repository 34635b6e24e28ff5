package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/csvgrid/csvgrid/internal/config"
	"github.com/csvgrid/csvgrid/internal/core"
	"github.com/csvgrid/csvgrid/internal/logging"
	"github.com/csvgrid/csvgrid/internal/web"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the grid web server",
	Long: `Start the HTTP server. Uploaded files live in memory for the length
of a session; nothing is persisted. Configuration comes from defaults, an
optional YAML file (--config) and environment variables, in that order.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"filter_debounce", cfg.Table.FilterDebounce,
		"session_ttl", cfg.Table.SessionTTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	service := core.NewService(core.Options{
		MaxFileSize:       cfg.Upload.MaxFileSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		DefaultDelimiter:  cfg.Upload.Delimiter(),
		FilterDebounce:    cfg.Table.FilterDebounce,
		SessionTTL:        cfg.Table.SessionTTL,
	})

	server := web.NewServer(service, cfg)

	// Cancellable context for the session janitor
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	go service.StartJanitor(jobCtx)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
	return nil
}
