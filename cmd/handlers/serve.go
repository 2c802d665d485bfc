package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"contentstudio/internal/config"
	"contentstudio/internal/fetch"
	"contentstudio/internal/logger"
	"contentstudio/internal/server"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port   int
		host   string
		sample bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the Content Studio HTTP API.

The server holds one studio session: the selected content kind, the forms, the
current result and its refinement. Clients drive it through the /api routes
and read the shared history under /api/history.

Examples:
  # Start server on the configured address (default 127.0.0.1:8080)
  contentstudio serve

  # Start on a custom port with canned replies
  contentstudio serve --port 3000 --sample`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, host, sample)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8080)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 127.0.0.1)")
	cmd.Flags().BoolVar(&sample, "sample", false, "Answer with canned sample replies instead of a live agent")

	return cmd
}

func runServe(ctx context.Context, port int, host string, sample bool) error {
	log := logger.Get()
	cfg := config.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	caller, err := newCaller(ctx, cfg, sample)
	if err != nil {
		return err
	}

	hist, closeHist, err := openHistory(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer closeHist()
	log.Info().Str("backend", cfg.History.Backend).Int("entries", hist.Len()).Msg("History loaded")

	srv := server.New(newStudio(caller, hist), hist, fetch.NewFetcher(nil), serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		_, _ = successColor.Fprintf(os.Stderr, "Server listening on http://%s:%d\n", serverCfg.Host, serverCfg.Port)
		_, _ = infoColor.Fprintln(os.Stderr, "Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info().Msg("Server stopped successfully")
	}

	return nil
}
