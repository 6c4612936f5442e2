package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthmitra/sms-ingest/internal/api/handlers"
	"github.com/arthmitra/sms-ingest/internal/domain"
	"github.com/arthmitra/sms-ingest/internal/jobs"
	"github.com/arthmitra/sms-ingest/internal/jobs/inmemory"
	"github.com/arthmitra/sms-ingest/internal/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scan worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.WithContext(cmd.Context(), log)

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			jobStore := inmemory.NewStore()
			queue := inmemory.NewQueue(16, jobStore)

			workerCtx, cancelWorker := context.WithCancel(ctx)
			defer cancelWorker()

			handler := func(ctx context.Context, job *jobs.ScanJob) (domain.ScanResult, error) {
				log.Info().Str("job_id", job.JobID).Str("user_id", job.UserID).Msg("Processing scan job")
				return a.scanner.Run(ctx)
			}
			if err := queue.Start(workerCtx, handler); err != nil {
				return err
			}

			router := handlers.NewRouter(
				handlers.NewScanHandler(queue, jobStore, cfg.User.ID, log),
				handlers.NewProvidersHandler(a.source, log),
				handlers.NewStateHandler(a.state, log),
				log,
			)

			server := &http.Server{
				Addr:         ":" + cfg.HTTP.Port,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.HTTP.Port).Msg("Starting API server")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errChan <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errChan:
				return err
			case sig := <-quit:
				log.Info().Str("signal", sig.String()).Msg("Shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}

			// Let the in-flight scan finish before the backends are closed.
			queue.Close()

			log.Info().Msg("Server stopped")
			return nil
		},
	}
}
