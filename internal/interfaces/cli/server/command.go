package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"bizhub/internal/infrastructure/database"
	"bizhub/internal/infrastructure/migration"
	"bizhub/internal/interfaces/cli/bootstrap"
)

var autoMigrate bool

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the BizHub HTTP server. Every request is routed to its tenant's store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(*flags)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply pending directory migrations on startup")

	return cmd
}

func run(flags bootstrap.Flags) error {
	app, err := bootstrap.NewApp(flags)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	log := app.Log

	log.Infow("starting server",
		"environment", flags.Env,
		"mode", cfg.Server.Mode,
		"auto-migrate", autoMigrate,
	)

	if autoMigrate {
		result, err := migration.NewRunner(migration.SetDirectory, log).Up(context.Background(), database.Get())
		if err != nil {
			return fmt.Errorf("directory migration failed: %w", err)
		}
		log.Infow("directory migrations applied", "from", result.FromVersion, "to", result.ToVersion, "applied", result.Applied)
	}

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	app.Container.SetupRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Container.StartBackground(ctx); err != nil {
		return fmt.Errorf("failed to start background services: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      app.Container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}
