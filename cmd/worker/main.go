package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizhub/internal/interfaces/cli/bootstrap"
	"bizhub/internal/shared/constants"
)

// The worker runs the periodic jobs without serving HTTP: idle session cleanup
// across every active tenant and tenant store handle sweeping.
func main() {
	env := constants.EnvDevelopment
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	app, err := bootstrap.NewApp(bootstrap.Flags{Env: env, ConfigPath: os.Getenv("BIZHUB_CONFIG")})
	if err != nil {
		fmt.Printf("failed to start worker: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	log := app.Log
	log.Infow("starting session worker",
		"environment", env,
		"cleanup_interval_minutes", app.Config.Session.CleanupIntervalMinutes,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run once at startup so a restarted worker does not wait a full interval.
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	if count, err := app.Container.CleanupJob().Execute(runCtx); err != nil {
		log.Errorw("initial session cleanup failed", "error", err)
	} else {
		log.Infow("initial session cleanup finished", "logged_out", count)
	}
	cancel()

	if err := app.Container.StartBackground(ctx); err != nil {
		log.Errorw("failed to start scheduler", "error", err)
		return
	}

	<-ctx.Done()
	log.Infow("worker stopped")
}
