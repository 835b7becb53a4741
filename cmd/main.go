// Command tpi scores the built-in sample player and prints the player and
// TPI columns to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/tpi/internal/app"
	"github.com/okian/tpi/internal/config"
	"github.com/okian/tpi/internal/domain/model"
	"github.com/okian/tpi/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the driver and returns the process exit code. Logs go to
// stderr so stdout carries only the table.
func run(ctx context.Context, stdout, stderr io.Writer) int {
	if err := logger.Init(logger.WithWriter(stderr)); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return 1
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return 1
	}
	log, err := setupLogging(ctx, stderr, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return 1
	}

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithScoreWorkers(cfg.ScoreWorkers),
		app.WithMaxBatchRows(cfg.MaxBatchRows),
	)
	if err := svc.Start(ctx); err != nil {
		fmt.Fprintln(stderr, "failed to start service:", err)
		return 1
	}
	defer svc.Stop()

	scored, err := svc.Sample(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "scoring failed:", err)
		return 1
	}
	proj, err := scored.Select(model.ColPlayer, model.ColTPI)
	if err != nil {
		fmt.Fprintln(stderr, "scoring failed:", err)
		return 1
	}
	if err := proj.Render(stdout); err != nil {
		fmt.Fprintln(stderr, "write failed:", err)
		return 1
	}
	if _, err := io.WriteString(stdout, "\n"); err != nil {
		fmt.Fprintln(stderr, "write failed:", err)
		return 1
	}
	return 0
}

// setupLogging re-initializes logging with the configured format and level.
func setupLogging(ctx context.Context, stderr io.Writer, cfg *config.Config) (logger.Logger, error) {
	if err := logger.Init(logger.WithWriter(stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return log, nil
}
