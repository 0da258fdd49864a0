package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/okian/osmelo/internal/cli"
	"github.com/okian/osmelo/internal/config"
	"github.com/okian/osmelo/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(cli.ExitFailure)
	}

	// Logs go to stderr so that stdout only carries the result
	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(cli.ExitFailure)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	code := cli.Run(ctx, os.Args[1:], cfg, os.Stdout, os.Stderr)
	_ = logger.Sync()
	stop()
	os.Exit(code)
}
