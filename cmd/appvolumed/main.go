package main

import (
	"context"
	"fmt"
	"os"

	"per-app-volume/internal/app"
	"per-app-volume/internal/cli"
	"per-app-volume/internal/output"
	"per-app-volume/internal/platform/config"
	"per-app-volume/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	_ = config.LoadEnv()

	cfg, err := config.Load(config.FilePath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr so that "streams --json" output stays parseable.
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	application := app.New(cfg, log)
	defer application.Close()

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
	}

	return cli.NewRootCmd(deps).ExecuteContext(context.Background())
}
