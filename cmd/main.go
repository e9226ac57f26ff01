package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/reelsync/internal/services"
	"github.com/desertthunder/reelsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	if err := config.ApplyEnv(".env"); err != nil {
		logger.Fatalf("failed to apply environment: %v", err)
	}

	client := services.NewClient(config.API.BaseURL, config.API.Token, config.API.Timeout)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Client:     client,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "reelsync",
		Usage:    "Feed playback, engagement and notification sync from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrNotAuthenticated):
			logger.Fatal("not authenticated: set api.token and session.user_id in config.toml or REEL_API_TOKEN")
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
