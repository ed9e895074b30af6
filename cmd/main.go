package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tally/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tally",
		Usage:    "Shop records: products, customer debts, and sales",
		Version:  "0.5.0",
		Commands: runner.register(),
	}

	err := app.Run(context.Background(), os.Args)
	runner.Shutdown()

	if err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
