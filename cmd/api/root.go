package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pkordes/tripplanner/internal/config"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tripplanner",
		Short:         "Trip planner API server",
		Long:          "Plans trips, packing lists and day-by-day timelines, with weather, places and routing lookups.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	cmd.AddCommand(newCountdownCommand())
	return cmd
}

// setup loads configuration and builds the JSON logger every command logs
// through. The logger becomes the slog default.
func setup(stderr io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		// Use plain slog before the logger is configured.
		slog.Error("configuration error", "error", err)
		return config.Config{}, nil, err
	}

	// log/slog JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
