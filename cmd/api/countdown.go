package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripplanner/internal/countdown"
	"github.com/pkordes/tripplanner/internal/domain"
	"github.com/pkordes/tripplanner/internal/view"
)

func newCountdownCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "countdown",
		Short: "Print the countdown to the nearest upcoming trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeQuietly(logger, a)

			out := cmd.OutOrStdout()
			line := func(now time.Time) string { return countdownLine(a.trips.List(), now) }
			emit := func(s string) error {
				_, err := fmt.Fprintln(out, s)
				return err
			}
			if !watch {
				return emit(line(a.trips.Now()))
			}

			err = countdown.Watch(ctx, clockwork.NewRealClock(), cfg.CountdownInterval, line, emit, nil)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing on every countdown interval until interrupted")
	return cmd
}

func countdownLine(trips []domain.Trip, now time.Time) string {
	t, ok := view.NearestUpcomingTrip(trips, now)
	if !ok {
		return "no upcoming trip"
	}
	return fmt.Sprintf("%s (%s, %s): %s", t.Title, t.Destination, t.StartDate.Format(time.DateOnly), view.CountdownLabel(t.StartDate, now))
}
