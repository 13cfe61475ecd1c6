package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/tripplanner/migrations"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the Postgres schema",
		Long:      "Applies, rolls back or lists the embedded goose migrations against DATABASE_URL. Defaults to up.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("migrate: DATABASE_URL is not set")
			}
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			p, db, err := gooseProvider(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			switch action {
			case "down":
				res, err := p.Down(cmd.Context())
				if err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				logger.Info("migration rolled back", "version", res.Source.Version, "duration", res.Duration)
			case "status":
				statuses, err := p.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("migrate status: %w", err)
				}
				out := cmd.OutOrStdout()
				for _, st := range statuses {
					applied := "pending"
					if !st.AppliedAt.IsZero() {
						applied = st.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(out, "%-6d %-10s %s\n", st.Source.Version, st.State, applied)
				}
			default:
				return migrateWith(cmd.Context(), p, logger)
			}
			return nil
		},
	}
	return cmd
}

// migrateUp applies every pending migration to the database at dsn.
func migrateUp(ctx context.Context, dsn string, logger *slog.Logger) error {
	p, db, err := gooseProvider(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrateWith(ctx, p, logger)
}

func migrateWith(ctx context.Context, p *goose.Provider, logger *slog.Logger) error {
	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	if len(results) == 0 {
		logger.Info("schema up to date")
	}
	return nil
}

func gooseProvider(ctx context.Context, dsn string) (*goose.Provider, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create goose provider: %w", err)
	}
	return p, db, nil
}
