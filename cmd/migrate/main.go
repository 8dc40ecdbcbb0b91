// Command migrate manages the Postgres schema behind the latest-batch store.
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"alpha-signal/internal/config"
	"alpha-signal/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	loadConfig = config.Load
	openPool   = pgxpool.New
)

type migration struct {
	version int64
	name    string
	up      string
	down    string
}

func (m migration) String() string {
	return fmt.Sprintf("%04d_%s", m.version, m.name)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
}

func newRootCmd() *cobra.Command {
	var pool *pgxpool.Pool
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the alpha-signal schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
			if strings.TrimSpace(cfg.Storage.DatabaseURL) == "" {
				return errors.New("DATABASE_URL is required")
			}
			pool, err = openPool(cmd.Context(), cfg.Storage.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to postgres: %w", err)
			}
			_, err = pool.Exec(cmd.Context(), `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    BIGINT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if pool != nil {
				pool.Close()
			}
		},
	}

	// state loads the embedded migrations and the versions already applied.
	state := func(ctx context.Context) ([]migration, map[int64]bool, error) {
		ms, err := loadMigrations(migrationsFS)
		if err != nil {
			return nil, nil, err
		}
		applied, err := appliedVersions(ctx, pool)
		return ms, applied, err
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms, applied, err := state(cmd.Context())
			if err != nil {
				return err
			}
			todo := pending(ms, applied)
			for _, m := range todo {
				if err := step(cmd.Context(), pool, m, true); err != nil {
					return err
				}
				log.Info().Str("migration", m.String()).Msg("applied")
			}
			log.Info().Int("applied", len(todo)).Msg("schema up to date")
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the most recent migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			ms, applied, err := state(cmd.Context())
			if err != nil {
				return err
			}
			plan, err := rollbackPlan(ms, applied, steps)
			if err != nil {
				return err
			}
			for _, m := range plan {
				if err := step(cmd.Context(), pool, m, false); err != nil {
					return err
				}
				log.Info().Str("migration", m.String()).Msg("rolled back")
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms, applied, err := state(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range ms {
				mark := "pending"
				if applied[m.version] {
					mark = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-32s %s\n", m, mark)
			}
			return nil
		},
	})
	return root
}

// loadMigrations reads NNNN_name.up.sql / NNNN_name.down.sql pairs from
// the migrations directory of fsys, sorted by version.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int64]*migration)
	for _, e := range entries {
		file := e.Name()
		stem, ok := strings.CutSuffix(file, ".sql")
		dot := strings.LastIndexByte(stem, '.')
		if !ok || dot < 0 {
			return nil, fmt.Errorf("invalid migration filename: %s", file)
		}
		direction := stem[dot+1:]
		num, name, ok := strings.Cut(stem[:dot], "_")
		version, err := strconv.ParseInt(num, 10, 64)
		if !ok || err != nil || name == "" || (direction != "up" && direction != "down") {
			return nil, fmt.Errorf("invalid migration filename: %s", file)
		}

		body, err := fs.ReadFile(fsys, path.Join("migrations", file))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		sql := strings.TrimSpace(string(body))
		if sql == "" {
			return nil, fmt.Errorf("empty migration file: %s", file)
		}

		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: name}
			byVersion[version] = m
		}
		if m.name != name {
			return nil, fmt.Errorf("version %d has two names: %s and %s", version, m.name, name)
		}
		if direction == "up" {
			m.up = sql
		} else {
			m.down = sql
		}
	}
	if len(byVersion) == 0 {
		return nil, errors.New("no migration files found")
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.up == "" || m.down == "" {
			return nil, fmt.Errorf("%s needs both an up and a down file", m)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// pending returns the migrations not yet applied, oldest first.
func pending(ms []migration, applied map[int64]bool) []migration {
	var out []migration
	for _, m := range ms {
		if !applied[m.version] {
			out = append(out, m)
		}
	}
	return out
}

// rollbackPlan picks up to steps applied migrations, newest first. An
// applied version with no embedded source cannot be rolled back.
func rollbackPlan(ms []migration, applied map[int64]bool, steps int) ([]migration, error) {
	known := make(map[int64]bool, len(ms))
	for _, m := range ms {
		known[m.version] = true
	}
	for v := range applied {
		if !known[v] {
			return nil, fmt.Errorf("applied version %d has no migration source", v)
		}
	}

	var plan []migration
	for i := len(ms) - 1; i >= 0 && len(plan) < steps; i-- {
		if applied[ms[i].version] {
			plan = append(plan, ms[i])
		}
	}
	return plan, nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[int64]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	applied := make(map[int64]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// step runs one migration and its schema_migrations bookkeeping in a
// single transaction.
func step(ctx context.Context, pool *pgxpool.Pool, m migration, up bool) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		script := m.down
		record, args := `DELETE FROM schema_migrations WHERE version = $1`, []any{m.version}
		if up {
			script = m.up
			record, args = `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, []any{m.version, m.name}
		}
		if _, err := tx.Exec(ctx, script); err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		_, err := tx.Exec(ctx, record, args...)
		return err
	})
}
