package main

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojane/internal/observability/logger"
	migrations "github.com/dropDatabas3/hellojane/migrations/postgres"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down] [steps]",
		Short: "Apply embedded SQL migrations",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			steps := 0
			if len(args) >= 1 && args[0] != "" {
				action = strings.ToLower(args[0])
			}
			if len(args) >= 2 {
				if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
					steps = n
				}
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("pgxpool: %w", err)
			}
			defer pool.Close()

			switch action {
			case "up":
				return runMigrations(ctx, pool, "_up.sql", steps, false)
			case "down":
				return runMigrations(ctx, pool, "_down.sql", steps, true)
			default:
				return fmt.Errorf("unknown action %q, use: up | down [steps]", action)
			}
		},
	}
}

// runMigrations aplica los archivos embebidos que matchean el sufijo, en
// orden ascendente (up) o descendente (down), opcionalmente limitado a steps.
func runMigrations(ctx context.Context, pool *pgxpool.Pool, suffix string, steps int, reverse bool) error {
	files, err := listSQL(suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.L().Info("no migrations found, nothing to do", logger.String("suffix", suffix))
		return nil
	}
	sort.Strings(files)
	if reverse {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	logger.L().Info("applying migrations", logger.Count(len(files)))
	for _, f := range files {
		sql, err := fs.ReadFile(migrations.FS, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		logger.L().Info("migration applied", logger.String("file", f))
	}
	return nil
}

func listSQL(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
