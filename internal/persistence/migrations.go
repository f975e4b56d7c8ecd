package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

// RunMigrations applies every .sql file under the migrations directory in
// lexical order. Files are plain statements without their own transaction
// wrapper; a failing file aborts the run.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("postgres pool not configured, migrations skipped")
		return nil
	}

	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		scripts = append(scripts, entry.Name())
	}
	sort.Strings(scripts)

	for _, script := range scripts {
		statements, err := os.ReadFile(filepath.Join(migrationsDir, script))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", script, err)
		}

		logger.Info("applying migration", zap.String("script", script))
		if _, err := pool.Exec(ctx, string(statements)); err != nil {
			return fmt.Errorf("apply migration %s: %w", script, err)
		}
	}

	logger.Info("schema up to date", zap.Int("scripts", len(scripts)))
	return nil
}
