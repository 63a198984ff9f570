// Package dbtest hands repository tests a migrated Postgres schema of their
// own. Tests are skipped unless TEST_POSTGRES_DSN points at a database the
// caller may create schemas in.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-booking/internal/db"
)

const EnvDSN = "TEST_POSTGRES_DSN"

// NewPool creates a fresh schema, runs the migrations into it and returns a
// pool whose connections use it as search_path. The schema is dropped when
// the test ends.
func NewPool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set, skipping Postgres test", EnvDSN)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	cfg.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
		admin.Close()
	})

	require.NoError(t, db.Migrate(ctx, pool, zerolog.Nop()))
	return pool
}
