// Package testutil provides shared helpers for integration tests.
// Helpers in this package skip automatically when required environment
// variables are not set, so unit tests can run without a running database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DSNEnv names the environment variable holding the test database URL.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool opens a *pgxpool.Pool connected to TEST_DATABASE_URL.
// The test is skipped if the variable is not set. The pool is closed when the
// test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens a *sql.DB on TEST_DATABASE_URL using the pgx database/sql
// driver, for goose. The test is skipped if the variable is not set.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB opens a *sql.DB for the given DSN and panics on any error.
// Use this in TestMain functions where no *testing.T is available.
// Callers are responsible for closing the returned *sql.DB.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

// EnsureDatabase makes TEST_DATABASE_URL available to a TestMain.
// If it is already set nothing happens. If TEST_CONTAINERS=1 a throwaway
// Postgres container is started and TEST_DATABASE_URL points at it.
// The returned func stops the container and is always safe to call.
func EnsureDatabase(ctx context.Context) (func(), error) {
	noop := func() {}
	if os.Getenv(DSNEnv) != "" || os.Getenv("TEST_CONTAINERS") != "1" {
		return noop, nil
	}

	dsn, terminate, err := StartPostgres(ctx)
	if err != nil {
		return noop, err
	}
	if err := os.Setenv(DSNEnv, dsn); err != nil {
		terminate()
		return noop, fmt.Errorf("testutil.EnsureDatabase: %w", err)
	}
	return terminate, nil
}

// StartPostgres runs a postgres:16-alpine container and returns its DSN.
func StartPostgres(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "tripboard",
			"POSTGRES_PASSWORD": "tripboard",
			"POSTGRES_DB":       "tripboard_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("testutil.StartPostgres: start: %w", err)
	}
	terminate := func() { _ = pgC.Terminate(context.Background()) }

	host, err := pgC.Host(ctx)
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("testutil.StartPostgres: host: %w", err)
	}
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("testutil.StartPostgres: port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://tripboard:tripboard@%s:%s/tripboard_test?sslmode=disable", host, port.Port())
	return dsn, terminate, nil
}

// requireDSN returns TEST_DATABASE_URL, skipping the test if it is not set.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
