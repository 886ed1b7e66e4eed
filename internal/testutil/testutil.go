// Package testutil provides helpers for integration tests that run
// against real Redis or PostgreSQL instances.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nahomWM/Quantum-Qr-Code/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 770331

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire conn: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}

	release := func() error {
		defer conn.Release()
		_, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockID)
		return err
	}
	return release, nil
}

// ResetDocuments empties the document table so each test starts clean.
func ResetDocuments(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE TABLE documents")
	if err != nil {
		return fmt.Errorf("truncate documents: %w", err)
	}
	return nil
}

// FlushRedis clears the Redis database used by a test.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// UniqueID builds a collision-free test identifier from a prefix.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// NewTestDefinition builds a valid time-mode definition for tests.
func NewTestDefinition(t testing.TB, id string) *model.CodeDefinition {
	t.Helper()
	return &model.CodeDefinition{
		ID:   id,
		Mode: model.ModeTime,
		Configurations: []model.Configuration{
			{PayloadRef: UniqueID("ref"), DisplayName: "All day", Start: "00:00", End: "23:59"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}
