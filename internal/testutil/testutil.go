package testutil

// Package testutil provides helpers for integration tests that need real
// Postgres or Redis instances. Tests are skipped when the backing service is
// unavailable so the unit suite stays runnable anywhere.

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// TestingTB is the subset of testing.TB these helpers need.
type TestingTB interface {
	Helper()
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Skip(args ...any)
	Cleanup(func())
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SetupTestRedis returns a Redis client for tests, skipping when no Redis is
// reachable. CI environments can point TEST_REDIS_ADDR elsewhere.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := getEnvOrDefault("TEST_REDIS_ADDR", "localhost:6379")
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Skip("redis not available at " + addr + ", skipping")
		return nil
	}
	_ = conn.Close()

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		t.Skip("redis ping failed, skipping: " + pingErr.Error())
		return nil
	}

	return client
}

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig returns default test database configuration.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "5432"),
		User:     getEnvOrDefault("TEST_DB_USER", "uthbus"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "uthbus"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "uthbus"),
	}
}

// SetupTestDB creates a pgx pool against the test database, skipping when
// Postgres is unreachable.
func SetupTestDB(t TestingTB) *pgxpool.Pool {
	t.Helper()

	cfg := DefaultTestDBConfig()
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		cfg.User, cfg.Password, net.JoinHostPort(cfg.Host, cfg.Port), cfg.DBName)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skip("postgres not available, skipping: " + err.Error())
		return nil
	}
	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		t.Skip("postgres ping failed, skipping: " + pingErr.Error())
		return nil
	}

	t.Cleanup(pool.Close)
	return pool
}
