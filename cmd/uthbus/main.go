package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sankulkush/UTHBUS-sub001/config"
	"github.com/sankulkush/UTHBUS-sub001/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting uthbus edge service",
		"addr", cfg.HTTP.Addr,
		"auth_mode", cfg.Auth.Mode,
		"profile_backend", cfg.Auth.Profiles,
		"dev", cfg.IsDev,
	)

	redisClient, err := connectRedis(cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	var pool *pgxpool.Pool
	if cfg.Auth.Profiles == config.ProfileBackendPostgres {
		pool, err = bootstrap.ConnectDB(ctx, bootstrap.DatabaseConfig{
			DBConfig: cfg.Postgres,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	stack, err := bootstrap.BuildAuthStack(bootstrap.AuthDeps{
		Auth:        cfg.Auth,
		RedisClient: redisClient,
		DBPool:      pool,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	server, err := bootstrap.StartHTTPServer(bootstrap.HTTPServerConfig{
		Config: &cfg,
		Stack:  stack,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	// Block until SIGINT/SIGTERM, then drain.
	stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()

	return bootstrap.ShutdownHTTPServer(ctx, server, stack, logger)
}

// connectRedis tolerates a missing Redis in development: the edge still works,
// it just loses token caching and live session events.
//
//nolint:ireturn // see bootstrap.ConnectRedis.
func connectRedis(cfg config.AppConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
		RedisConfig: cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		if cfg.IsDev {
			logger.Warn("redis unavailable, continuing without it", "error", err)
			return nil, nil
		}
		return nil, err
	}
	return client, nil
}
