// Package db owns the PostgreSQL and Redis connections plus file-based
// schema migrations.
package db

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type DB struct {
	Postgres *sql.DB
	Redis    *redis.Client
	log      zerolog.Logger
}

// Options carry the connection settings resolved from config.
type Options struct {
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
}

// New connects to PostgreSQL (required) and Redis (optional; caching and
// rate limiting degrade gracefully without it).
func New(opts Options, logger zerolog.Logger) (*DB, error) {
	if opts.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	pg, err := sql.Open("postgres", opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	pg.SetMaxOpenConns(25)
	pg.SetMaxIdleConns(5)
	pg.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pg.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info().Msg("postgres connection established")

	rdb := newRedisClient(opts, logger)
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, continuing without it")
			rdb = nil
		} else {
			logger.Info().Msg("redis connection established")
		}
	}

	return &DB{Postgres: pg, Redis: rdb, log: logger}, nil
}

// newRedisClient supports both "host:port" and "redis://..." URL formats.
func newRedisClient(opts Options, logger zerolog.Logger) *redis.Client {
	if opts.RedisURL == "" {
		return nil
	}

	redisOpts := &redis.Options{
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	if strings.HasPrefix(opts.RedisURL, "redis://") || strings.HasPrefix(opts.RedisURL, "rediss://") {
		parsed, err := url.Parse(opts.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to parse redis URL, continuing without redis")
			return nil
		}
		redisOpts.Addr = parsed.Host
		if parsed.User != nil {
			redisOpts.Username = parsed.User.Username()
			if password, ok := parsed.User.Password(); ok {
				redisOpts.Password = password
			}
		}
		if parsed.Scheme == "rediss" {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	} else {
		redisOpts.Addr = opts.RedisURL
		redisOpts.Password = opts.RedisPassword
	}

	return redis.NewClient(redisOpts)
}

// Close closes all database connections.
func (db *DB) Close() error {
	var errs []error

	if db.Postgres != nil {
		if err := db.Postgres.Close(); err != nil {
			errs = append(errs, fmt.Errorf("postgres close error: %w", err))
		}
	}
	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing databases: %v", errs)
	}
	return nil
}

// Health checks database health.
func (db *DB) Health(ctx context.Context) error {
	if err := db.Postgres.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres health check failed: %w", err)
	}
	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			db.log.Warn().Err(err).Msg("redis health check failed")
		}
	}
	return nil
}

// RunMigrations executes SQL migration files in order, recording applied
// versions in schema_migrations.
func (db *DB) RunMigrations(migrationsPath string) error {
	_, err := db.Postgres.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := db.Postgres.QueryRow(
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", version, err)
		}

		tx, err := db.Postgres.Begin()
		if err != nil {
			return fmt.Errorf("failed to start transaction for migration %s: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}

		db.log.Info().Str("version", version).Msg("applied migration")
	}

	return nil
}
