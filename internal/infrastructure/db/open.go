// Package db selects, opens and instruments the configured client repository.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-console/internal/core/ports"
	"github.com/99minutos/client-console/internal/infrastructure/config"
	"github.com/99minutos/client-console/internal/infrastructure/db/dynamo"
	"github.com/99minutos/client-console/internal/infrastructure/db/file"
	"github.com/99minutos/client-console/internal/infrastructure/db/mongo"
	"github.com/99minutos/client-console/internal/infrastructure/db/redis"
	"github.com/99minutos/client-console/internal/infrastructure/db/sqlstore"
)

const (
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Backends lists every accepted STORAGE_BACKEND value.
var Backends = []string{BackendFile, BackendMongo, BackendSQLite, BackendPostgres, BackendRedis, BackendDynamoDB}

// Open connects the backend named by cfg.Backend and wraps it with metrics.
// The caller owns the result and must Close it.
func Open(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (ports.ClientRepository, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	repo, err := open(ctx, backend, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", backend, err)
	}
	log.Info().Str("backend", backend).Msg("client storage ready")
	return Instrument(repo, backend), nil
}

func open(ctx context.Context, backend string, cfg config.StorageConfig) (ports.ClientRepository, error) {
	switch backend {
	case BackendFile:
		return file.NewClientRepository(cfg.File.Path)

	case BackendMongo:
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		repo := mongo.NewClientRepository(client, database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, err
		}
		return repo, nil

	case BackendSQLite, BackendPostgres:
		mode, err := sqlstore.ParseMode(cfg.SQL.ConnectionMode)
		if err != nil {
			return nil, err
		}
		sqlCfg := sqlstore.Config{Dialect: sqlstore.Postgres, DSN: cfg.SQL.PostgresDSN, Mode: mode}
		if backend == BackendSQLite {
			sqlCfg.Dialect = sqlstore.SQLite
			sqlCfg.DSN = sqliteDSN(cfg.SQL.SQLitePath)
		}
		return sqlstore.Open(ctx, sqlCfg)

	case BackendRedis:
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return redis.NewClientRepository(client, redis.DefaultKeyPrefix), nil

	case BackendDynamoDB:
		cli, err := dynamo.Connect(ctx, dynamo.Config{
			Table:    cfg.DynamoDB.Table,
			Endpoint: cfg.DynamoDB.Endpoint,
			Region:   cfg.DynamoDB.Region,
		})
		if err != nil {
			return nil, err
		}
		if err := dynamo.EnsureTable(ctx, cli, cfg.DynamoDB.Table); err != nil {
			return nil, err
		}
		return dynamo.NewClientRepository(cfg.DynamoDB.Table, cli), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q (want one of %s)", backend, strings.Join(Backends, ", "))
}

// sqliteDSN adds a busy timeout so the CLI and a running server can share
// one database file.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)"
}
