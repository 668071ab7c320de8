package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/client-console/internal/api/metrics"
	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/infrastructure/config"
	"github.com/99minutos/client-console/internal/testutil/repotest"
)

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, config.StorageConfig{
		Backend: "FILE",
		File:    config.FileConfig{Path: filepath.Join(t.TempDir(), "user_data.json")},
	}, zerolog.Nop())
	require.NoError(t, err)
	defer repo.Close(ctx)

	require.NoError(t, repo.Create(ctx, repotest.NewClient("alice", "2024-12-31", "dashboard1")))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, config.StorageConfig{
		Backend: BackendSQLite,
		SQL:     config.SQLConfig{SQLitePath: filepath.Join(t.TempDir(), "clients.db"), ConnectionMode: "scoped"},
	}, zerolog.Nop())
	require.NoError(t, err)
	defer repo.Close(ctx)

	require.NoError(t, repo.Ping(ctx))
	_, err = repo.Get(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "cassandra"}, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestOpen_BadConnectionMode(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{
		Backend: BackendSQLite,
		SQL:     config.SQLConfig{SQLitePath: filepath.Join(t.TempDir(), "c.db"), ConnectionMode: "sometimes"},
	}, zerolog.Nop())
	require.Error(t, err)
}

func TestInstrument_RecordsResults(t *testing.T) {
	ctx := context.Background()
	inner, err := Open(ctx, config.StorageConfig{
		Backend: BackendFile,
		File:    config.FileConfig{Path: filepath.Join(t.TempDir(), "metrics.json")},
	}, zerolog.Nop())
	require.NoError(t, err)
	repo := Instrument(inner, "metrics-test")

	require.NoError(t, repo.Create(ctx, repotest.NewClient("bob", "2025-01-01")))
	require.ErrorIs(t, repo.Create(ctx, repotest.NewClient("bob", "2025-01-01")), domain.ErrClientExists)
	_, err = repo.Get(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrClientNotFound)
	_, err = repo.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RepositoryOperationsTotal.WithLabelValues("metrics-test", "create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RepositoryOperationsTotal.WithLabelValues("metrics-test", "create", "exists")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RepositoryOperationsTotal.WithLabelValues("metrics-test", "get", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ClientsStored.WithLabelValues("metrics-test")))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "unavailable", resultLabel(domain.Err(domain.ErrStorageUnavailable, nil, "down")))
	assert.Equal(t, "error", resultLabel(assert.AnError))
}
