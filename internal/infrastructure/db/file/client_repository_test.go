package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/core/ports"
	"github.com/99minutos/client-console/internal/testutil/repotest"
)

func TestClientRepository_JSONContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) ports.ClientRepository {
		repo, err := NewClientRepository(filepath.Join(t.TempDir(), "user_data.json"))
		require.NoError(t, err)
		return repo
	})
}

func TestClientRepository_YAMLContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) ports.ClientRepository {
		repo, err := NewClientRepository(filepath.Join(t.TempDir(), "user_data.yaml"))
		require.NoError(t, err)
		return repo
	})
}

func TestClientRepository_DocumentFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	repo, err := NewClientRepository(path)
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), repotest.NewClient("alice", "2024-12-31", "dashboard1", "dashboard2")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, "alice")
	assert.Equal(t, "client", doc["alice"]["role"])
	assert.Equal(t, "2024-12-31", doc["alice"]["expiry_date"])
	assert.Equal(t, []any{"dashboard1", "dashboard2"}, doc["alice"]["permissions"])
	assert.NotEqual(t, "", doc["alice"]["password"])
}

func TestClientRepository_ReloadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yml")
	ctx := context.Background()

	first, err := NewClientRepository(path)
	require.NoError(t, err)
	require.NoError(t, first.Create(ctx, repotest.NewClient("bob", "2025-01-01", "dashboard4")))

	second, err := NewClientRepository(path)
	require.NoError(t, err)
	got, err := second.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", got.ExpiryDate)
	assert.Equal(t, []string{"dashboard4"}, got.Permissions)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]record
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "2025-01-01", doc["bob"].ExpiryDate)
}

func TestClientRepository_ReadsLegacyPlainDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	legacy := `{
    "alice": {
        "password": "pw1",
        "role": "client",
        "expiry_date": "2024-12-31",
        "permissions": ["dashboard1", "dashboard2"]
    }
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o600))

	repo, err := NewClientRepository(path)
	require.NoError(t, err)
	got, err := repo.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", got.ExpiryDate)
	assert.ElementsMatch(t, []string{"dashboard1", "dashboard2"}, got.Permissions)
	assert.True(t, got.CreatedAt.IsZero())
}

func TestClientRepository_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewClientRepository(path)
	assert.Error(t, err)
}

func TestClientRepository_SharedPathSeesOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	ctx := context.Background()

	server, err := NewClientRepository(path)
	require.NoError(t, err)
	cli, err := NewClientRepository(path)
	require.NoError(t, err)

	require.NoError(t, cli.Create(ctx, repotest.NewClient("alice", "2024-12-31", "dashboard1")))
	require.NoError(t, server.Create(ctx, repotest.NewClient("bob", "2025-01-01", "dashboard4")))

	fresh, err := NewClientRepository(path)
	require.NoError(t, err)
	_, err = fresh.Get(ctx, "alice")
	require.NoError(t, err)

	all, err := server.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = server.Create(ctx, repotest.NewClient("alice", "2026-01-01"))
	require.ErrorIs(t, err, domain.ErrClientExists)

	require.NoError(t, cli.Delete(ctx, "bob"))
	_, err = server.Get(ctx, "bob")
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}
