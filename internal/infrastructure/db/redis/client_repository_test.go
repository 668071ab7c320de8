package redis

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/core/ports"
	"github.com/99minutos/client-console/internal/testutil/repotest"
)

func setupRedisContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestClientRepository_Contract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()
	addr := setupRedisContainer(ctx, t)

	var seq atomic.Int32
	repotest.Run(t, func(t *testing.T) ports.ClientRepository {
		client, err := Connect(ctx, Config{Addr: addr})
		require.NoError(t, err)
		repo := NewClientRepository(client, fmt.Sprintf("test%d:client:", seq.Add(1)))
		t.Cleanup(func() { _ = repo.Close(ctx) })
		return repo
	})
}

func TestClientRepository_UpdateKeepsCreatedAt(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: setupRedisContainer(ctx, t)})
	require.NoError(t, err)
	repo := NewClientRepository(client, "")
	defer repo.Close(ctx)

	original := repotest.NewClient("alice", "2024-12-31", "dashboard1")
	require.NoError(t, repo.Create(ctx, original))

	next := repotest.NewClient("alice", "2025-06-30")
	next.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, next))

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, original.CreatedAt.Unix(), got.CreatedAt.Unix())
	assert.Equal(t, "2025-06-30", got.ExpiryDate)

	raw, err := client.Get(ctx, DefaultKeyPrefix+"alice").Result()
	require.NoError(t, err)
	assert.Contains(t, raw, `"role":"client"`)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
