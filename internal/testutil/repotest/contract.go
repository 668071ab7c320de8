// Package repotest holds the behaviour every ports.ClientRepository backend
// must share, runnable from each backend's own tests.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/core/ports"
)

// Factory returns an empty repository; cleanup is registered through t.
type Factory func(t *testing.T) ports.ClientRepository

// NewClient builds a valid client record with a fake hash.
func NewClient(username, expiry string, perms ...string) *domain.Client {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if perms == nil {
		perms = []string{}
	}
	return &domain.Client{
		Username:     username,
		PasswordHash: "$2a$04$hash-of-" + username,
		Role:         domain.RoleClient,
		ExpiryDate:   expiry,
		Permissions:  perms,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Run exercises the full repository contract against fresh repositories.
func Run(t *testing.T, factory Factory) {
	t.Helper()

	t.Run("CreateThenGet", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		in := NewClient("alice", "2024-12-31", "dashboard1", "dashboard2")
		in.Email = "alice@example.com"
		in.LoginStatus = true
		require.NoError(t, repo.Create(ctx, in))

		got, err := repo.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, in.PasswordHash, got.PasswordHash)
		assert.Equal(t, domain.RoleClient, got.Role)
		assert.Equal(t, "2024-12-31", got.ExpiryDate)
		assert.ElementsMatch(t, []string{"dashboard1", "dashboard2"}, got.Permissions)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.True(t, got.LoginStatus)
	})

	t.Run("EmptyPermissions", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, NewClient("nobody", "2025-01-01")))
		got, err := repo.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, got.Permissions)
	})

	t.Run("DuplicateCreateKeepsOriginal", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, NewClient("bob", "2025-01-01", "dashboard1")))
		err := repo.Create(ctx, NewClient("bob", "2026-01-01", "dashboard2"))
		require.ErrorIs(t, err, domain.ErrClientExists)

		got, err := repo.Get(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-01", got.ExpiryDate)
		assert.Equal(t, []string{"dashboard1"}, got.Permissions)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := factory(t)
		_, err := repo.Get(context.Background(), "ghost")
		require.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("UpdateMissingCreatesNothing", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		err := repo.Update(ctx, NewClient("ghost", "2025-01-01"))
		require.ErrorIs(t, err, domain.ErrClientNotFound)

		_, err = repo.Get(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, NewClient("carol", "2025-01-01")))
		require.NoError(t, repo.Delete(ctx, "carol"))
		require.NoError(t, repo.Delete(ctx, "carol"))
		require.NoError(t, repo.Delete(ctx, "never-existed"))

		_, err := repo.Get(ctx, "carol")
		require.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("ListAll", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Create(ctx, NewClient(fmt.Sprintf("user%d", i), "2025-01-01", "dashboard6")))
		}
		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)

		names := make([]string, 0, len(all))
		for _, c := range all {
			names = append(names, c.Username)
			assert.Equal(t, []string{"dashboard6"}, c.Permissions)
		}
		sort.Strings(names)
		assert.Equal(t, []string{"user0", "user1", "user2"}, names)
	})

	t.Run("AliceScenario", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		require.NoError(t, repo.Create(ctx, NewClient("alice", "2024-12-31", "dashboard1", "dashboard2")))

		updated := NewClient("alice", "2025-06-30", "dashboard3")
		updated.PasswordHash = "$2a$04$pw2"
		require.NoError(t, repo.Update(ctx, updated))

		got, err := repo.Get(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "$2a$04$pw2", got.PasswordHash)
		assert.Equal(t, "2025-06-30", got.ExpiryDate)
		assert.Equal(t, []string{"dashboard3"}, got.Permissions)

		require.NoError(t, repo.Delete(ctx, "alice"))
		_, err = repo.Get(ctx, "alice")
		require.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("UpdateKeepsCreatedAt", func(t *testing.T) {
		repo := factory(t)
		ctx := context.Background()

		original := NewClient("erin", "2024-12-31", "dashboard1")
		require.NoError(t, repo.Create(ctx, original))

		replacement := NewClient("erin", "2025-06-30", "dashboard2")
		replacement.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		replacement.UpdatedAt = replacement.CreatedAt
		require.NoError(t, repo.Update(ctx, replacement))

		got, err := repo.Get(ctx, "erin")
		require.NoError(t, err)
		assert.Equal(t, original.CreatedAt.Unix(), got.CreatedAt.Unix())
		assert.Equal(t, replacement.UpdatedAt.Unix(), got.UpdatedAt.Unix())
		assert.Equal(t, "2025-06-30", got.ExpiryDate)
	})

	t.Run("Ping", func(t *testing.T) {
		repo := factory(t)
		assert.NoError(t, repo.Ping(context.Background()))
	})
}
