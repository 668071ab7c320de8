package ports

import (
	"context"

	"github.com/99minutos/client-console/internal/core/domain"
)

// ClientRepository defines persistence operations for client accounts,
// keyed by username. Every mutation is durable before it returns.
type ClientRepository interface {
	// Create inserts a new client. MUST return domain.ErrClientExists when the
	// username is already present and leave the stored record untouched.
	Create(ctx context.Context, client *domain.Client) error
	// Get MUST return domain.ErrClientNotFound when the username is unknown.
	Get(ctx context.Context, username string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	// Update replaces every mutable field of an existing client. It MUST NOT
	// create a record; unknown usernames yield domain.ErrClientNotFound.
	Update(ctx context.Context, client *domain.Client) error
	// Delete is idempotent: removing an unknown username is not an error.
	Delete(ctx context.Context, username string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
