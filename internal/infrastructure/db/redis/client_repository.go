package redis

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/client-console/internal/core/domain"
)

// DefaultKeyPrefix namespaces client keys: client:<username>.
const DefaultKeyPrefix = "client:"

const scanCount = 100

// ClientRepository stores each client as a JSON string under its own key.
// SET NX and SET XX give the create and update semantics without a
// read-modify-write round trip.
type ClientRepository struct {
	client *redis.Client
	prefix string
}

func NewClientRepository(client *redis.Client, prefix string) *ClientRepository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &ClientRepository{client: client, prefix: prefix}
}

type redisClient struct {
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	ExpiryDate  string   `json:"expiry_date"`
	Permissions []string `json:"permissions"`
	Email       string   `json:"email,omitempty"`
	LoginStatus bool     `json:"login_status"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

func (r *ClientRepository) key(username string) string {
	return r.prefix + username
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	data, err := encode(c, domain.UnixOrZero(c.CreatedAt))
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, r.key(c.Username), data, 0).Result()
	if err != nil {
		return storageErr(err, "redis setnx %s", c.Username)
	}
	if !ok {
		return domain.ErrClientExists
	}
	return nil
}

func (r *ClientRepository) Get(ctx context.Context, username string) (*domain.Client, error) {
	data, err := r.client.Get(ctx, r.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrClientNotFound
	}
	if err != nil {
		return nil, storageErr(err, "redis get %s", username)
	}
	return decode(username, data)
}

// List scans the key prefix and returns clients sorted by username.
func (r *ClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, storageErr(err, "redis scan %s*", r.prefix)
	}

	out := make([]*domain.Client, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storageErr(err, "redis mget")
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// deleted between SCAN and MGET
			continue
		}
		c, err := decode(strings.TrimPrefix(keys[i], r.prefix), []byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Update overwrites an existing key only. created_at always keeps the stored
// value.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	existing, err := r.Get(ctx, c.Username)
	if err != nil {
		return err
	}
	data, err := encode(c, domain.UnixOrZero(existing.CreatedAt))
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(ctx, r.key(c.Username), data, redis.KeepTTL).Result()
	if err != nil {
		return storageErr(err, "redis setxx %s", c.Username)
	}
	if !ok {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, username string) error {
	if err := r.client.Del(ctx, r.key(username)).Err(); err != nil {
		return storageErr(err, "redis del %s", username)
	}
	return nil
}

func (r *ClientRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return storageErr(err, "redis ping")
	}
	return nil
}

func (r *ClientRepository) Close(_ context.Context) error {
	return r.client.Close()
}

func storageErr(err error, format string, args ...any) error {
	return domain.Err(domain.ErrStorageUnavailable, err, format, args...)
}

func encode(c *domain.Client, createdAt int64) ([]byte, error) {
	perms := c.Permissions
	if perms == nil {
		perms = []string{}
	}
	data, err := json.Marshal(redisClient{
		Password:    c.PasswordHash,
		Role:        domain.RoleClient,
		ExpiryDate:  c.ExpiryDate,
		Permissions: perms,
		Email:       c.Email,
		LoginStatus: c.LoginStatus,
		CreatedAt:   createdAt,
		UpdatedAt:   domain.UnixOrZero(c.UpdatedAt),
	})
	if err != nil {
		return nil, domain.Err(domain.ErrValidation, err, "encode client %s", c.Username)
	}
	return data, nil
}

func decode(username string, data []byte) (*domain.Client, error) {
	var rc redisClient
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, storageErr(err, "decode client %s", username)
	}
	perms := rc.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &domain.Client{
		Username:     username,
		PasswordHash: rc.Password,
		Role:         rc.Role,
		ExpiryDate:   rc.ExpiryDate,
		Permissions:  perms,
		Email:        rc.Email,
		LoginStatus:  rc.LoginStatus,
		CreatedAt:    domain.FromUnix(rc.CreatedAt),
		UpdatedAt:    domain.FromUnix(rc.UpdatedAt),
	}, nil
}
