// Package file stores clients in a single JSON or YAML document that is
// rewritten in full on every mutation.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/99minutos/client-console/internal/core/domain"
)

const filePerm = 0o600

// record is the on-disk shape of one client, keyed by username in the document.
type record struct {
	Password    string   `json:"password" yaml:"password"`
	Role        string   `json:"role" yaml:"role"`
	ExpiryDate  string   `json:"expiry_date" yaml:"expiry_date"`
	Permissions []string `json:"permissions" yaml:"permissions"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty"`
	LoginStatus bool     `json:"login_status,omitempty" yaml:"login_status,omitempty"`
	CreatedAt   int64    `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   int64    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

type codec struct {
	marshal   func(v any) ([]byte, error)
	unmarshal func(data []byte, v any) error
}

var (
	jsonCodec = codec{
		marshal:   func(v any) ([]byte, error) { return json.MarshalIndent(v, "", "    ") },
		unmarshal: json.Unmarshal,
	}
	yamlCodec = codec{
		marshal:   func(v any) ([]byte, error) { return yaml.Marshal(v) },
		unmarshal: func(data []byte, v any) error { return yaml.Unmarshal(data, v) },
	}
)

// ClientRepository reads the document from disk at the start of every
// operation, so writes from other processes sharing the path are seen. The
// mutex serialises read-modify-write cycles within this process.
type ClientRepository struct {
	mu    sync.Mutex
	path  string
	codec codec
}

// NewClientRepository fails early when an existing document cannot be read
// or decoded.
// The codec is picked from the extension: .yaml/.yml for YAML, JSON otherwise.
func NewClientRepository(path string) (*ClientRepository, error) {
	r := &ClientRepository{path: path, codec: jsonCodec}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		r.codec = yamlCodec
	}
	if _, err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ClientRepository) Create(_ context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := users[c.Username]; ok {
		return domain.ErrClientExists
	}
	users[c.Username] = toRecord(c)
	return r.flush(users)
}

func (r *ClientRepository) Get(_ context.Context, username string) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	rec, ok := users[username]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return toDomain(username, rec), nil
}

// List returns clients sorted by username.
func (r *ClientRepository) List(_ context.Context) ([]*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Client, 0, len(users))
	for username, rec := range users {
		out = append(out, toDomain(username, rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Update replaces the stored record. CreatedAt always keeps the stored value.
func (r *ClientRepository) Update(_ context.Context, c *domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	existing, ok := users[c.Username]
	if !ok {
		return domain.ErrClientNotFound
	}
	rec := toRecord(c)
	rec.CreatedAt = existing.CreatedAt
	users[c.Username] = rec
	return r.flush(users)
}

func (r *ClientRepository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := users[username]; !ok {
		return nil
	}
	delete(users, username)
	return r.flush(users)
}

// Ping verifies the directory holding the document is still reachable.
func (r *ClientRepository) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(r.path)); err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "stat %s", filepath.Dir(r.path))
	}
	return nil
}

func (r *ClientRepository) Close(_ context.Context) error { return nil }

// flush replaces the document atomically with users.
func (r *ClientRepository) flush(users map[string]record) error {
	data, err := r.codec.marshal(users)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.path, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "create temp file in %s", dir)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return domain.Err(domain.ErrStorageUnavailable, err, "write %s", tmp.Name())
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return domain.Err(domain.ErrStorageUnavailable, err, "sync %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "close %s", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "chmod %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return domain.Err(domain.ErrStorageUnavailable, err, "replace %s", r.path)
	}
	return nil
}

func (r *ClientRepository) load() (map[string]record, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]record), nil
	}
	if err != nil {
		return nil, domain.Err(domain.ErrStorageUnavailable, err, "read %s", r.path)
	}
	users := make(map[string]record)
	if len(strings.TrimSpace(string(data))) == 0 {
		return users, nil
	}
	if err := r.codec.unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	if users == nil {
		users = make(map[string]record)
	}
	return users, nil
}

func toRecord(c *domain.Client) record {
	perms := c.Permissions
	if perms == nil {
		perms = []string{}
	}
	return record{
		Password:    c.PasswordHash,
		Role:        domain.RoleClient,
		ExpiryDate:  c.ExpiryDate,
		Permissions: append([]string(nil), perms...),
		Email:       c.Email,
		LoginStatus: c.LoginStatus,
		CreatedAt:   domain.UnixOrZero(c.CreatedAt),
		UpdatedAt:   domain.UnixOrZero(c.UpdatedAt),
	}
}

func toDomain(username string, rec record) *domain.Client {
	perms := append([]string{}, rec.Permissions...)
	role := rec.Role
	if role == "" {
		role = domain.RoleClient
	}
	return &domain.Client{
		Username:     username,
		PasswordHash: rec.Password,
		Role:         role,
		ExpiryDate:   rec.ExpiryDate,
		Permissions:  perms,
		Email:        rec.Email,
		LoginStatus:  rec.LoginStatus,
		CreatedAt:    domain.FromUnix(rec.CreatedAt),
		UpdatedAt:    domain.FromUnix(rec.UpdatedAt),
	}
}
