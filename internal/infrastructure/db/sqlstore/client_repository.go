// Package sqlstore keeps clients in a relational table, either SQLite
// (modernc.org/sqlite, pure Go) or PostgreSQL (pgx stdlib driver).
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/99minutos/client-console/internal/core/domain"
)

// Dialect selects the SQL engine; its value doubles as the migrations directory.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// Mode controls connection lifetime.
type Mode string

const (
	// ModePooled opens one *sql.DB at startup and shares it.
	ModePooled Mode = "pooled"
	// ModeScoped opens and closes a connection around every operation.
	ModeScoped Mode = "scoped"
)

// ParseMode accepts "pooled", "scoped" or empty (pooled).
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePooled:
		return ModePooled, nil
	case ModeScoped:
		return ModeScoped, nil
	default:
		return "", fmt.Errorf("unknown sql connection mode %q", s)
	}
}

const defaultTimeout = 5 * time.Second

type Config struct {
	Dialect      Dialect
	DSN          string
	Mode         Mode
	MaxOpenConns int
}

type ClientRepository struct {
	cfg Config
	db  *sql.DB // nil in scoped mode
}

// Open migrates the schema and, in pooled mode, opens the shared pool.
func Open(ctx context.Context, cfg Config) (*ClientRepository, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModePooled
	}
	if cfg.Dialect == SQLite && cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 1
	}

	if err := Migrate(ctx, cfg); err != nil {
		return nil, err
	}

	r := &ClientRepository{cfg: cfg}
	if cfg.Mode == ModePooled {
		db, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r.db = db
	}
	return r, nil
}

func open(ctx context.Context, cfg Config) (*sql.DB, error) {
	const op = "sqlstore.open"

	db, err := sql.Open(cfg.Dialect.driverName(), cfg.DSN)
	if err != nil {
		return nil, domain.Err(domain.ErrStorageUnavailable, err, "%s: %s", op, cfg.Dialect)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, domain.Err(domain.ErrStorageUnavailable, err, "%s: ping %s", op, cfg.Dialect)
	}
	return db, nil
}

// with runs fn against the shared pool or a connection scoped to this call.
func (r *ClientRepository) with(ctx context.Context, fn func(db *sql.DB) error) error {
	if r.db != nil {
		return fn(r.db)
	}
	db, err := open(ctx, r.cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

// rebind rewrites ? placeholders to $n for postgres.
func (r *ClientRepository) rebind(query string) string {
	if r.cfg.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

const selectColumns = `username, password, role, expiry_date, permissions, email, login_status, created_at, updated_at`

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	const op = "sqlstore.Create"

	query := r.rebind(`INSERT INTO clients (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (username) DO NOTHING`)

	return r.with(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, query,
			c.Username, c.PasswordHash, domain.RoleClient, c.ExpiryDate,
			domain.JoinPermissions(c.Permissions), c.Email, c.LoginStatus,
			domain.UnixOrZero(c.CreatedAt), domain.UnixOrZero(c.UpdatedAt),
		)
		if err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: %s", op, c.Username)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: rows affected", op)
		}
		if n == 0 {
			return domain.ErrClientExists
		}
		return nil
	})
}

func (r *ClientRepository) Get(ctx context.Context, username string) (*domain.Client, error) {
	const op = "sqlstore.Get"

	query := r.rebind(`SELECT ` + selectColumns + ` FROM clients WHERE username = ?`)

	var out *domain.Client
	err := r.with(ctx, func(db *sql.DB) error {
		c, err := scanClient(db.QueryRowContext(ctx, query, username))
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrClientNotFound
		}
		if err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: %s", op, username)
		}
		out = c
		return nil
	})
	return out, err
}

// List returns clients sorted by username.
func (r *ClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	const op = "sqlstore.List"

	query := `SELECT ` + selectColumns + ` FROM clients ORDER BY username`

	out := make([]*domain.Client, 0)
	err := r.with(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: query", op)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanClient(rows)
			if err != nil {
				return domain.Err(domain.ErrStorageUnavailable, err, "%s: scan", op)
			}
			out = append(out, c)
		}
		if err := rows.Err(); err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: rows", op)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces every column except created_at. It never inserts.
func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	const op = "sqlstore.Update"

	query := r.rebind(`UPDATE clients
		SET password = ?, role = ?, expiry_date = ?, permissions = ?, email = ?, login_status = ?, updated_at = ?
		WHERE username = ?`)

	return r.with(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, query,
			c.PasswordHash, domain.RoleClient, c.ExpiryDate, domain.JoinPermissions(c.Permissions),
			c.Email, c.LoginStatus, domain.UnixOrZero(c.UpdatedAt), c.Username,
		)
		if err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: %s", op, c.Username)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: rows affected", op)
		}
		if n == 0 {
			return domain.ErrClientNotFound
		}
		return nil
	})
}

func (r *ClientRepository) Delete(ctx context.Context, username string) error {
	const op = "sqlstore.Delete"

	query := r.rebind(`DELETE FROM clients WHERE username = ?`)

	return r.with(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, query, username); err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "%s: %s", op, username)
		}
		return nil
	})
}

func (r *ClientRepository) Ping(ctx context.Context) error {
	return r.with(ctx, func(db *sql.DB) error {
		if err := db.PingContext(ctx); err != nil {
			return domain.Err(domain.ErrStorageUnavailable, err, "sqlstore.Ping: %s", r.cfg.Dialect)
		}
		return nil
	})
}

func (r *ClientRepository) Close(_ context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var (
		c                domain.Client
		perms            string
		created, updated int64
	)
	if err := row.Scan(&c.Username, &c.PasswordHash, &c.Role, &c.ExpiryDate, &perms,
		&c.Email, &c.LoginStatus, &created, &updated); err != nil {
		return nil, err
	}
	c.Permissions = domain.SplitPermissions(perms)
	c.CreatedAt = domain.FromUnix(created)
	c.UpdatedAt = domain.FromUnix(updated)
	return &c, nil
}
