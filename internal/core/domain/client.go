package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	RoleClient = "client"

	// ExpiryLayout is the only representation an expiry date is ever stored in.
	ExpiryLayout = "2006-01-02"
)

// DashboardCatalog is the fixed set of dashboards a client can be granted.
var DashboardCatalog = []string{
	"dashboard1",
	"dashboard2",
	"dashboard3",
	"dashboard4",
	"dashboard5",
	"dashboard6",
}

// Client models an account managed from the admin console.
type Client struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	ExpiryDate   string    `json:"expiry_date"`
	Permissions  []string  `json:"permissions"`
	Email        string    `json:"email,omitempty"`
	LoginStatus  bool      `json:"login_status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers never share the permissions slice.
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Permissions = slices.Clone(c.Permissions)
	return &clone
}

// IsDashboard reports whether name belongs to DashboardCatalog.
func IsDashboard(name string) bool {
	return slices.Contains(DashboardCatalog, name)
}

// NormalizePermissions validates every name against the catalog and returns
// the set sorted and without duplicates. A nil input yields an empty, non-nil slice.
func NormalizePermissions(perms []string) ([]string, error) {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !IsDashboard(p) {
			return nil, Err(ErrValidation, nil, "unknown dashboard %q", p)
		}
		out = append(out, p)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// NormalizeExpiry parses s as a calendar date and re-formats it as YYYY-MM-DD.
// Full RFC 3339 timestamps are accepted and truncated to their date part.
func NormalizeExpiry(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", Err(ErrValidation, nil, "expiry date is required")
	}
	if t, err := time.Parse(ExpiryLayout, s); err == nil {
		return t.Format(ExpiryLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(ExpiryLayout), nil
	}
	return "", Err(ErrValidation, nil, "expiry date %q must use %s", s, ExpiryLayout)
}

// JoinPermissions encodes a permission set for single-column storage.
// Names are not escaped; catalog names never contain commas.
func JoinPermissions(perms []string) string {
	return strings.Join(perms, ",")
}

// SplitPermissions is the inverse of JoinPermissions.
func SplitPermissions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String is used in log lines; it never prints the hash.
func (c *Client) String() string {
	return fmt.Sprintf("client(%s, expires %s, %d dashboards)", c.Username, c.ExpiryDate, len(c.Permissions))
}

// UnixOrZero returns t in Unix seconds, or 0 for the zero time.
func UnixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// FromUnix reverses UnixOrZero; 0 maps back to the zero time.
func FromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
