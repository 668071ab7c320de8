package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/core/ports"
)

const (
	DefaultExpiry = "2024-12-31"
	placeholder   = "No clients added yet."
)

// DuplicatePolicy decides what AddClient does when the username is taken.
type DuplicatePolicy string

const (
	DuplicateReject    DuplicatePolicy = "reject"
	DuplicateOverwrite DuplicatePolicy = "overwrite"
)

// ParseDuplicatePolicy accepts "reject" (also the empty string) or "overwrite".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DuplicateReject:
		return DuplicateReject, nil
	case DuplicateOverwrite:
		return DuplicateOverwrite, nil
	}
	return "", fmt.Errorf("unknown duplicate policy %q", s)
}

// ConsoleOptions tunes ConsoleService. Zero values pick the defaults.
type ConsoleOptions struct {
	OnDuplicate   DuplicatePolicy
	BcryptCost    int
	DefaultExpiry string
	Now           func() time.Time
}

// ConsoleService implements ports.ConsoleService on top of a ClientRepository.
type ConsoleService struct {
	repo          ports.ClientRepository
	onDuplicate   DuplicatePolicy
	bcryptCost    int
	defaultExpiry string
	now           func() time.Time
	log           zerolog.Logger
}

func NewConsoleService(repo ports.ClientRepository, opts ConsoleOptions, log zerolog.Logger) *ConsoleService {
	if opts.OnDuplicate == "" {
		opts.OnDuplicate = DuplicateReject
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.DefaultExpiry == "" {
		opts.DefaultExpiry = DefaultExpiry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ConsoleService{
		repo:          repo,
		onDuplicate:   opts.OnDuplicate,
		bcryptCost:    opts.BcryptCost,
		defaultExpiry: opts.DefaultExpiry,
		now:           opts.Now,
		log:           log,
	}
}

// Render lists every client and builds the view for the given selection.
func (s *ConsoleService) Render(ctx context.Context, selected string) (*ports.ConsoleResult, error) {
	view, err := s.view(ctx, selected)
	if err != nil {
		return s.fail(view, err), err
	}
	return &ports.ConsoleResult{View: view}, nil
}

// AddClient validates the add form, hashes the password and creates the client.
func (s *ConsoleService) AddClient(ctx context.Context, in ports.AddClientInput) (*ports.ConsoleResult, error) {
	client, err := s.newClient(in)
	if err != nil {
		return s.respond(ctx, ports.NoneSelected, "", err)
	}

	err = s.repo.Create(ctx, client)
	if errors.Is(err, domain.ErrClientExists) && s.onDuplicate == DuplicateOverwrite {
		s.log.Info().Str("username", client.Username).Msg("duplicate client overwritten")
		err = s.repo.Update(ctx, client)
	}
	if err != nil {
		return s.respond(ctx, ports.NoneSelected, "", fmt.Errorf("add client %q: %w", client.Username, err))
	}

	s.log.Info().Str("username", client.Username).Str("expiry", client.ExpiryDate).Msg("client added")
	return s.respond(ctx, ports.NoneSelected, fmt.Sprintf("Client '%s' added successfully!", client.Username), nil)
}

// UpdateClient replaces password, expiry date and permissions of an existing client.
func (s *ConsoleService) UpdateClient(ctx context.Context, in ports.UpdateClientInput) (*ports.ConsoleResult, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || username == ports.NoneSelected {
		return s.respond(ctx, ports.NoneSelected, "", domain.Err(domain.ErrValidation, nil, "select a client to update"))
	}

	current, err := s.repo.Get(ctx, username)
	if err != nil {
		return s.respond(ctx, ports.NoneSelected, "", fmt.Errorf("update client %q: %w", username, err))
	}

	updated, err := s.replace(current, in)
	if err != nil {
		return s.respond(ctx, username, "", err)
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return s.respond(ctx, username, "", fmt.Errorf("update client %q: %w", username, err))
	}

	s.log.Info().Str("username", username).Str("expiry", updated.ExpiryDate).Msg("client updated")
	return s.respond(ctx, username, fmt.Sprintf("Client '%s' updated successfully!", username), nil)
}

// DeleteClient removes the client; deleting an unknown username succeeds.
func (s *ConsoleService) DeleteClient(ctx context.Context, username string) (*ports.ConsoleResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || username == ports.NoneSelected {
		return s.respond(ctx, ports.NoneSelected, "", domain.Err(domain.ErrValidation, nil, "select a client to delete"))
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		return s.respond(ctx, username, "", fmt.Errorf("delete client %q: %w", username, err))
	}

	s.log.Info().Str("username", username).Msg("client deleted")
	return s.respond(ctx, ports.NoneSelected, fmt.Sprintf("Client '%s' deleted successfully!", username), nil)
}

// GetClient returns a single client without its credential.
func (s *ConsoleService) GetClient(ctx context.Context, username string) (*ports.ClientSummary, error) {
	c, err := s.repo.Get(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	summary := toSummary(c)
	return &summary, nil
}

func (s *ConsoleService) newClient(in ports.AddClientInput) (*domain.Client, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.Err(domain.ErrValidation, nil, "Please provide both a username and password.")
	}
	if username == ports.NoneSelected {
		return nil, domain.Err(domain.ErrValidation, nil, "username %q is reserved", username)
	}

	expiry := in.ExpiryDate
	if strings.TrimSpace(expiry) == "" {
		expiry = s.defaultExpiry
	}
	expiry, err := domain.NormalizeExpiry(expiry)
	if err != nil {
		return nil, err
	}
	perms, err := domain.NormalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &domain.Client{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		ExpiryDate:   expiry,
		Permissions:  perms,
		Email:        strings.TrimSpace(in.Email),
		LoginStatus:  in.LoginStatus,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *ConsoleService) replace(current *domain.Client, in ports.UpdateClientInput) (*domain.Client, error) {
	expiry, err := domain.NormalizeExpiry(in.ExpiryDate)
	if err != nil {
		return nil, err
	}
	perms, err := domain.NormalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	if in.Password != "" {
		if updated.PasswordHash, err = s.hash(in.Password); err != nil {
			return nil, err
		}
	}
	updated.Role = domain.RoleClient
	updated.ExpiryDate = expiry
	updated.Permissions = perms
	updated.Email = strings.TrimSpace(in.Email)
	updated.LoginStatus = in.LoginStatus
	updated.UpdatedAt = s.now().UTC()
	return updated, nil
}

func (s *ConsoleService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.Err(domain.ErrValidation, err, "password is too long")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// respond re-renders after an action. actionErr wins over a render failure so
// the operator sees why the action failed.
func (s *ConsoleService) respond(ctx context.Context, selected, success string, actionErr error) (*ports.ConsoleResult, error) {
	view, renderErr := s.view(ctx, selected)
	if actionErr != nil {
		s.log.Warn().Err(actionErr).Msg("console action failed")
		return s.fail(view, actionErr), actionErr
	}
	if renderErr != nil {
		return s.fail(view, renderErr), renderErr
	}
	return &ports.ConsoleResult{
		Notice: &ports.Notice{Level: ports.NoticeSuccess, Message: success},
		View:   view,
	}, nil
}

func (s *ConsoleService) fail(view ports.ConsoleView, err error) *ports.ConsoleResult {
	return &ports.ConsoleResult{
		Notice: ErrorNotice(err),
		View:   view,
	}
}

func (s *ConsoleService) view(ctx context.Context, selected string) (ports.ConsoleView, error) {
	view := ports.ConsoleView{
		Clients:       []ports.ClientSummary{},
		Catalog:       slices.Clone(domain.DashboardCatalog),
		Placeholder:   placeholder,
		DefaultExpiry: s.defaultExpiry,
	}

	clients, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list clients")
		return view, fmt.Errorf("list clients: %w", err)
	}

	for _, c := range clients {
		view.Clients = append(view.Clients, toSummary(c))
		if c.Username == selected {
			view.Selected = &ports.ClientForm{
				Username:    c.Username,
				ExpiryDate:  c.ExpiryDate,
				Permissions: slices.Clone(c.Permissions),
				Email:       c.Email,
				LoginStatus: c.LoginStatus,
			}
		}
	}
	if len(view.Clients) > 0 {
		view.SelectionEnabled = true
		view.Placeholder = ""
	}
	return view, nil
}

func toSummary(c *domain.Client) ports.ClientSummary {
	return ports.ClientSummary{
		Username:    c.Username,
		ExpiryDate:  c.ExpiryDate,
		Permissions: slices.Clone(c.Permissions),
		Email:       c.Email,
		LoginStatus: c.LoginStatus,
	}
}

// ErrorNotice is the operator-facing notice for a failed console action.
func ErrorNotice(err error) *ports.Notice {
	return &ports.Notice{Level: ports.NoticeError, Message: noticeText(err)}
}

func noticeText(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return domain.Message(err)
	case errors.Is(err, domain.ErrClientExists):
		return "A client with this username already exists."
	case errors.Is(err, domain.ErrClientNotFound):
		return "Client not found."
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "Storage is unavailable, please try again later."
	}
	return "Unexpected error: " + err.Error()
}
