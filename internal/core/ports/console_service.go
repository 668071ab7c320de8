package ports

import (
	"context"
)

// NoneSelected is the sentinel the edit selector sends when no client is chosen.
const NoneSelected = "Select"

// AddClientInput carries the fields of the "add client" form.
type AddClientInput struct {
	Username    string
	Password    string
	ExpiryDate  string // YYYY-MM-DD; empty falls back to the console default
	Permissions []string
	Email       string
	LoginStatus bool
}

// UpdateClientInput carries the full replacement for an existing client.
// An empty Password keeps the stored credential.
type UpdateClientInput struct {
	Username    string
	Password    string
	ExpiryDate  string
	Permissions []string
	Email       string
	LoginStatus bool
}

// NoticeLevel classifies the banner shown after an operator action.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is the confirmation or error message produced by an action.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// ClientSummary is one row of the current-clients listing.
type ClientSummary struct {
	Username    string
	ExpiryDate  string
	Permissions []string
	Email       string
	LoginStatus bool
}

// ClientForm is the prefilled edit form for the selected client. The
// password is never echoed back.
type ClientForm struct {
	Username    string
	ExpiryDate  string
	Permissions []string
	Email       string
	LoginStatus bool
}

// ConsoleView is everything a presentation needs to draw the console.
type ConsoleView struct {
	Clients []ClientSummary
	Catalog []string
	// SelectionEnabled is false when there is nothing to select; Placeholder
	// then holds the text to show instead of an empty selector.
	SelectionEnabled bool
	Placeholder      string
	DefaultExpiry    string
	// Selected is nil when no client is selected; the edit and delete
	// section is suppressed in that case.
	Selected *ClientForm
}

// ConsoleResult pairs the refreshed view with the outcome of the action.
type ConsoleResult struct {
	Notice *Notice
	View   ConsoleView
}

// ConsoleService is the operator-facing orchestration over ClientRepository.
// Every method returns a renderable result, also when it returns an error.
type ConsoleService interface {
	Render(ctx context.Context, selected string) (*ConsoleResult, error)
	AddClient(ctx context.Context, input AddClientInput) (*ConsoleResult, error)
	UpdateClient(ctx context.Context, input UpdateClientInput) (*ConsoleResult, error)
	DeleteClient(ctx context.Context, username string) (*ConsoleResult, error)
	GetClient(ctx context.Context, username string) (*ClientSummary, error)
}
