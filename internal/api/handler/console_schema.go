package handler

// --- Requests ---

// addClientRequest is the "add client" form. Missing username or password is
// reported by the console itself so the operator sees its message.
type addClientRequest struct {
	Username    string   `json:"username"     validate:"max=64"`
	Password    string   `json:"password"     validate:"max=72"`
	ExpiryDate  string   `json:"expiry_date"  validate:"omitempty,datetime=2006-01-02" example:"2024-12-31"`
	Permissions []string `json:"permissions"  validate:"dive,dashboard"                example:"dashboard1,dashboard2"`
	Email       string   `json:"email"        validate:"omitempty,email"`
	LoginStatus bool     `json:"login_status"`
}

// updateClientRequest replaces every mutable field of the client named in the
// path. An empty password keeps the current one.
type updateClientRequest struct {
	Password    string   `json:"password"     validate:"max=72"`
	ExpiryDate  string   `json:"expiry_date"  validate:"required,datetime=2006-01-02" example:"2025-06-30"`
	Permissions []string `json:"permissions"  validate:"dive,dashboard"               example:"dashboard3"`
	Email       string   `json:"email"        validate:"omitempty,email"`
	LoginStatus bool     `json:"login_status"`
}

// --- Responses ---

type noticeResponse struct {
	Level   string `json:"level" example:"success"`
	Message string `json:"message" example:"Client 'alice' added successfully!"`
}

type clientResponse struct {
	Username    string   `json:"username" example:"alice"`
	ExpiryDate  string   `json:"expiry_date" example:"2024-12-31"`
	Permissions []string `json:"permissions"`
	Email       string   `json:"email,omitempty"`
	LoginStatus bool     `json:"login_status"`
}

type viewResponse struct {
	Clients          []clientResponse `json:"clients"`
	Catalog          []string         `json:"catalog"`
	SelectionEnabled bool             `json:"selection_enabled"`
	Placeholder      string           `json:"placeholder,omitempty" example:"No clients added yet."`
	DefaultExpiry    string           `json:"default_expiry" example:"2024-12-31"`
	Selected         *clientResponse  `json:"selected,omitempty"`
}

type consoleResponse struct {
	Notice *noticeResponse `json:"notice,omitempty"`
	View   viewResponse    `json:"view"`
}

type listClientsResponse struct {
	Clients []clientResponse `json:"clients"`
}

type catalogResponse struct {
	Dashboards []string `json:"dashboards"`
}
