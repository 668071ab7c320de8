package handler

import (
	"github.com/99minutos/client-console/internal/core/ports"
)

// --- Request → Service input ---

func toAddInput(req addClientRequest) ports.AddClientInput {
	return ports.AddClientInput{
		Username:    req.Username,
		Password:    req.Password,
		ExpiryDate:  req.ExpiryDate,
		Permissions: req.Permissions,
		Email:       req.Email,
		LoginStatus: req.LoginStatus,
	}
}

func toUpdateInput(username string, req updateClientRequest) ports.UpdateClientInput {
	return ports.UpdateClientInput{
		Username:    username,
		Password:    req.Password,
		ExpiryDate:  req.ExpiryDate,
		Permissions: req.Permissions,
		Email:       req.Email,
		LoginStatus: req.LoginStatus,
	}
}

// --- Service result → HTTP response ---

func toConsoleResponse(r *ports.ConsoleResult) consoleResponse {
	resp := consoleResponse{View: toViewResponse(r.View)}
	if r.Notice != nil {
		resp.Notice = &noticeResponse{Level: string(r.Notice.Level), Message: r.Notice.Message}
	}
	return resp
}

func toViewResponse(v ports.ConsoleView) viewResponse {
	resp := viewResponse{
		Clients:          toClientResponses(v.Clients),
		Catalog:          v.Catalog,
		SelectionEnabled: v.SelectionEnabled,
		Placeholder:      v.Placeholder,
		DefaultExpiry:    v.DefaultExpiry,
	}
	if resp.Catalog == nil {
		resp.Catalog = []string{}
	}
	if v.Selected != nil {
		resp.Selected = &clientResponse{
			Username:    v.Selected.Username,
			ExpiryDate:  v.Selected.ExpiryDate,
			Permissions: nonNil(v.Selected.Permissions),
			Email:       v.Selected.Email,
			LoginStatus: v.Selected.LoginStatus,
		}
	}
	return resp
}

func toClientResponses(in []ports.ClientSummary) []clientResponse {
	out := make([]clientResponse, 0, len(in))
	for _, c := range in {
		out = append(out, toClientResponse(c))
	}
	return out
}

func toClientResponse(c ports.ClientSummary) clientResponse {
	return clientResponse{
		Username:    c.Username,
		ExpiryDate:  c.ExpiryDate,
		Permissions: nonNil(c.Permissions),
		Email:       c.Email,
		LoginStatus: c.LoginStatus,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
