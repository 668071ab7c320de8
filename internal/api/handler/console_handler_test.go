package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/core/ports"
)

type stubConsoleService struct {
	renderFn func(ctx context.Context, selected string) (*ports.ConsoleResult, error)
	addFn    func(ctx context.Context, in ports.AddClientInput) (*ports.ConsoleResult, error)
	updateFn func(ctx context.Context, in ports.UpdateClientInput) (*ports.ConsoleResult, error)
	deleteFn func(ctx context.Context, username string) (*ports.ConsoleResult, error)
	getFn    func(ctx context.Context, username string) (*ports.ClientSummary, error)
}

func (s *stubConsoleService) Render(ctx context.Context, selected string) (*ports.ConsoleResult, error) {
	if s.renderFn == nil {
		return &ports.ConsoleResult{View: ports.ConsoleView{Catalog: domain.DashboardCatalog}}, nil
	}
	return s.renderFn(ctx, selected)
}

func (s *stubConsoleService) AddClient(ctx context.Context, in ports.AddClientInput) (*ports.ConsoleResult, error) {
	return s.addFn(ctx, in)
}

func (s *stubConsoleService) UpdateClient(ctx context.Context, in ports.UpdateClientInput) (*ports.ConsoleResult, error) {
	return s.updateFn(ctx, in)
}

func (s *stubConsoleService) DeleteClient(ctx context.Context, username string) (*ports.ConsoleResult, error) {
	return s.deleteFn(ctx, username)
}

func (s *stubConsoleService) GetClient(ctx context.Context, username string) (*ports.ClientSummary, error) {
	return s.getFn(ctx, username)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func notice(level ports.NoticeLevel, msg string) *ports.Notice {
	return &ports.Notice{Level: level, Message: msg}
}

func decodeConsole(t *testing.T, rec *httptest.ResponseRecorder) consoleResponse {
	t.Helper()
	var resp consoleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestConsoleHandler_Create_Success(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		addFn: func(ctx context.Context, in ports.AddClientInput) (*ports.ConsoleResult, error) {
			if in.Username != "alice" || in.Password != "pw1" || in.ExpiryDate != "2024-12-31" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if len(in.Permissions) != 2 || in.Permissions[0] != "dashboard1" {
				t.Fatalf("unexpected permissions: %v", in.Permissions)
			}
			return &ports.ConsoleResult{
				Notice: notice(ports.NoticeSuccess, "Client 'alice' added successfully!"),
				View: ports.ConsoleView{
					Clients:          []ports.ClientSummary{{Username: "alice", ExpiryDate: "2024-12-31", Permissions: in.Permissions}},
					SelectionEnabled: true,
				},
			}, nil
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	body := strings.NewReader(`{"username":"alice","password":"pw1","expiry_date":"2024-12-31","permissions":["dashboard1","dashboard2"]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeConsole(t, rec)
	if resp.Notice == nil || resp.Notice.Level != "success" {
		t.Fatalf("expected success notice, got %+v", resp.Notice)
	}
	if len(resp.View.Clients) != 1 || resp.View.Clients[0].Username != "alice" {
		t.Fatalf("unexpected view: %+v", resp.View)
	}
	if strings.Contains(rec.Body.String(), "pw1") {
		t.Fatalf("password leaked into response")
	}
}

func TestConsoleHandler_Create_Duplicate(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		addFn: func(ctx context.Context, in ports.AddClientInput) (*ports.ConsoleResult, error) {
			return &ports.ConsoleResult{Notice: notice(ports.NoticeError, "A client with this username already exists.")},
				domain.ErrClientExists
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/clients", strings.NewReader(`{"username":"bob","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	_ = h.Create(e.NewContext(req, rec))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if resp := decodeConsole(t, rec); resp.Notice == nil || resp.Notice.Level != "error" {
		t.Fatalf("expected error notice, got %+v", resp.Notice)
	}
}

func TestConsoleHandler_Create_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		addFn: func(ctx context.Context, in ports.AddClientInput) (*ports.ConsoleResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/clients", strings.NewReader("not-json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	_ = h.Create(e.NewContext(req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeConsole(t, rec)
	if resp.Notice == nil || resp.Notice.Message != "invalid payload" {
		t.Fatalf("unexpected notice: %+v", resp.Notice)
	}
	if len(resp.View.Catalog) != len(domain.DashboardCatalog) {
		t.Fatalf("rejected request should still carry the view")
	}
}

func TestConsoleHandler_Create_UnknownDashboard(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		addFn: func(ctx context.Context, in ports.AddClientInput) (*ports.ConsoleResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	body := strings.NewReader(`{"username":"carol","password":"x","permissions":["dashboard9"]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	_ = h.Create(e.NewContext(req, rec))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp := decodeConsole(t, rec); resp.Notice == nil || !strings.Contains(resp.Notice.Message, "dashboard9") {
		t.Fatalf("unexpected notice: %+v", resp.Notice)
	}
}

func TestConsoleHandler_Create_BadDate(t *testing.T) {
	e := newEcho()
	h := NewConsoleHandler(&stubConsoleService{}, zerolog.Nop())

	body := strings.NewReader(`{"username":"carol","password":"x","expiry_date":"31/12/2024"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/clients", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	_ = h.Create(e.NewContext(req, rec))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestConsoleHandler_Update_UsesPathUsername(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		updateFn: func(ctx context.Context, in ports.UpdateClientInput) (*ports.ConsoleResult, error) {
			if in.Username != "alice" || in.Password != "pw2" || in.ExpiryDate != "2025-06-30" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.ConsoleResult{
				Notice: notice(ports.NoticeSuccess, "Client 'alice' updated successfully!"),
				View: ports.ConsoleView{
					Selected: &ports.ClientForm{Username: "alice", ExpiryDate: "2025-06-30", Permissions: []string{"dashboard3"}},
				},
			}, nil
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	body := strings.NewReader(`{"password":"pw2","expiry_date":"2025-06-30","permissions":["dashboard3"]}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/clients/alice", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/clients/:username")
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeConsole(t, rec)
	if resp.View.Selected == nil || resp.View.Selected.ExpiryDate != "2025-06-30" {
		t.Fatalf("expected selected form, got %+v", resp.View.Selected)
	}
}

func TestConsoleHandler_Update_NotFound(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		updateFn: func(ctx context.Context, in ports.UpdateClientInput) (*ports.ConsoleResult, error) {
			return &ports.ConsoleResult{Notice: notice(ports.NoticeError, "Client not found.")}, domain.ErrClientNotFound
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPut, "/v1/clients/ghost", strings.NewReader(`{"expiry_date":"2025-01-01"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("ghost")

	_ = h.Update(c)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestConsoleHandler_Update_MissingExpiry(t *testing.T) {
	e := newEcho()
	h := NewConsoleHandler(&stubConsoleService{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPut, "/v1/clients/alice", strings.NewReader(`{"permissions":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	_ = h.Update(c)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestConsoleHandler_Delete_StorageDown(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		deleteFn: func(ctx context.Context, username string) (*ports.ConsoleResult, error) {
			return &ports.ConsoleResult{Notice: notice(ports.NoticeError, "Storage is unavailable, please try again later.")},
				domain.Err(domain.ErrStorageUnavailable, nil, "disk gone")
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodDelete, "/v1/clients/alice", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	_ = h.Delete(c)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestConsoleHandler_Render_PassesSelection(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		renderFn: func(ctx context.Context, selected string) (*ports.ConsoleResult, error) {
			if selected != "bob" {
				t.Fatalf("unexpected selection %q", selected)
			}
			return &ports.ConsoleResult{View: ports.ConsoleView{Placeholder: "No clients added yet."}}, nil
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/console?selected=bob", nil)
	rec := httptest.NewRecorder()

	if err := h.Render(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeConsole(t, rec)
	if resp.View.Clients == nil || len(resp.View.Clients) != 0 {
		t.Fatalf("expected empty non-null client list")
	}
	if resp.View.Placeholder != "No clients added yet." {
		t.Fatalf("unexpected placeholder %q", resp.View.Placeholder)
	}
}

func TestConsoleHandler_Get_ReturnsError(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		getFn: func(ctx context.Context, username string) (*ports.ClientSummary, error) {
			return nil, domain.ErrClientNotFound
		},
	}
	h := NewConsoleHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("ghost")

	if err := h.Get(c); err != domain.ErrClientNotFound {
		t.Fatalf("expected ErrClientNotFound to reach the error handler, got %v", err)
	}
}

func TestStatusCode(t *testing.T) {
	cases := map[error]int{
		nil:                          http.StatusOK,
		domain.ErrValidation:         http.StatusUnprocessableEntity,
		domain.ErrClientExists:       http.StatusConflict,
		domain.ErrClientNotFound:     http.StatusNotFound,
		domain.ErrStorageUnavailable: http.StatusServiceUnavailable,
		context.Canceled:             http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := StatusCode(err); got != want {
			t.Fatalf("StatusCode(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestConsoleHandler_Reject_LogsRenderFailure(t *testing.T) {
	e := newEcho()
	stub := &stubConsoleService{
		renderFn: func(ctx context.Context, selected string) (*ports.ConsoleResult, error) {
			return &ports.ConsoleResult{View: ports.ConsoleView{Clients: []ports.ClientSummary{}}}, errors.New("list clients: disk gone")
		},
	}
	var logs bytes.Buffer
	h := NewConsoleHandler(stub, zerolog.New(&logs))

	req := httptest.NewRequest(http.MethodPost, "/v1/clients", strings.NewReader("not-json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	_ = h.Create(e.NewContext(req, rec))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeConsole(t, rec); resp.Notice == nil || resp.Notice.Message != "invalid payload" {
		t.Fatalf("unexpected notice: %+v", resp.Notice)
	}
	if !strings.Contains(logs.String(), "disk gone") {
		t.Fatalf("render failure not logged: %q", logs.String())
	}
}
