package handler

import (
	"errors"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/client-console/internal/core/domain"
	"github.com/99minutos/client-console/internal/core/ports"
)

// ConsoleHandler exposes the admin console over HTTP. Mutating endpoints
// always answer with the refreshed console, also on failure.
type ConsoleHandler struct {
	service ports.ConsoleService
	log     zerolog.Logger
}

func NewConsoleHandler(service ports.ConsoleService, log zerolog.Logger) *ConsoleHandler {
	return &ConsoleHandler{service: service, log: log}
}

// StatusCode maps console and repository errors to HTTP status codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrClientExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrClientNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Render handles GET /v1/console.
//
// @Summary      Render the console
// @Description  Lists every client and, when selected names one of them, prefills the edit form.
// @Tags         console
// @Produce      json
// @Param        selected  query     string  false  "Username to edit; \"Select\" or empty for none"
// @Success      200       {object}  consoleResponse
// @Failure      503       {object}  consoleResponse
// @Router       /v1/console [get]
func (h *ConsoleHandler) Render(c echo.Context) error {
	res, err := h.service.Render(c.Request().Context(), c.QueryParam("selected"))
	return c.JSON(StatusCode(err), toConsoleResponse(res))
}

// List handles GET /v1/clients.
//
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Success      200  {object}  listClientsResponse
// @Failure      503  {object}  map[string]string
// @Router       /v1/clients [get]
func (h *ConsoleHandler) List(c echo.Context) error {
	res, err := h.service.Render(c.Request().Context(), ports.NoneSelected)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listClientsResponse{Clients: toClientResponses(res.View.Clients)})
}

// Get handles GET /v1/clients/:username.
//
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        username  path      string  true  "Client username"
// @Success      200       {object}  clientResponse
// @Failure      404       {object}  map[string]string
// @Failure      503       {object}  map[string]string
// @Router       /v1/clients/{username} [get]
func (h *ConsoleHandler) Get(c echo.Context) error {
	summary, err := h.service.GetClient(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toClientResponse(*summary))
}

// Create handles POST /v1/clients.
//
// @Summary      Add a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      addClientRequest  true  "New client"
// @Success      201   {object}  consoleResponse
// @Failure      400   {object}  consoleResponse
// @Failure      409   {object}  consoleResponse
// @Failure      422   {object}  consoleResponse
// @Failure      503   {object}  consoleResponse
// @Router       /v1/clients [post]
func (h *ConsoleHandler) Create(c echo.Context) error {
	var req addClientRequest
	if err := c.Bind(&req); err != nil {
		return h.reject(c, http.StatusBadRequest, ports.NoneSelected, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return h.reject(c, http.StatusUnprocessableEntity, ports.NoneSelected, err.Error())
	}

	res, err := h.service.AddClient(c.Request().Context(), toAddInput(req))
	if err != nil {
		return c.JSON(StatusCode(err), toConsoleResponse(res))
	}
	return c.JSON(http.StatusCreated, toConsoleResponse(res))
}

// Update handles PUT /v1/clients/:username.
//
// @Summary      Replace a client's password, expiry date and permissions
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        username  path      string               true  "Client username"
// @Param        body      body      updateClientRequest  true  "Replacement values"
// @Success      200       {object}  consoleResponse
// @Failure      400       {object}  consoleResponse
// @Failure      404       {object}  consoleResponse
// @Failure      422       {object}  consoleResponse
// @Failure      503       {object}  consoleResponse
// @Router       /v1/clients/{username} [put]
func (h *ConsoleHandler) Update(c echo.Context) error {
	username := c.Param("username")

	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return h.reject(c, http.StatusBadRequest, username, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return h.reject(c, http.StatusUnprocessableEntity, username, err.Error())
	}

	res, err := h.service.UpdateClient(c.Request().Context(), toUpdateInput(username, req))
	return c.JSON(StatusCode(err), toConsoleResponse(res))
}

// Delete handles DELETE /v1/clients/:username. Unknown usernames succeed.
//
// @Summary      Delete a client
// @Tags         clients
// @Produce      json
// @Param        username  path      string  true  "Client username"
// @Success      200       {object}  consoleResponse
// @Failure      503       {object}  consoleResponse
// @Router       /v1/clients/{username} [delete]
func (h *ConsoleHandler) Delete(c echo.Context) error {
	res, err := h.service.DeleteClient(c.Request().Context(), c.Param("username"))
	return c.JSON(StatusCode(err), toConsoleResponse(res))
}

// Catalog handles GET /v1/catalog.
//
// @Summary      List grantable dashboards
// @Tags         console
// @Produce      json
// @Success      200  {object}  catalogResponse
// @Router       /v1/catalog [get]
func (h *ConsoleHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, catalogResponse{Dashboards: slices.Clone(domain.DashboardCatalog)})
}

// reject answers a request the console never saw with the current view and
// an error notice.
func (h *ConsoleHandler) reject(c echo.Context, status int, selected, message string) error {
	res, err := h.service.Render(c.Request().Context(), selected)
	if err != nil {
		h.log.Error().Err(err).Str("selected", selected).Msg("render console for rejected request")
	}
	if res == nil {
		res = &ports.ConsoleResult{}
	}
	res.Notice = &ports.Notice{Level: ports.NoticeError, Message: message}
	return c.JSON(status, toConsoleResponse(res))
}
