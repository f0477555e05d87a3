package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mega-user-proxy/internal/model"
	"mega-user-proxy/internal/service"
)

// UserHandler serves GET /api/user by relaying the caller's session to the
// Mega service.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger.With("component", "user_handler"),
	}
}

// Get forwards the inbound Cookie header upstream and answers with
// {"data": <upstream JSON>}. Failures are returned to Echo's error handler.
func (h *UserHandler) Get(c echo.Context) error {
	req := c.Request()

	// HTTP/2 clients may split cookies across several header fields.
	cookie := strings.Join(req.Header.Values(echo.HeaderCookie), "; ")

	payload, err := h.service.Fetch(&model.UserRequest{
		Ctx:       req.Context(),
		Cookie:    cookie,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, model.Envelope{Data: payload})
}
