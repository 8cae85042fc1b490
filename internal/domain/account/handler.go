package account

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/envelope"
	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/pkg/pagination"
)

const userNotFound = "User not found"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the account routes. authn guards the routes that
// need a caller; it is attached per route so unknown paths still 404.
func (h *Handler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout, authn)
	api.POST("/refresh", h.Refresh, authn)
	api.GET("/user", h.Me, authn)
	api.GET("/roles", h.Roles, authn)

	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.PATCH("/users/:id", h.PatchUser, authn)
}

func (h *Handler) Register(c echo.Context) error {
	raw, err := validation.DecodeBody(c.Request().Body)
	if err != nil {
		return envelope.FromError(c, err, "account.register", "")
	}
	u, tok, err := h.svc.Register(c.Request().Context(), raw)
	if err != nil {
		return envelope.FromError(c, err, "account.register", "")
	}
	return tokenResponse(c, "User Created", tok, u)
}

func (h *Handler) Login(c echo.Context) error {
	raw, err := validation.DecodeBody(c.Request().Body)
	if err != nil {
		return envelope.FromError(c, err, "account.login", "")
	}
	u, tok, err := h.svc.Login(c.Request().Context(), raw)
	if errors.Is(err, ErrInvalidCredentials) {
		return envelope.Unauthorized(c, "Invalid Credentials")
	}
	if err != nil {
		return envelope.FromError(c, err, "account.login", "")
	}
	return tokenResponse(c, "Logged In", tok, u)
}

func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.svc.Logout(ctx, auth.PrincipalFromContext(ctx)); err != nil {
		return envelope.FromError(c, err, "account.logout", "")
	}
	return envelope.Message(c, http.StatusOK, "Logged Out")
}

func (h *Handler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	u, tok, err := h.svc.Refresh(ctx, auth.PrincipalFromContext(ctx))
	if err != nil {
		return envelope.FromError(c, err, "account.refresh", "")
	}
	return tokenResponse(c, "Token Refreshed", tok, u)
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	u, err := h.svc.Me(ctx, auth.PrincipalFromContext(ctx))
	if err != nil {
		return envelope.FromError(c, err, "account.me", userNotFound)
	}
	return envelope.OK(c, "User found", u)
}

func (h *Handler) Roles(c echo.Context) error {
	return envelope.JSON(c, http.StatusOK, envelope.Body{
		"message": "Roles",
		"roles":   auth.Roles(),
	})
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg)
	if err != nil {
		return envelope.FromError(c, err, "account.list", "")
	}
	return envelope.List(c, "users", envelope.ListMessage("users", pg.Query, len(users)),
		users, pagination.NewPage(pg, total, len(users)))
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return envelope.NotFound(c, userNotFound)
	}
	u, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return envelope.FromError(c, err, "account.get", userNotFound)
	}
	return envelope.OK(c, "User found", u)
}

func (h *Handler) PatchUser(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return envelope.NotFound(c, userNotFound)
	}
	raw, err := validation.DecodeBody(c.Request().Body)
	if err != nil {
		return envelope.FromError(c, err, "account.patch", userNotFound)
	}
	ctx := c.Request().Context()
	u, err := h.svc.PatchUser(ctx, auth.PrincipalFromContext(ctx), id, raw)
	if err != nil {
		return envelope.FromError(c, err, "account.patch", userNotFound)
	}
	return envelope.OK(c, "User updated successfully", u)
}

func tokenResponse(c echo.Context, message string, tok auth.Token, u *User) error {
	return envelope.JSON(c, http.StatusOK, envelope.Body{
		"message":      message,
		"access_token": tok.AccessToken,
		"token_type":   tok.TokenType,
		"expires_at":   tok.ExpiresAt,
		"data":         u,
	})
}
