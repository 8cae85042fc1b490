package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const principalKey contextKey = "auth_principal"

// UnauthenticatedMessage is the body message of a 401 for a missing or
// invalid token.
const UnauthenticatedMessage = "Unauthenticated."

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

// Middleware authenticates the request and stores the principal in the
// request context. Routes behind it always have a principal.
func Middleware(g *Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, UnauthenticatedMessage)
			}

			ctx := c.Request().Context()
			p, err := g.Authenticate(ctx, tok)
			if errors.Is(err, ErrUnauthenticated) {
				return echo.NewHTTPError(http.StatusUnauthorized, UnauthenticatedMessage)
			}
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(WithPrincipal(ctx, p)))
			return next(c)
		}
	}
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
