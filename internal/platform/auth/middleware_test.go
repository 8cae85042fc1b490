package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func runMiddleware(t *testing.T, g *Gate, header string) (*Principal, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *Principal
	handler := func(c echo.Context) error {
		got = PrincipalFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}
	err := Middleware(g)(handler)(c)
	return got, err
}

func TestMiddleware_ValidToken(t *testing.T) {
	g, _, users := newTestGate(t, true)
	id := uuid.New()
	users.roles[id] = RoleAdmin
	tok, _ := g.Issue(context.Background(), id, RoleAdmin)

	p, err := runMiddleware(t, g, "Bearer "+tok.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || p.UserID != id || p.Role != RoleAdmin {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestMiddleware_Rejects(t *testing.T) {
	g, _, _ := newTestGate(t, true)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Token abc123"},
		{"missing token", "Bearer"},
		{"empty value", "Bearer "},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"invalid token", "Bearer invalid.token.here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := runMiddleware(t, g, tt.header)
			if p != nil {
				t.Error("handler must not run")
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if he.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", he.Code)
			}
			if he.Message != UnauthenticatedMessage {
				t.Errorf("unexpected message %v", he.Message)
			}
		})
	}
}

func TestMiddleware_StoreFailure(t *testing.T) {
	g, _, users := newTestGate(t, true)
	tok, _ := g.Issue(context.Background(), uuid.New(), RoleUser)
	users.err = errors.New("db down")

	_, err := runMiddleware(t, g, "Bearer "+tok.AccessToken)
	var he *echo.HTTPError
	if err == nil || errors.As(err, &he) {
		t.Errorf("expected a plain internal error, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
		{"Bearer", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPrincipalFromContext_Empty(t *testing.T) {
	if p := PrincipalFromContext(context.Background()); p != nil {
		t.Errorf("expected nil, got %+v", p)
	}
}
