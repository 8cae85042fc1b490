package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/db"
)

type fakeUsers struct {
	roles map[uuid.UUID]string
	err   error
}

func (f *fakeUsers) RoleOf(_ context.Context, id uuid.UUID) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	role, ok := f.roles[id]
	if !ok {
		return "", db.ErrNotFound
	}
	return role, nil
}

func newTestGate(t *testing.T, rotate bool) (*Gate, *MemorySessionStore, *fakeUsers) {
	t.Helper()
	store := NewMemorySessionStore(0)
	t.Cleanup(store.Close)
	users := &fakeUsers{roles: make(map[uuid.UUID]string)}
	g := NewGate(Config{SigningKey: testSigningKey, TTL: time.Hour, RotateOnRefresh: rotate}, store, users)
	return g, store, users
}

func TestGate_IssueAndAuthenticate(t *testing.T) {
	g, _, users := newTestGate(t, true)
	ctx := context.Background()
	id := uuid.New()
	users.roles[id] = RoleDoctor

	tok, err := g.Issue(ctx, id, RoleDoctor)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if tok.TokenType != "Bearer" || tok.AccessToken == "" {
		t.Errorf("unexpected token %+v", tok)
	}
	if tok.ExpiresAt.Before(time.Now().Add(59 * time.Minute)) {
		t.Errorf("expected expiry about an hour out, got %v", tok.ExpiresAt)
	}

	p, err := g.Authenticate(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.UserID != id || p.Role != RoleDoctor {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestGate_RoleComesFromUserSource(t *testing.T) {
	g, _, users := newTestGate(t, true)
	ctx := context.Background()
	id := uuid.New()
	users.roles[id] = RoleUser

	tok, _ := g.Issue(ctx, id, RoleUser)
	users.roles[id] = RoleAdmin

	p, err := g.Authenticate(ctx, tok.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.Role != RoleAdmin {
		t.Errorf("expected current role admin, got %s", p.Role)
	}
}

func TestGate_AuthenticateRejects(t *testing.T) {
	g, _, users := newTestGate(t, true)
	ctx := context.Background()
	id := uuid.New()
	users.roles[id] = RoleUser
	tok, _ := g.Issue(ctx, id, RoleUser)

	other, _, _ := newTestGate(t, true)
	other.signer = NewSigner([]byte("a-completely-different-signing-key"))
	foreign, _ := other.Issue(ctx, id, RoleUser)

	for name, bearer := range map[string]string{
		"empty":       "",
		"garbage":     "abc.def.ghi",
		"foreign key": foreign.AccessToken,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := g.Authenticate(ctx, bearer); !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}

	t.Run("deleted user", func(t *testing.T) {
		delete(users.roles, id)
		if _, err := g.Authenticate(ctx, tok.AccessToken); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestGate_UserSourceFailureIsNotUnauthenticated(t *testing.T) {
	g, _, users := newTestGate(t, true)
	ctx := context.Background()
	id := uuid.New()
	tok, _ := g.Issue(ctx, id, RoleUser)
	users.err = errors.New("connection reset")

	_, err := g.Authenticate(ctx, tok.AccessToken)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestGate_ExpiredSession(t *testing.T) {
	g, _, users := newTestGate(t, true)
	ctx := context.Background()
	id := uuid.New()
	users.roles[id] = RoleUser

	issuedAt := time.Now().Add(-2 * time.Hour)
	g.now = func() time.Time { return issuedAt }
	tok, _ := g.Issue(ctx, id, RoleUser)
	g.now = time.Now

	if _, err := g.Authenticate(ctx, tok.AccessToken); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGate_RevokeAll(t *testing.T) {
	g, _, users := newTestGate(t, true)
	ctx := context.Background()
	id := uuid.New()
	users.roles[id] = RoleUser

	t1, _ := g.Issue(ctx, id, RoleUser)
	t2, _ := g.Issue(ctx, id, RoleUser)

	n, err := g.RevokeAll(ctx, id)
	if err != nil {
		t.Fatalf("RevokeAll: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 revoked, got %d", n)
	}
	for _, tok := range []Token{t1, t2} {
		if _, err := g.Authenticate(ctx, tok.AccessToken); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("expected revoked token rejected, got %v", err)
		}
	}
}

func TestGate_RefreshRotates(t *testing.T) {
	g, _, users := newTestGate(t, true)
	ctx := context.Background()
	id := uuid.New()
	users.roles[id] = RoleUser

	old, _ := g.Issue(ctx, id, RoleUser)
	p, _ := g.Authenticate(ctx, old.AccessToken)

	fresh, err := g.Refresh(ctx, p)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fresh.AccessToken == old.AccessToken {
		t.Error("expected a new token")
	}
	if _, err := g.Authenticate(ctx, fresh.AccessToken); err != nil {
		t.Errorf("new token rejected: %v", err)
	}
	if _, err := g.Authenticate(ctx, old.AccessToken); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected old token revoked, got %v", err)
	}
}

func TestGate_RefreshWithoutRotation(t *testing.T) {
	g, _, users := newTestGate(t, false)
	ctx := context.Background()
	id := uuid.New()
	users.roles[id] = RoleUser

	old, _ := g.Issue(ctx, id, RoleUser)
	p, _ := g.Authenticate(ctx, old.AccessToken)
	if _, err := g.Refresh(ctx, p); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := g.Authenticate(ctx, old.AccessToken); err != nil {
		t.Errorf("expected old token still valid, got %v", err)
	}
}

func TestGate_RefreshNilPrincipal(t *testing.T) {
	g, _, _ := newTestGate(t, true)
	if _, err := g.Refresh(context.Background(), nil); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}
