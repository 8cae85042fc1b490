// Package auth resolves bearer tokens to principals, issues and revokes
// sessions, and performs role checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/db"
)

var (
	// ErrUnauthenticated means no valid bearer token was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized means the caller is known but its role is not allowed.
	ErrUnauthorized = errors.New("unauthorized")
)

const TokenType = "Bearer"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    uuid.UUID
	Role      string
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// UserSource resolves the current role of a user. It returns db.ErrNotFound
// when the user no longer exists.
type UserSource interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (string, error)
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Config struct {
	SigningKey []byte
	TTL        time.Duration
	// RotateOnRefresh revokes the presented session when a token is
	// refreshed. When false the old token stays valid until logout or expiry.
	RotateOnRefresh bool
}

// Gate issues, verifies and revokes access tokens.
type Gate struct {
	signer   *Signer
	sessions SessionStore
	users    UserSource
	ttl      time.Duration
	rotate   bool
	now      func() time.Time
}

func NewGate(cfg Config, sessions SessionStore, users UserSource) *Gate {
	g := &Gate{
		signer:   NewSigner(cfg.SigningKey),
		sessions: sessions,
		users:    users,
		ttl:      cfg.TTL,
		rotate:   cfg.RotateOnRefresh,
		now:      time.Now,
	}
	g.signer.now = func() time.Time { return g.now() }
	return g
}

// Issue opens a session for the user and returns its signed token.
func (g *Gate) Issue(ctx context.Context, userID uuid.UUID, role string) (Token, error) {
	now := g.now().UTC().Truncate(time.Second)
	sess := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(g.ttl),
	}

	signed, err := g.signer.Sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID.String(),
			ID:        sess.ID.String(),
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		Role:             role,
	})
	if err != nil {
		return Token{}, err
	}
	if err := g.sessions.Create(ctx, sess); err != nil {
		return Token{}, fmt.Errorf("issue token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: TokenType, ExpiresAt: sess.ExpiresAt}, nil
}

// Authenticate resolves a raw bearer token. Every rejection of the token
// itself is reported as ErrUnauthenticated; store failures are returned
// wrapped.
func (g *Gate) Authenticate(ctx context.Context, bearer string) (*Principal, error) {
	if bearer == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := g.signer.Parse(bearer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrUnauthenticated)
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad token id", ErrUnauthenticated)
	}

	sess, err := g.sessions.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: session revoked", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if sess.UserID != userID || sess.Expired(g.now()) {
		return nil, fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}

	role, err := g.users.RoleOf(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: user gone", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return &Principal{
		UserID:    userID,
		Role:      role,
		SessionID: sessionID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// RevokeAll deletes every session of the user.
func (g *Gate) RevokeAll(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := g.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	return n, nil
}

// Refresh issues a new token for p. With rotation enabled the session of
// the presented token is deleted.
func (g *Gate) Refresh(ctx context.Context, p *Principal) (Token, error) {
	if p == nil {
		return Token{}, ErrUnauthenticated
	}
	tok, err := g.Issue(ctx, p.UserID, p.Role)
	if err != nil {
		return Token{}, err
	}
	if g.rotate {
		if err := g.sessions.Delete(ctx, p.SessionID); err != nil {
			return Token{}, fmt.Errorf("rotate session: %w", err)
		}
	}
	return tok, nil
}
