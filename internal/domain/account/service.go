package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/pkg/pagination"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Raw is a decoded JSON object body, member by member.
type Raw = map[string]json.RawMessage

type Service struct {
	users     UserRepository
	gate      *auth.Gate
	hasher    *auth.Hasher
	validator *validation.Validator
	tx        db.TxRunner
}

func NewService(users UserRepository, gate *auth.Gate, hasher *auth.Hasher, v *validation.Validator, tx db.TxRunner) *Service {
	return &Service{users: users, gate: gate, hasher: hasher, validator: v, tx: tx}
}

// Register creates a user with the default role and opens its first
// session. Both writes share one transaction.
func (s *Service) Register(ctx context.Context, raw Raw) (*User, auth.Token, error) {
	in, err := s.validator.Validate(ctx, registerRules, raw, validation.Options{})
	if err != nil {
		return nil, auth.Token{}, err
	}
	hash, err := s.hasher.Hash(in.String("password"))
	if err != nil {
		return nil, auth.Token{}, err
	}

	u := &User{
		Name:     in.String("name"),
		Email:    in.String("email"),
		Password: hash,
		Role:     auth.RoleUser,
	}
	var tok auth.Token
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			if _, ok := db.UniqueViolation(err); ok {
				return validation.Taken("email")
			}
			return err
		}
		t, err := s.gate.Issue(ctx, u.ID, u.Role)
		if err != nil {
			return err
		}
		tok = t
		return nil
	})
	if err != nil {
		return nil, auth.Token{}, err
	}
	return u, tok, nil
}

func (s *Service) Login(ctx context.Context, raw Raw) (*User, auth.Token, error) {
	in, err := s.validator.Validate(ctx, loginRules, raw, validation.Options{})
	if err != nil {
		return nil, auth.Token{}, err
	}

	u, err := s.users.GetByEmail(ctx, in.String("email"))
	if errors.Is(err, db.ErrNotFound) {
		return nil, auth.Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, auth.Token{}, err
	}
	ok, err := s.hasher.Check(u.Password, in.String("password"))
	if err != nil {
		return nil, auth.Token{}, err
	}
	if !ok {
		return nil, auth.Token{}, ErrInvalidCredentials
	}

	tok, err := s.gate.Issue(ctx, u.ID, u.Role)
	if err != nil {
		return nil, auth.Token{}, err
	}
	return u, tok, nil
}

// Logout revokes every session of the caller, not only the presented one.
func (s *Service) Logout(ctx context.Context, p *auth.Principal) error {
	if p == nil {
		return auth.ErrUnauthenticated
	}
	_, err := s.gate.RevokeAll(ctx, p.UserID)
	return err
}

func (s *Service) Refresh(ctx context.Context, p *auth.Principal) (*User, auth.Token, error) {
	u, err := s.Me(ctx, p)
	if err != nil {
		return nil, auth.Token{}, err
	}
	tok, err := s.gate.Refresh(ctx, p)
	if err != nil {
		return nil, auth.Token{}, err
	}
	return u, tok, nil
}

// Me returns the caller's own user.
func (s *Service) Me(ctx context.Context, p *auth.Principal) (*User, error) {
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, auth.ErrUnauthenticated
	}
	return u, err
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, pg pagination.Params) ([]*User, int, error) {
	return s.users.List(ctx, pg.Query, pg.Limit(), pg.Offset())
}

// PatchUser changes the name and/or role of user id on behalf of p. Admin
// accounts cannot be modified this way, and only admins may change a role.
func (s *Service) PatchUser(ctx context.Context, p *auth.Principal, id uuid.UUID, raw Raw) (*User, error) {
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == auth.RoleAdmin {
		return nil, fmt.Errorf("%w: target is an admin", auth.ErrUnauthorized)
	}

	in, err := s.validator.Validate(ctx, patchUserRules, raw, validation.Options{})
	if err != nil {
		return nil, err
	}
	if in.Has("role") {
		if err := auth.RequireRole(p, auth.RoleAdmin); err != nil {
			return nil, err
		}
		u.Role = in.String("role")
	}
	if in.Has("name") {
		u.Name = in.String("name")
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RoleSource resolves roles for the auth gate from the user repository.
type RoleSource struct {
	users UserRepository
}

func NewRoleSource(users UserRepository) *RoleSource {
	return &RoleSource{users: users}
}

func (s *RoleSource) RoleOf(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}
