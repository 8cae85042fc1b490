package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinic/clinic/internal/platform/db"
)

// SessionRepoPG stores sessions in the auth_session table.
type SessionRepoPG struct {
	q db.Querier
}

func NewSessionRepoPG(q db.Querier) *SessionRepoPG {
	return &SessionRepoPG{q: q}
}

func (r *SessionRepoPG) Create(ctx context.Context, s *Session) error {
	_, err := db.Conn(ctx, r.q).Exec(ctx, `
		INSERT INTO auth_session (id, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		s.ID, s.UserID, s.IssuedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepoPG) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	var s Session
	err := db.Conn(ctx, r.q).QueryRow(ctx, `
		SELECT id, user_id, issued_at, expires_at FROM auth_session WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.IssuedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Conn(ctx, r.q).Exec(ctx, `DELETE FROM auth_session WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepoPG) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	tag, err := db.Conn(ctx, r.q).Exec(ctx, `DELETE FROM auth_session WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// PurgeExpired deletes sessions that expired before now.
func (r *SessionRepoPG) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Conn(ctx, r.q).Exec(ctx, `DELETE FROM auth_session WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
