package repository

import (
	"context"

	"kanban_board/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository stores refresh tokens.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.RefreshSession) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO auth_sessions (token, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		s.Token, s.UserID, s.ExpiresAt,
	).Scan(&s.CreatedAt)
	return translate(err)
}

func (r *SessionRepository) Get(ctx context.Context, token string) (*domain.RefreshSession, error) {
	var s domain.RefreshSession
	err := r.db.QueryRow(ctx,
		`SELECT token, user_id::text, expires_at, revoked, created_at
		 FROM auth_sessions
		 WHERE token = $1`,
		token,
	).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.Revoked, &s.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// Revoke marks a single refresh token as used. It reports whether the token was still live,
// which makes refresh-token rotation race free.
func (r *SessionRepository) Revoke(ctx context.Context, token string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE auth_sessions SET revoked = true WHERE token = $1 AND NOT revoked`,
		token,
	)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SessionRepository) RevokeAll(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE auth_sessions SET revoked = true WHERE user_id = $1 AND NOT revoked`,
		userID,
	)
	return translate(err)
}
