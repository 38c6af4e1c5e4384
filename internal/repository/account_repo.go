package repository

import (
	"context"
	"strings"

	"kanban_board/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts the account; the on_auth_user_created trigger materializes the profile row.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	if a.Metadata == nil {
		a.Metadata = map[string]string{}
	}
	err := r.db.QueryRow(ctx,
		`INSERT INTO auth_users (email, password_hash, user_metadata)
		 VALUES ($1, $2, $3)
		 RETURNING id::text, created_at`,
		strings.ToLower(a.Email),
		a.PasswordHash,
		a.Metadata,
	).Scan(&a.ID, &a.CreatedAt)
	return translate(err)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id::text, email, password_hash, user_metadata, created_at
		 FROM auth_users
		 WHERE email = $1`,
		strings.ToLower(email),
	)
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Metadata, &a.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id::text, email, password_hash, user_metadata, created_at
		 FROM auth_users
		 WHERE id = $1`,
		id,
	)
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Metadata, &a.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}
