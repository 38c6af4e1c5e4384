package repository

import (
	"context"

	"kanban_board/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id::text, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(email, ''), is_admin, created_at`

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM profiles
		 WHERE id = $1`,
		id,
	)
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.IsAdmin, &p.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// List returns every profile ordered by creation time.
func (r *ProfileRepository) List(ctx context.Context, ascending bool) ([]*domain.Profile, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	rows, err := r.db.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at `+order)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanProfiles(rows)
}

// SetAdmin updates the admin flag and returns the updated row.
func (r *ProfileRepository) SetAdmin(ctx context.Context, id string, isAdmin bool) (*domain.Profile, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE profiles SET is_admin = $1 WHERE id = $2
		 RETURNING `+profileColumns,
		isAdmin, id,
	)
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.IsAdmin, &p.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Delete removes the profile; tasks and the auth account go with it.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProfiles(rows pgx.Rows) ([]*domain.Profile, error) {
	var res []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.IsAdmin, &p.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}
