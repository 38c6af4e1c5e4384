package repository

import (
	"context"
	"fmt"
	"strings"

	"kanban_board/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id::text, user_id::text, title, status, created_at`

// ListByUser returns a user's tasks ordered by created_at.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string, ascending bool) ([]*domain.Task, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at `+order,
		userID,
	)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// Create inserts t and fills in the generated id and timestamp.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, status) VALUES ($1, $2, $3) RETURNING id::text, created_at`,
		t.UserID, t.Title, t.Status,
	).Scan(&t.ID, &t.CreatedAt)
	return translate(err)
}

// Update applies the patch and returns the stored row.
func (r *TaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}
	sets := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	args = append(args, id)

	var t domain.Task
	err := r.db.QueryRow(ctx,
		fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING `+taskColumns, strings.Join(sets, ", "), len(args)),
		args...,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
