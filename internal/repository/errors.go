package repository

import (
	"errors"

	"kanban_board/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// postgres error codes we translate
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgFKViolation     = "23503"
	pgInvalidText     = "22P02"
)

// translate maps driver errors onto domain sentinels so callers never import pgx.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrEmailTaken
		case pgCheckViolation:
			return domain.ErrInvalidStatus
		case pgInvalidText, pgFKViolation:
			// malformed uuid or a missing parent row both look like "no such row" to callers
			return domain.ErrNotFound
		}
	}
	return err
}
