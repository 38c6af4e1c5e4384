package db

import (
	"context"
	"fmt"

	"kanban_board/internal/logger"
	"kanban_board/internal/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(dsn string) *pgxpool.Pool {
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return db
}

// Migrate applies every embedded migration. Statements are idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) ([]string, error) {
	all, err := migrations.All()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	applied := make([]string, 0, len(all))
	for _, m := range all {
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			return applied, fmt.Errorf("apply %s: %w", m.Name, err)
		}
		applied = append(applied, m.Name)
	}
	return applied, nil
}
