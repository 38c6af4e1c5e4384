package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"kanban_board/internal/db"
	"kanban_board/internal/logger"
	"kanban_board/internal/migrations"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations (default lists them)")
	flag.Parse()

	if !*apply {
		all, err := migrations.All()
		if err != nil {
			logger.Fatal("load migrations", "error", err)
		}
		for _, m := range all {
			fmt.Println(m.Name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	pool := db.Connect(dsn)
	defer pool.Close()

	applied, err := db.Migrate(context.Background(), pool)
	for _, name := range applied {
		fmt.Printf("applied %s\n", name)
	}
	if err != nil {
		logger.Fatal("migration failed", "error", err)
	}
}
