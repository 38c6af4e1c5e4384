package main

import (
	"context"
	"os"

	"kanban_board/internal/cli"
	"kanban_board/internal/config"
	"kanban_board/internal/logger"
)

var version = "dev"

func main() {
	cfg := config.LoadClient()
	logger.InitWriter(os.Stderr, cfg.LogLevel, false)

	if err := cli.Execute(context.Background(), cfg, version); err != nil {
		os.Exit(1)
	}
}
