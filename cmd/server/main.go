// Package main is the entry point for the programmer battle API server.
//
// main stays minimal: read configuration, build the logger, hand both to
// the server and block until it shuts down. Everything else lives under
// internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/programmer-battle/internal/config"
	"github.com/sakif/programmer-battle/internal/repository/sqlite"
	"github.com/sakif/programmer-battle/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// Environment variables override an optional .env file.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// === 3. DATABASE DIRECTORY ===
	// SQLite creates the file but not its parent directory.
	if cfg.DatabaseURL == "" && cfg.DBPath != sqlite.MemoryPath {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
