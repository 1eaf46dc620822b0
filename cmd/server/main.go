// Package main is the entry point of the birthday tracker API.
//
// main only reads configuration, builds the logger and the store, and hands
// them to internal/server. Everything else lives in internal/.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/rs/xid"

	"github.com/sakif/birthday-tracker/internal/config"
	"github.com/sakif/birthday-tracker/internal/database"
	"github.com/sakif/birthday-tracker/internal/logging"
	"github.com/sakif/birthday-tracker/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	// Defaults < .env < process environment. A bad value stops the process
	// before anything else starts.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger, logFile := logging.New(cfg.LogLevel, cfg.LogFile)
	defer logFile.Close()

	// Every line of this process carries the same instance id, which makes
	// interleaved logs from several replicas separable.
	logger = logger.With(slog.String("instance", xid.New().String()))
	slog.SetDefault(logger)

	// === 3. DATABASE ===
	// SQL statements are echoed to the log in development only.
	store, err := database.Open(context.Background(), cfg.DatabaseURL, logger, cfg.IsDevelopment())
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		logFile.Close()
		os.Exit(1)
	}

	// === 4. SERVE ===
	// Start blocks until SIGINT/SIGTERM and closes the store on return.
	srv := server.New(cfg, logger, store)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		logFile.Close()
		os.Exit(1)
	}
}
