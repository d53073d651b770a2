package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/feedscribe/feedscribe/migrations"
)

// slogGooseLogger adapts goose's logger interface to slog so migration output
// lands in the structured log like everything else.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error("migration failure", slog.String("message", fmt.Sprintf(strings.TrimSpace(format), v...)))
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info("migration", slog.String("message", fmt.Sprintf(strings.TrimSpace(format), v...)))
}

// runMigrations executes the given goose command (up, down or status) against
// the embedded migration files.
func runMigrations(db *sql.DB, command string, logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.Up(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	default:
		return fmt.Errorf("unknown migration command %q (expected up, down or status)", command)
	}
	if err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}
	return nil
}
