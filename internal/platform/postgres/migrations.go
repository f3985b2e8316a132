package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationTableName keeps goose bookkeeping under our own name so a shared
// database can host other goose-managed schemas.
const migrationTableName = "homeroom_schema_migrations"

// MigrateUp applies all pending schema migrations from the embedded
// migration set.
func MigrateUp(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationTableName)
	goose.SetLogger(&gooseSlogLogger{logger: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	log.Info("database migrations applied", slog.Int64("version", version))
	return nil
}

// gooseSlogLogger adapts goose's logger interface to slog.
type gooseSlogLogger struct {
	logger *slog.Logger
}

func (l *gooseSlogLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *gooseSlogLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}
