package store

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationDir = "migrations"

func prepareGoose() error {
	goose.SetBaseFS(migrationFS)
	goose.SetTableName("schema_migrations")
	return goose.SetDialect("postgres")
}

func Migrate(ctx context.Context, db *sql.DB) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, migrationDir)
}

// MigrateTo applies migrations up to and including version.
func MigrateTo(ctx context.Context, db *sql.DB, version int64) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	return goose.UpToContext(ctx, db, migrationDir, version)
}

func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := prepareGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
