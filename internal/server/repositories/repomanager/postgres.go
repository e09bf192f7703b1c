// Package repomanager wires repository constructors and goose migrations for
// each supported database dialect.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/suggestionapp/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends repositories for PostgreSQL and runs the
// postgres migration set.
type PostgresRepositoryManager struct {
	repositories
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, dir)
}

// RunMigrations applies the embedded postgres migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "postgres", "postgres")
}

// TxOptions runs read-modify-write transactions at SERIALIZABLE so a
// concurrent toggle on the same suggestion aborts instead of losing a vote.
func (m *PostgresRepositoryManager) TxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelSerializable}
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
