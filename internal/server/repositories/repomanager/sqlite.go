package repomanager

import (
	"context"
	"database/sql"
)

// SQLiteRepositoryManager vends repositories for SQLite. SQLite transactions
// are already serialized by the database lock.
type SQLiteRepositoryManager struct {
	repositories
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "sqlite3", "sqlite")
}

func (m *SQLiteRepositoryManager) TxOptions() *sql.TxOptions {
	return nil
}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}
