package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/suggestionapp/internal/dbx"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/categories"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/statuses"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/suggestions"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported database dialects.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// RepositoryManager hands out typed repositories bound to either the pool or
// an open transaction, so services decide the transactional scope.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	TxOptions() *sql.TxOptions
	Users(db dbx.DBTX) users.Repository
	Suggestions(db dbx.DBTX) suggestions.Repository
	Categories(db dbx.DBTX) categories.Repository
	Statuses(db dbx.DBTX) statuses.Repository
}

// repositories holds the constructors shared by every dialect.
type repositories struct{}

func (repositories) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (repositories) Suggestions(db dbx.DBTX) suggestions.Repository {
	return suggestions.NewPostgresRepository(db)
}

func (repositories) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewPostgresRepository(db)
}

func (repositories) Statuses(db dbx.DBTX) statuses.Repository {
	return statuses.NewPostgresRepository(db)
}

// New returns the RepositoryManager for dialect.
func New(dialect string) (RepositoryManager, error) {
	switch dialect {
	case DialectPostgres:
		return NewPostgresRepositoryManager(), nil
	case DialectSQLite:
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

// driverName maps a dialect to its registered database/sql driver.
func driverName(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "pgx", nil
	case DialectSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

// OpenDB opens a pool for dialect and verifies it with a ping.
func OpenDB(ctx context.Context, dialect, dsn string) (*sql.DB, error) {
	driver, err := driverName(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent transactions
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, nil
}
