// Package suggestions provides the SQL-backed suggestion repository. The
// statements stick to the subset shared by PostgreSQL and SQLite so the same
// repository serves both dialects.
package suggestions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/suggestionapp/internal/common"
	"github.com/dmitrijs2005/suggestionapp/internal/dbx"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, suggestion, description, date_created, category, author_id, author_name,
		user_votes, suggestion_status, owner_notes, approved_for_release, archived, rejected`

var (
	insertQuery = `INSERT INTO ` + models.SuggestionCollection + ` (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	selectByIDQuery = `SELECT ` + columns + ` FROM ` + models.SuggestionCollection + `
		WHERE id = $1`

	selectActiveQuery = `SELECT ` + columns + ` FROM ` + models.SuggestionCollection + `
		WHERE archived = false
		ORDER BY date_created, id`

	selectByAuthorQuery = `SELECT ` + columns + ` FROM ` + models.SuggestionCollection + `
		WHERE author_id = $1
		ORDER BY date_created, id`

	replaceQuery = `UPDATE ` + models.SuggestionCollection + ` SET
		suggestion = $2, description = $3, date_created = $4, category = $5, author_id = $6,
		author_name = $7, user_votes = $8, suggestion_status = $9, owner_notes = $10,
		approved_for_release = $11, archived = $12, rejected = $13
		WHERE id = $1`
)

// PostgresRepository implements suggestion storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts s under a fresh id, overwriting any id already set.
func (r *PostgresRepository) Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error) {
	s.ID = uuid.NewString()

	args, err := rowArgs(s)
	if err != nil {
		s.ID = ""
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, insertQuery, args...); err != nil {
		s.ID = ""
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

// GetByID returns common.ErrorNotFound when no suggestion has the id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	s, err := scanSuggestion(r.db.QueryRowContext(ctx, selectByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// ListActive returns every suggestion that is not archived, oldest first.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*models.Suggestion, error) {
	return r.list(ctx, selectActiveQuery)
}

// ListByAuthor returns all of the author's suggestions, archived ones included.
func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Suggestion, error) {
	return r.list(ctx, selectByAuthorQuery, authorID)
}

// Replace overwrites the stored document with the same id.
func (r *PostgresRepository) Replace(ctx context.Context, s *models.Suggestion) error {
	args, err := rowArgs(s)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, replaceQuery, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Suggestion, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select suggestions: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Suggestion, 0)
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func rowArgs(s *models.Suggestion) ([]any, error) {
	category, err := dbx.JSONText(s.Category)
	if err != nil {
		return nil, err
	}
	votes, err := dbx.JSONText(s.UserVotes)
	if err != nil {
		return nil, err
	}
	status, err := dbx.JSONText(s.SuggestionStatus)
	if err != nil {
		return nil, err
	}

	return []any{
		s.ID, s.Suggestion, s.Description, s.DateCreated, category, s.Author.ID, s.Author.DisplayName,
		votes, status, s.OwnerNotes, s.ApprovedForRelease, s.Archived, s.Rejected,
	}, nil
}

func scanSuggestion(row dbx.Scanner) (*models.Suggestion, error) {
	var (
		s                       models.Suggestion
		category, votes, status []byte
	)

	err := row.Scan(
		&s.ID, &s.Suggestion, &s.Description, &s.DateCreated, &category, &s.Author.ID, &s.Author.DisplayName,
		&votes, &status, &s.OwnerNotes, &s.ApprovedForRelease, &s.Archived, &s.Rejected,
	)
	if err != nil {
		return nil, err
	}

	if err := dbx.ScanJSON(category, &s.Category); err != nil {
		return nil, err
	}
	if err := dbx.ScanJSON(votes, &s.UserVotes); err != nil {
		return nil, err
	}
	if err := dbx.ScanJSON(status, &s.SuggestionStatus); err != nil {
		return nil, err
	}
	s.DateCreated = s.DateCreated.UTC()

	return &s, nil
}
