package users

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

const columns = `id, object_identifier, first_name, last_name, display_name, email_address,
		authored_suggestions, voted_on_suggestions`

var (
	insertQuery = `INSERT INTO ` + models.UserCollection + ` (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	upsertQuery = insertQuery + `
		ON CONFLICT (id) DO UPDATE SET
			object_identifier = EXCLUDED.object_identifier,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			display_name = EXCLUDED.display_name,
			email_address = EXCLUDED.email_address,
			authored_suggestions = EXCLUDED.authored_suggestions,
			voted_on_suggestions = EXCLUDED.voted_on_suggestions`

	selectAllQuery = `SELECT ` + columns + ` FROM ` + models.UserCollection + `
		ORDER BY display_name, id`

	selectByIDQuery = `SELECT ` + columns + ` FROM ` + models.UserCollection + `
		WHERE id = $1`

	selectByObjectIDQuery = `SELECT ` + columns + ` FROM ` + models.UserCollection + `
		WHERE object_identifier = $1`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectByIDQuery, id)
}

func (r *PostgresRepository) GetByObjectIdentifier(ctx context.Context, objectID string) (*models.User, error) {
	return r.getOne(ctx, selectByObjectIDQuery, objectID)
}

// Create inserts the user; the id is always assigned here.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.NewString()

	args, err := rowArgs(user)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, insertQuery, args...); err != nil {
		user.ID = ""
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Upsert replaces the row with user.ID, inserting it when absent. An unsaved
// user gets a fresh id first.
func (r *PostgresRepository) Upsert(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	args, err := rowArgs(user)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, upsertQuery, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func rowArgs(u *models.User) ([]any, error) {
	authored, err := dbx.JSONText(u.AuthoredSuggestions)
	if err != nil {
		return nil, err
	}
	voted, err := dbx.JSONText(u.VotedOnSuggestions)
	if err != nil {
		return nil, err
	}

	// NULL keeps the unique index on object_identifier free for users that
	// have not signed in yet.
	objectID := sql.NullString{String: u.ObjectIdentifier, Valid: u.ObjectIdentifier != ""}

	return []any{u.ID, objectID, u.FirstName, u.LastName, u.DisplayName, u.EmailAddress, authored, voted}, nil
}

func scanUser(row dbx.Scanner) (*models.User, error) {
	var (
		u               models.User
		objectID        sql.NullString
		authored, voted []byte
	)

	err := row.Scan(&u.ID, &objectID, &u.FirstName, &u.LastName, &u.DisplayName, &u.EmailAddress, &authored, &voted)
	if err != nil {
		return nil, err
	}
	u.ObjectIdentifier = objectID.String

	if err := dbx.ScanJSON(authored, &u.AuthoredSuggestions); err != nil {
		return nil, err
	}
	if err := dbx.ScanJSON(voted, &u.VotedOnSuggestions); err != nil {
		return nil, err
	}

	return &u, nil
}
