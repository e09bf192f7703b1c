package statuses

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/suggestionapp/internal/dbx"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/google/uuid"
)

var (
	selectAllQuery = `SELECT id, status_name, status_description FROM ` + models.StatusCollection + `
		ORDER BY status_name, id`

	insertQuery = `INSERT INTO ` + models.StatusCollection + ` (id, status_name, status_description)
		VALUES ($1, $2, $3)`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Status, error) {
	rows, err := r.db.QueryContext(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to select statuses: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Status, 0)
	for rows.Next() {
		var s models.Status
		if err := rows.Scan(&s.ID, &s.StatusName, &s.StatusDescription); err != nil {
			return nil, err
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Status) (*models.Status, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	if _, err := r.db.ExecContext(ctx, insertQuery, s.ID, s.StatusName, s.StatusDescription); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
