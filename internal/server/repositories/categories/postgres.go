package categories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/suggestionapp/internal/dbx"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/google/uuid"
)

var (
	selectAllQuery = `SELECT id, category_name, category_description FROM ` + models.CategoryCollection + `
		ORDER BY category_name, id`

	insertQuery = `INSERT INTO ` + models.CategoryCollection + ` (id, category_name, category_description)
		VALUES ($1, $2, $3)`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Category, error) {
	rows, err := r.db.QueryContext(ctx, selectAllQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.CategoryName, &c.CategoryDescription); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	if _, err := r.db.ExecContext(ctx, insertQuery, c.ID, c.CategoryName, c.CategoryDescription); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}
