package categories

import (
	"context"

	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}
