package statuses

import (
	"context"

	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Status, error)
	Create(ctx context.Context, s *models.Status) (*models.Status, error)
}
