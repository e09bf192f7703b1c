package suggestions

import (
	"context"

	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error)
	GetByID(ctx context.Context, id string) (*models.Suggestion, error)
	ListActive(ctx context.Context) ([]*models.Suggestion, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Suggestion, error)
	Replace(ctx context.Context, s *models.Suggestion) error
}
