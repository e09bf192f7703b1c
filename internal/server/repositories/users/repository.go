package users

import (
	"context"

	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByObjectIdentifier(ctx context.Context, objectID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}
