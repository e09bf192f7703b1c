package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

// CategoryService serves the category list from a long-lived cache.
type CategoryService struct {
	deps  Deps
	cache *readThrough
	ttl   time.Duration
}

// NewCategoryService builds the store; ttl <= 0 selects DefaultTagTTL.
func NewCategoryService(d Deps, ttl time.Duration) *CategoryService {
	d = d.withDefaults()
	if ttl <= 0 {
		ttl = DefaultTagTTL
	}
	return &CategoryService{deps: d, cache: newReadThrough(d), ttl: ttl}
}

// GetAll returns every category, from the cache when possible.
func (s *CategoryService) GetAll(ctx context.Context) ([]*models.Category, error) {
	return load(ctx, s.cache, CategoryCacheKey, CategoryCacheKey, s.ttl, s.deps.Repos.Categories(s.deps.DB).List)
}

// Create stores a new category. The cached list is left alone and picks the
// category up once it expires.
func (s *CategoryService) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	created, err := s.deps.Repos.Categories(s.deps.DB).Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error creating category: %w", err)
	}
	return created, nil
}
