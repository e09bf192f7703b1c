package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

// StatusService serves the status list from a long-lived cache.
type StatusService struct {
	deps  Deps
	cache *readThrough
	ttl   time.Duration
}

func NewStatusService(d Deps, ttl time.Duration) *StatusService {
	d = d.withDefaults()
	if ttl <= 0 {
		ttl = DefaultTagTTL
	}
	return &StatusService{deps: d, cache: newReadThrough(d), ttl: ttl}
}

func (s *StatusService) GetAll(ctx context.Context) ([]*models.Status, error) {
	return load(ctx, s.cache, StatusCacheKey, StatusCacheKey, s.ttl, s.deps.Repos.Statuses(s.deps.DB).List)
}

// Create does not touch the cached list.
func (s *StatusService) Create(ctx context.Context, st *models.Status) (*models.Status, error) {
	created, err := s.deps.Repos.Statuses(s.deps.DB).Create(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("error creating status: %w", err)
	}
	return created, nil
}
