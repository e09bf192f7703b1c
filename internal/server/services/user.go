package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/suggestionapp/internal/common"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

// UserService is the uncached user store. Lookups report absence as a nil
// user with a nil error.
type UserService struct {
	deps Deps
}

func NewUserService(d Deps) *UserService {
	return &UserService{deps: d.withDefaults()}
}

func (s *UserService) GetAll(ctx context.Context) ([]*models.User, error) {
	return s.deps.Repos.Users(s.deps.DB).List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return absentAsNil(s.deps.Repos.Users(s.deps.DB).GetByID(ctx, id))
}

// GetByExternalID looks a user up by identity-provider object id.
func (s *UserService) GetByExternalID(ctx context.Context, objectID string) (*models.User, error) {
	if objectID == "" {
		return nil, nil
	}
	return absentAsNil(s.deps.Repos.Users(s.deps.DB).GetByObjectIdentifier(ctx, objectID))
}

// Create stores a new user and assigns its id.
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u, err := s.deps.Repos.Users(s.deps.DB).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Upsert replaces the user with the same id, inserting it when absent.
func (s *UserService) Upsert(ctx context.Context, user *models.User) error {
	if err := s.deps.Repos.Users(s.deps.DB).Upsert(ctx, user); err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// IdentityClaims are the profile attributes asserted by the identity provider
// at sign-in. JobTitle is not stored; it only decides admin rights.
type IdentityClaims struct {
	ObjectID    string `json:"object_id"`
	GivenName   string `json:"given_name"`
	Surname     string `json:"surname"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	JobTitle    string `json:"job_title"`
}

// Reconcile finds the local user for claims, creating it on first sign-in and
// copying any changed profile attributes. It writes only when something
// differs.
func (s *UserService) Reconcile(ctx context.Context, claims IdentityClaims) (*models.User, error) {
	if claims.ObjectID == "" {
		return nil, fmt.Errorf("missing object id: %w", common.ErrorValidation)
	}

	user, err := s.GetByExternalID(ctx, claims.ObjectID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{}
	}

	dirty := false
	set := func(dst *string, v string) {
		if *dst != v {
			*dst = v
			dirty = true
		}
	}
	set(&user.ObjectIdentifier, claims.ObjectID)
	set(&user.FirstName, claims.GivenName)
	set(&user.LastName, claims.Surname)
	set(&user.DisplayName, claims.DisplayName)
	set(&user.EmailAddress, claims.Email)

	if !dirty {
		return user, nil
	}

	if !user.Saved() {
		s.deps.Logger.Info(ctx, "registering user on first sign-in", "object_id", claims.ObjectID)
		return s.Create(ctx, user)
	}
	if err := s.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func absentAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
