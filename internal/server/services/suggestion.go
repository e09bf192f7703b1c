package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/common"
	"github.com/dmitrijs2005/suggestionapp/internal/dbx"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
)

// SuggestionService stores suggestions and keeps the author's and voters'
// user records in step with them.
type SuggestionService struct {
	deps  Deps
	cache *readThrough
	ttl   time.Duration
	now   func() time.Time
}

// NewSuggestionService builds the store; ttl <= 0 selects DefaultSuggestionTTL.
func NewSuggestionService(d Deps, ttl time.Duration) *SuggestionService {
	d = d.withDefaults()
	if ttl <= 0 {
		ttl = DefaultSuggestionTTL
	}
	return &SuggestionService{deps: d, cache: newReadThrough(d), ttl: ttl, now: time.Now}
}

// GetAllActive returns all suggestions that are not archived.
func (s *SuggestionService) GetAllActive(ctx context.Context) ([]*models.Suggestion, error) {
	return load(ctx, s.cache, SuggestionCacheKey, SuggestionCacheKey, s.ttl, s.deps.Repos.Suggestions(s.deps.DB).ListActive)
}

// GetByAuthor returns every suggestion userID wrote, archived ones included.
func (s *SuggestionService) GetByAuthor(ctx context.Context, userID string) ([]*models.Suggestion, error) {
	return load(ctx, s.cache, "SuggestionAuthorData", authorCacheKey(userID), s.ttl,
		func(ctx context.Context) ([]*models.Suggestion, error) {
			return s.deps.Repos.Suggestions(s.deps.DB).ListByAuthor(ctx, userID)
		})
}

// GetAllApproved is the active view narrowed to approved suggestions.
func (s *SuggestionService) GetAllApproved(ctx context.Context) ([]*models.Suggestion, error) {
	return s.filterActive(ctx, func(x *models.Suggestion) bool { return x.ApprovedForRelease })
}

// GetPendingApproval is the active view narrowed to undecided suggestions.
func (s *SuggestionService) GetPendingApproval(ctx context.Context) ([]*models.Suggestion, error) {
	return s.filterActive(ctx, (*models.Suggestion).Pending)
}

func (s *SuggestionService) filterActive(ctx context.Context, keep func(*models.Suggestion) bool) ([]*models.Suggestion, error) {
	all, err := s.GetAllActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Suggestion, 0, len(all))
	for _, x := range all {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out, nil
}

// GetByID reads straight from storage.
func (s *SuggestionService) GetByID(ctx context.Context, id string) (*models.Suggestion, error) {
	return absentAsNil(s.deps.Repos.Suggestions(s.deps.DB).GetByID(ctx, id))
}

// Update replaces the stored suggestion with sg and drops the active view.
// The stored voter set is kept: votes change only through ToggleVote.
func (s *SuggestionService) Update(ctx context.Context, sg *models.Suggestion) error {
	if sg.ApprovedForRelease && sg.Rejected {
		return common.ErrConflictingDecision
	}

	_, err := s.Modify(ctx, sg.ID, func(cur *models.Suggestion) error {
		*cur = *sg
		return nil
	})
	return err
}

// Modify reads suggestion id, applies mutate and writes the result back in one
// transaction, then drops the active view. An error from mutate aborts the
// write and is returned wrapped. The id and the voter set survive mutate.
func (s *SuggestionService) Modify(ctx context.Context, id string, mutate func(*models.Suggestion) error) (*models.Suggestion, error) {
	var out *models.Suggestion

	err := dbx.WithTx(ctx, s.deps.DB, s.deps.Repos.TxOptions(), func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.deps.Repos.Suggestions(tx)
		sg, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		votes := sg.UserVotes
		if err := mutate(sg); err != nil {
			return err
		}
		sg.ID, sg.UserVotes = id, votes

		if sg.ApprovedForRelease && sg.Rejected {
			return common.ErrConflictingDecision
		}
		if err := repo.Replace(ctx, sg); err != nil {
			return err
		}
		out = sg
		return nil
	})
	s.deps.Metrics.RecordTx("update_suggestion", err)
	if err != nil {
		return nil, fmt.Errorf("error updating suggestion %s: %w", id, err)
	}

	s.cache.invalidate(ctx, SuggestionCacheKey, SuggestionCacheKey)
	return out, nil
}

// Create inserts a copy of sg and records it on the author's authored list in
// one transaction. Storage assigns the id; the creation date is set here
// unless already present. An unknown author aborts the whole operation. sg
// itself is never modified.
func (s *SuggestionService) Create(ctx context.Context, sg *models.Suggestion) (*models.Suggestion, error) {
	next := *sg
	next.ID = ""
	if next.DateCreated.IsZero() {
		next.DateCreated = s.now().UTC()
	}
	next.UserVotes = slices.Clone(sg.UserVotes)
	if next.UserVotes == nil {
		next.UserVotes = []string{}
	}

	err := dbx.WithTx(ctx, s.deps.DB, s.deps.Repos.TxOptions(), func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.deps.Repos.Suggestions(tx).Create(ctx, &next); err != nil {
			return err
		}

		usersRepo := s.deps.Repos.Users(tx)
		author, err := usersRepo.GetByID(ctx, next.Author.ID)
		if err != nil {
			return fmt.Errorf("author %s: %w", next.Author.ID, err)
		}

		author.AddAuthored(next.Summary())
		return usersRepo.Upsert(ctx, author)
	})
	s.deps.Metrics.RecordTx("create_suggestion", err)
	if err != nil {
		s.deps.Logger.Warn(ctx, "create suggestion aborted", "author_id", sg.Author.ID, "error", err)
		return nil, fmt.Errorf("error creating suggestion: %w", err)
	}

	return &next, nil
}

// ToggleVote adds userID's vote to the suggestion, or withdraws it when
// already present, and mirrors the change on the user's voted list in the
// same transaction. It reports whether the vote was added. Authors cannot
// vote on their own suggestions.
func (s *SuggestionService) ToggleVote(ctx context.Context, suggestionID, userID string) (bool, error) {
	var added bool

	err := dbx.WithTx(ctx, s.deps.DB, s.deps.Repos.TxOptions(), func(ctx context.Context, tx dbx.DBTX) error {
		suggestionsRepo := s.deps.Repos.Suggestions(tx)
		sg, err := suggestionsRepo.GetByID(ctx, suggestionID)
		if err != nil {
			return fmt.Errorf("suggestion %s: %w", suggestionID, err)
		}
		if sg.Author.ID == userID {
			return common.ErrSelfVote
		}

		added = sg.ToggleVote(userID)
		if err := suggestionsRepo.Replace(ctx, sg); err != nil {
			return err
		}

		usersRepo := s.deps.Repos.Users(tx)
		user, err := usersRepo.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		if added {
			if !user.HasVotedOn(sg.ID) {
				user.AddVoted(sg.Summary())
			}
		} else {
			user.RemoveVoted(sg.ID)
		}
		return usersRepo.Upsert(ctx, user)
	})
	s.deps.Metrics.RecordTx("toggle_vote", err)
	if err != nil {
		s.deps.Logger.Warn(ctx, "vote toggle aborted", "suggestion_id", suggestionID, "user_id", userID, "error", err)
		return false, fmt.Errorf("error toggling vote: %w", err)
	}

	s.cache.invalidate(ctx, SuggestionCacheKey, SuggestionCacheKey)
	return added, nil
}
