package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/suggestionapp/internal/common"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type suggestionResponse struct {
	*models.Suggestion
	VoteCount int `json:"vote_count"`
}

func toResponse(s *models.Suggestion) suggestionResponse {
	return suggestionResponse{Suggestion: s, VoteCount: s.VoteCount()}
}

func toResponses(xs []*models.Suggestion) []suggestionResponse {
	out := make([]suggestionResponse, 0, len(xs))
	for _, s := range xs {
		out = append(out, toResponse(s))
	}
	return out
}

type createSuggestionRequest struct {
	Suggestion  string `json:"suggestion"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
}

// updateSuggestionRequest carries the admin-editable fields. Nil fields are
// left as stored; an empty status_id clears the status.
type updateSuggestionRequest struct {
	Suggestion         *string `json:"suggestion"`
	Description        *string `json:"description"`
	StatusID           *string `json:"status_id"`
	OwnerNotes         *string `json:"owner_notes"`
	ApprovedForRelease *bool   `json:"approved_for_release"`
	Rejected           *bool   `json:"rejected"`
}

type voteResponse struct {
	Added     bool `json:"added"`
	VoteCount int  `json:"vote_count"`
}

// listSuggestions serves one of the cached views, filtered and sorted.
// pending and active are admin views.
// GET /api/suggestions?view=approved|pending|active&category=&status=&q=&sort=new|votes
func (s *Server) listSuggestions(w http.ResponseWriter, r *http.Request) {
	lq, ok := parseListQuery(r.URL.Query())
	if !ok {
		writeValidation(w, "view must be approved, pending or active and sort must be new or votes.")
		return
	}

	claims, _ := ClaimsFromContext(r.Context())
	if lq.View != viewApproved && !claims.IsAdmin {
		writeForbidden(w)
		return
	}

	var (
		xs  []*models.Suggestion
		err error
	)
	switch lq.View {
	case viewPending:
		xs, err = s.suggestions.GetPendingApproval(r.Context())
	case viewActive:
		xs, err = s.suggestions.GetAllActive(r.Context())
	default:
		xs, err = s.suggestions.GetAllApproved(r.Context())
	}
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponses(lq.apply(xs)))
}

// GET /api/suggestions/{id}
func (s *Server) getSuggestion(w http.ResponseWriter, r *http.Request) {
	sg, err := s.suggestions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	if sg == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sg))
}

// createSuggestion files a suggestion under the signed-in user.
// POST /api/suggestions
func (s *Server) createSuggestion(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	var req createSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "Request body must be a JSON object.")
		return
	}
	req.Suggestion = strings.TrimSpace(req.Suggestion)
	if req.Suggestion == "" {
		writeValidation(w, "suggestion is required.")
		return
	}
	if req.CategoryID == "" {
		writeValidation(w, "category_id is required.")
		return
	}

	categories, err := s.categories.GetAll(r.Context())
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	var category *models.Category
	for _, c := range categories {
		if c.ID == req.CategoryID {
			category = c
			break
		}
	}
	if category == nil {
		writeValidation(w, "category_id does not name a known category.")
		return
	}

	author, err := s.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	if author == nil {
		writeUnauthorized(w)
		return
	}

	created, err := s.suggestions.Create(r.Context(), &models.Suggestion{
		Suggestion:  req.Suggestion,
		Description: req.Description,
		Category:    *category,
		Author:      author.Summary(),
	})
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(created))
}

// updateSuggestion applies an admin's triage decision. The read, the edit and
// the write happen in one store transaction.
// PUT /api/suggestions/{id}
func (s *Server) updateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req updateSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "Request body must be a JSON object.")
		return
	}

	if req.Suggestion != nil {
		trimmed := strings.TrimSpace(*req.Suggestion)
		if trimmed == "" {
			writeValidation(w, "suggestion must not be empty.")
			return
		}
		req.Suggestion = &trimmed
	}

	var status *models.Status
	if req.StatusID != nil && *req.StatusID != "" {
		st, err := s.findStatus(r, *req.StatusID)
		if err != nil {
			s.handleServiceError(w, r, err)
			return
		}
		if st == nil {
			writeValidation(w, "status_id does not name a known status.")
			return
		}
		status = st
	}

	sg, err := s.suggestions.Modify(r.Context(), chi.URLParam(r, "id"), func(sg *models.Suggestion) error {
		if req.Suggestion != nil {
			sg.Suggestion = *req.Suggestion
		}
		if req.Description != nil {
			sg.Description = *req.Description
		}
		if req.OwnerNotes != nil {
			sg.OwnerNotes = *req.OwnerNotes
		}
		if req.ApprovedForRelease != nil {
			sg.ApprovedForRelease = *req.ApprovedForRelease
		}
		if req.Rejected != nil {
			sg.Rejected = *req.Rejected
		}
		if req.StatusID != nil {
			sg.SuggestionStatus = status
		}
		return nil
	})
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(sg))
}

func (s *Server) findStatus(r *http.Request, id string) (*models.Status, error) {
	statuses, err := s.statuses.GetAll(r.Context())
	if err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, nil
}

// archiveSuggestion hides a suggestion from the active views. Authors may
// archive their own; admins may archive any.
// POST /api/suggestions/{id}/archive
func (s *Server) archiveSuggestion(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	_, err := s.suggestions.Modify(r.Context(), chi.URLParam(r, "id"), func(sg *models.Suggestion) error {
		if sg.Author.ID != claims.UserID && !claims.IsAdmin {
			return common.ErrorForbidden
		}
		sg.Archived = true
		return nil
	})
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toggleVote adds the caller's vote, or withdraws it on a second call.
// POST /api/suggestions/{id}/vote
func (s *Server) toggleVote(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	id := chi.URLParam(r, "id")

	added, err := s.suggestions.ToggleVote(r.Context(), id, claims.UserID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	resp := voteResponse{Added: added}
	if sg, err := s.suggestions.GetByID(r.Context(), id); err == nil && sg != nil {
		resp.VoteCount = sg.VoteCount()
	}
	writeJSON(w, http.StatusOK, resp)
}
