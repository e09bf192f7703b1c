package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/suggestionapp/internal/common"
	"github.com/dmitrijs2005/suggestionapp/internal/server/auth"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/dmitrijs2005/suggestionapp/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const loginKeyHeader = "X-Login-Key"

type loginResponse struct {
	Token   string       `json:"token"`
	IsAdmin bool         `json:"is_admin"`
	User    *models.User `json:"user"`
}

// login reconciles the forwarded identity claims with the local user record
// and issues a session token.
// POST /api/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if s.loginKey != "" {
		got := r.Header.Get(loginKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.loginKey)) != 1 {
			writeUnauthorized(w)
			return
		}
	}

	var claims services.IdentityClaims
	if err := json.NewDecoder(r.Body).Decode(&claims); err != nil {
		writeValidation(w, "Request body must be a JSON object.")
		return
	}
	if strings.TrimSpace(claims.ObjectID) == "" {
		writeValidation(w, "object_id is required.")
		return
	}

	user, err := s.users.Reconcile(r.Context(), claims)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	isAdmin := claims.JobTitle == common.AdminJobTitle
	token, err := auth.GenerateToken(user.ID, isAdmin, s.jwtSecret, s.tokenTTL)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "signed in", "user_id", user.ID, "admin", isAdmin)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, IsAdmin: isAdmin, User: user})
}

// GET /api/categories
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := s.categories.GetAll(r.Context())
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/categories
func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var c models.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeValidation(w, "Request body must be a JSON object.")
		return
	}
	if strings.TrimSpace(c.CategoryName) == "" {
		writeValidation(w, "category_name is required.")
		return
	}
	c.ID = ""

	created, err := s.categories.Create(r.Context(), &c)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /api/statuses
func (s *Server) listStatuses(w http.ResponseWriter, r *http.Request) {
	out, err := s.statuses.GetAll(r.Context())
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/statuses
func (s *Server) createStatus(w http.ResponseWriter, r *http.Request) {
	var st models.Status
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeValidation(w, "Request body must be a JSON object.")
		return
	}
	if strings.TrimSpace(st.StatusName) == "" {
		writeValidation(w, "status_name is required.")
		return
	}
	st.ID = ""

	created, err := s.statuses.Create(r.Context(), &st)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GET /api/users/me
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())

	u, err := s.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	if u == nil {
		writeUnauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// userSuggestions lists everything a user wrote, archived entries included.
// Only the user and admins may look.
// GET /api/users/{id}/suggestions
func (s *Server) userSuggestions(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromContext(r.Context())
	userID := chi.URLParam(r, "id")
	if userID == "me" {
		userID = claims.UserID
	}
	if userID != claims.UserID && !claims.IsAdmin {
		writeForbidden(w)
		return
	}

	out, err := s.suggestions.GetByAuthor(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(out))
}
