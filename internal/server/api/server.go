// Package api is the JSON HTTP front end over the suggestion, user and tag
// stores.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/logging"
	"github.com/dmitrijs2005/suggestionapp/internal/server/metrics"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/dmitrijs2005/suggestionapp/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type CategoryStore interface {
	GetAll(ctx context.Context) ([]*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
}

type StatusStore interface {
	GetAll(ctx context.Context) ([]*models.Status, error)
	Create(ctx context.Context, s *models.Status) (*models.Status, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Reconcile(ctx context.Context, claims services.IdentityClaims) (*models.User, error)
}

type SuggestionStore interface {
	GetAllActive(ctx context.Context) ([]*models.Suggestion, error)
	GetAllApproved(ctx context.Context) ([]*models.Suggestion, error)
	GetPendingApproval(ctx context.Context) ([]*models.Suggestion, error)
	GetByAuthor(ctx context.Context, userID string) ([]*models.Suggestion, error)
	GetByID(ctx context.Context, id string) (*models.Suggestion, error)
	Modify(ctx context.Context, id string, mutate func(*models.Suggestion) error) (*models.Suggestion, error)
	Create(ctx context.Context, s *models.Suggestion) (*models.Suggestion, error)
	ToggleVote(ctx context.Context, suggestionID, userID string) (bool, error)
}

// Deps wires the server.
type Deps struct {
	Categories  CategoryStore
	Statuses    StatusStore
	Users       UserStore
	Suggestions SuggestionStore

	Logger  logging.Logger
	Metrics metrics.Recorder
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// Limiter throttles writes when set.
	Limiter *RateLimiter

	JWTSecret string
	TokenTTL  time.Duration
	// LoginKey, when set, must accompany every login in the X-Login-Key
	// header. It is shared with the identity front end that forwards claims.
	LoginKey string
}

type Server struct {
	categories  CategoryStore
	statuses    StatusStore
	users       UserStore
	suggestions SuggestionStore

	logger         logging.Logger
	metrics        metrics.Recorder
	metricsHandler http.Handler
	limiter        *RateLimiter

	jwtSecret []byte
	tokenTTL  time.Duration
	loginKey  string
}

func NewServer(d Deps) *Server {
	s := &Server{
		categories:     d.Categories,
		statuses:       d.Statuses,
		users:          d.Users,
		suggestions:    d.Suggestions,
		logger:         d.Logger,
		metrics:        d.Metrics,
		metricsHandler: d.MetricsHandler,
		limiter:        d.Limiter,
		jwtSecret:      []byte(d.JWTSecret),
		tokenTTL:       d.TokenTTL,
		loginKey:       d.LoginKey,
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	s.logger = s.logger.With("module", "http_api")
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = time.Hour
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	r.Post("/api/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		write := func(h http.HandlerFunc) http.Handler {
			if s.limiter == nil {
				return h
			}
			return s.limiter.Middleware(h)
		}

		r.Route("/api/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.With(requireAdmin).Method(http.MethodPost, "/", write(s.createCategory))
		})

		r.Route("/api/statuses", func(r chi.Router) {
			r.Get("/", s.listStatuses)
			r.With(requireAdmin).Method(http.MethodPost, "/", write(s.createStatus))
		})

		r.Route("/api/suggestions", func(r chi.Router) {
			r.Get("/", s.listSuggestions)
			r.Method(http.MethodPost, "/", write(s.createSuggestion))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSuggestion)
				r.With(requireAdmin).Method(http.MethodPut, "/", write(s.updateSuggestion))
				r.Method(http.MethodPost, "/archive", write(s.archiveSuggestion))
				r.Method(http.MethodPost, "/vote", write(s.toggleVote))
			})
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", s.me)
			r.Get("/{id}/suggestions", s.userSuggestions)
		})
	})

	return r
}
