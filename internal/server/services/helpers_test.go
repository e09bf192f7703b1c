package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/common"
	"github.com/dmitrijs2005/suggestionapp/internal/dbx"
	"github.com/dmitrijs2005/suggestionapp/internal/server/cache"
	"github.com/dmitrijs2005/suggestionapp/internal/server/cache/inmemory"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/categories"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/statuses"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/suggestions"
	"github.com/dmitrijs2005/suggestionapp/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// newSQLiteDeps returns Deps over a migrated in-memory SQLite database that
// lives for the duration of the test.
func newSQLiteDeps(t *testing.T) Deps {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repomanager.OpenDB(ctx, repomanager.DialectSQLite, "file:services_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, rm.RunMigrations(ctx, db))

	return Deps{DB: db, Repos: rm, Cache: inmemory.NewCache(nil)}
}

func seedUser(t *testing.T, d Deps, displayName string) *models.User {
	t.Helper()
	u, err := d.Repos.Users(d.DB).Create(context.Background(), &models.User{DisplayName: displayName})
	require.NoError(t, err)
	return u
}

// --- fakes ---

type fakeSuggestionsRepo struct {
	mu          sync.Mutex
	items       map[string]*models.Suggestion
	listActiveN int
	listErr     error
	createErr   error

	// When listGate is set ListActive signals listStarted and then blocks
	// until the gate closes or its ctx ends.
	listGate    chan struct{}
	listStarted chan struct{}
}

func newFakeSuggestionsRepo(items ...*models.Suggestion) *fakeSuggestionsRepo {
	r := &fakeSuggestionsRepo{items: map[string]*models.Suggestion{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeSuggestionsRepo) Create(_ context.Context, s *models.Suggestion) (*models.Suggestion, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = "generated"
	}
	cp := *s
	r.items[s.ID] = &cp
	return s, nil
}

func (r *fakeSuggestionsRepo) GetByID(_ context.Context, id string) (*models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSuggestionsRepo) ListActive(ctx context.Context) ([]*models.Suggestion, error) {
	r.mu.Lock()
	r.listActiveN++
	gate, started := r.listGate, r.listStarted
	r.mu.Unlock()

	if gate != nil {
		select {
		case started <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*models.Suggestion, 0)
	for _, s := range r.items {
		if !s.Archived {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSuggestionsRepo) ListByAuthor(_ context.Context, authorID string) ([]*models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Suggestion, 0)
	for _, s := range r.items {
		if s.Author.ID == authorID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSuggestionsRepo) Replace(_ context.Context, s *models.Suggestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *s
	r.items[s.ID] = &cp
	return nil
}

func (r *fakeSuggestionsRepo) gate() {
	r.listGate = make(chan struct{})
	r.listStarted = make(chan struct{}, 1)
}

func (r *fakeSuggestionsRepo) fetches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listActiveN
}

type fakeUsersRepo struct {
	items   map[string]*models.User
	creates int
	upserts int
}

func newFakeUsersRepo(items ...*models.User) *fakeUsersRepo {
	r := &fakeUsersRepo{items: map[string]*models.User{}}
	for _, it := range items {
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeUsersRepo) List(context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsersRepo) GetByObjectIdentifier(_ context.Context, objectID string) (*models.User, error) {
	for _, u := range r.items {
		if u.ObjectIdentifier == objectID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.creates++
	u.ID = "u-new"
	cp := *u
	r.items[u.ID] = &cp
	return u, nil
}

func (r *fakeUsersRepo) Upsert(_ context.Context, u *models.User) error {
	r.upserts++
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

type fakeRepoManager struct {
	s *fakeSuggestionsRepo
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) TxOptions() *sql.TxOptions                    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Suggestions(dbx.DBTX) suggestions.Repository  { return m.s }
func (m *fakeRepoManager) Categories(db dbx.DBTX) categories.Repository { return categories.NewPostgresRepository(db) }
func (m *fakeRepoManager) Statuses(db dbx.DBTX) statuses.Repository     { return statuses.NewPostgresRepository(db) }

// spyRecorder counts what the stores report.
type spyRecorder struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
	errs   map[string]int
	tx     map[string]int
}

func newSpyRecorder() *spyRecorder {
	return &spyRecorder{hits: map[string]int{}, misses: map[string]int{}, errs: map[string]int{}, tx: map[string]int{}}
}

func (r *spyRecorder) RecordCacheHit(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits[name]++
}

func (r *spyRecorder) RecordCacheMiss(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses[name]++
}

func (r *spyRecorder) RecordCacheError(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[name]++
}

func (r *spyRecorder) RecordTx(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := "committed"
	if err != nil {
		outcome = "rolled_back"
	}
	r.tx[op+":"+outcome]++
}

func (r *spyRecorder) RecordHTTPStatus(int) {}

// brokenCache fails every operation.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) ([]byte, error)              { return nil, errCacheDown }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error { return errCacheDown }
func (brokenCache) Delete(context.Context, string) error                     { return errCacheDown }

var _ cache.Cache = brokenCache{}
