package suggestions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/suggestionapp/internal/common"
	"github.com/dmitrijs2005/suggestionapp/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func suggestionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "suggestion", "description", "date_created", "category", "author_id", "author_name",
		"user_votes", "suggestion_status", "owner_notes", "approved_for_release", "archived", "rejected",
	})
}

func TestCreate_AssignsIDAndInserts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+suggestions\s*\(id,\s*suggestion,.*rejected\)\s*VALUES\s*\(\$1,.*\$13\)$`
	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), "Dark mode", "please", created, `{"id":"c1","category_name":"UI","category_description":""}`,
			"u1", "Tim", "null", "null", "", false, false, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := &models.Suggestion{
		Suggestion:  "Dark mode",
		Description: "please",
		DateCreated: created,
		Category:    models.Category{ID: "c1", CategoryName: "UI"},
		Author:      models.UserSummary{ID: "u1", DisplayName: "Tim"},
	}
	got, err := repo.Create(context.Background(), s)
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Same(t, s, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_IgnoresProvidedID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO suggestions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), &models.Suggestion{ID: "s-fixed"})
	require.NoError(t, err)
	assert.NotEqual(t, "s-fixed", got.ID)
	assert.NotEmpty(t, got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO suggestions`).WillReturnError(errors.New("db down"))

	s := &models.Suggestion{Suggestion: "x"}
	_, err := repo.Create(context.Background(), s)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	assert.Empty(t, s.ID)
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*rejected\s+FROM\s+suggestions\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs("s1").
		WillReturnRows(suggestionRows().AddRow(
			"s1", "Dark mode", "please", created, []byte(`{"id":"c1","category_name":"UI"}`), "u1", "Tim",
			[]byte(`["u2","u3"]`), []byte(`{"id":"st1","status_name":"Watching"}`), "nice", true, false, false,
		))

	got, err := repo.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, &models.Suggestion{
		ID:                 "s1",
		Suggestion:         "Dark mode",
		Description:        "please",
		DateCreated:        created,
		Category:           models.Category{ID: "c1", CategoryName: "UI"},
		Author:             models.UserSummary{ID: "u1", DisplayName: "Tim"},
		UserVotes:          []string{"u2", "u3"},
		SuggestionStatus:   &models.Status{ID: "st1", StatusName: "Watching"},
		OwnerNotes:         "nice",
		ApprovedForRelease: true,
	}, got)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM suggestions`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_BadJSON(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM suggestions`).WithArgs("s1").WillReturnRows(suggestionRows().AddRow(
		"s1", "x", "", created, []byte(`{`), "u1", "", []byte(`null`), []byte(`null`), "", false, false, false,
	))

	_, err := repo.GetByID(context.Background(), "s1")
	require.ErrorContains(t, err, "decode json column")
}

func TestListActive_FiltersArchivedInSQL(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+suggestions\s+WHERE\s+archived\s*=\s*false\s+ORDER\s+BY\s+date_created,\s*id$`
	mock.ExpectQuery(q).WillReturnRows(suggestionRows().
		AddRow("s1", "a", "", created, []byte(`{}`), "u1", "", []byte(`null`), []byte(`null`), "", false, false, false).
		AddRow("s2", "b", "", created, []byte(`{}`), "u2", "", []byte(`["u1"]`), []byte(`null`), "", true, false, false))

	got, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].ID)
	assert.Nil(t, got[0].UserVotes)
	assert.Nil(t, got[0].SuggestionStatus)
	assert.Equal(t, []string{"u1"}, got[1].UserVotes)
}

func TestListActive_EmptyIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM suggestions`).WillReturnRows(suggestionRows())

	got, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByAuthor_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE\s+author_id\s*=\s*\$1`).WithArgs("u1").WillReturnError(errors.New("timeout"))

	_, err := repo.ListByAuthor(context.Background(), "u1")
	require.ErrorContains(t, err, "failed to select suggestions")
}

func TestReplace(t *testing.T) {
	q := `(?s)^UPDATE\s+suggestions\s+SET.*WHERE\s+id\s*=\s*\$1$`

	t.Run("updated", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WithArgs("s1", "t", "", created, `{"id":"","category_name":"","category_description":""}`,
			"u1", "", `["u2"]`, "null", "", false, true, false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Replace(context.Background(), &models.Suggestion{
			ID: "s1", Suggestion: "t", DateCreated: created, Author: models.UserSummary{ID: "u1"},
			UserVotes: []string{"u2"}, Archived: true,
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Replace(context.Background(), &models.Suggestion{ID: "ghost"})
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(q).WillReturnError(errors.New("serialization failure"))

		err := repo.Replace(context.Background(), &models.Suggestion{ID: "s1"})
		require.ErrorContains(t, err, "serialization failure")
	})
}
