package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

func newGlossaryRepo(t *testing.T) (document.GlossaryRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresGlossaryRepo(postgres.NewConnectionWithDB(db, nil), nil), mock
}

func TestGlossaryRepo_List(t *testing.T) {
	repo, mock := newGlossaryRepo(t)
	mock.ExpectQuery(`SELECT term, definition, source FROM glossary ORDER BY term_key ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"term", "definition", "source"}).
			AddRow("Breach", "Breaking or violating the terms of an agreement", "seed").
			AddRow("Liability", "Legal responsibility for damages or losses", "seed"))

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Breach", entries[0].Term)
	assert.Equal(t, document.GlossarySourceSeed, entries[1].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlossaryRepo_FindByTerm_NormalizesKey(t *testing.T) {
	repo, mock := newGlossaryRepo(t)
	mock.ExpectQuery(`SELECT term, definition, source FROM glossary WHERE term_key = \$1`).
		WithArgs("force majeure").
		WillReturnRows(sqlmock.NewRows([]string{"term", "definition", "source"}).
			AddRow("Force Majeure", "Unforeseeable circumstances", "seed"))

	e, err := repo.FindByTerm(context.Background(), "  Force Majeure ")
	require.NoError(t, err)
	assert.Equal(t, "Force Majeure", e.Term)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGlossaryRepo_FindByTerm_NotFound(t *testing.T) {
	repo, mock := newGlossaryRepo(t)
	mock.ExpectQuery("SELECT .* FROM glossary").
		WithArgs("estoppel").
		WillReturnRows(sqlmock.NewRows([]string{"term", "definition", "source"}))

	_, err := repo.FindByTerm(context.Background(), "Estoppel")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGlossaryTermNotFound))
	assert.Contains(t, err.Error(), "Estoppel")
}

func TestGlossaryRepo_Upsert(t *testing.T) {
	repo, mock := newGlossaryRepo(t)
	entry, err := document.NewGlossaryEntry("Estoppel", "A bar on going back on an earlier position", document.GlossarySourceUser)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO glossary \(term_key,term,definition,source\) VALUES \(\$1,\$2,\$3,\$4\) ON CONFLICT \(term_key\) DO UPDATE`).
		WithArgs("estoppel", "Estoppel", "A bar on going back on an earlier position", "user").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}
