package repositories

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

const glossaryTable = "glossary"

type postgresGlossaryRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresGlossaryRepo returns a document.GlossaryRepository backed by the
// glossary table.
func NewPostgresGlossaryRepo(conn *postgres.Connection, log logging.Logger) document.GlossaryRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresGlossaryRepo{conn: conn, log: log}
}

func (r *postgresGlossaryRepo) List(ctx context.Context) ([]*document.GlossaryEntry, error) {
	query, args, err := psql.Select("term", "definition", "source").
		From(glossaryTable).
		OrderBy("term_key ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build glossary query")
	}
	rows, err := r.conn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list glossary")
	}
	defer rows.Close()

	var out []*document.GlossaryEntry
	for rows.Next() {
		e, err := scanGlossaryEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate glossary")
	}
	return out, nil
}

func (r *postgresGlossaryRepo) FindByTerm(ctx context.Context, term string) (*document.GlossaryEntry, error) {
	query, args, err := psql.Select("term", "definition", "source").
		From(glossaryTable).
		Where(sq.Eq{"term_key": document.GlossaryKey(term)}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build glossary query")
	}
	e, err := scanGlossaryEntry(r.conn.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeGlossaryTermNotFound) {
			return nil, errors.New(errors.ErrCodeGlossaryTermNotFound, "glossary term not found").WithDetail(term)
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresGlossaryRepo) Upsert(ctx context.Context, entry *document.GlossaryEntry) error {
	query, args, err := psql.Insert(glossaryTable).
		Columns("term_key", "term", "definition", "source").
		Values(entry.Key(), entry.Term, entry.Definition, string(entry.Source)).
		Suffix("ON CONFLICT (term_key) DO UPDATE SET term = EXCLUDED.term, definition = EXCLUDED.definition, source = EXCLUDED.source, updated_at = NOW()").
		ToSql()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build glossary upsert")
	}
	if _, err := r.conn.DB().ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert glossary entry").WithDetail(entry.Term)
	}
	return nil
}

func scanGlossaryEntry(row scanner) (*document.GlossaryEntry, error) {
	e := &document.GlossaryEntry{}
	var source string
	if err := row.Scan(&e.Term, &e.Definition, &source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeGlossaryTermNotFound, "glossary term not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan glossary entry")
	}
	e.Source = document.GlossarySource(source)
	return e, nil
}
