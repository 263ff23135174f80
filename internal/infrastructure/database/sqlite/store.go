// Package sqlite is the single-file document store used by the command-line
// tool to keep a local history of analyses.  It implements the same
// repository contracts as the PostgreSQL store.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

//go:embed schema.sql
var schema string

var documentColumns = []string{
	"id", "filename", "file_type", "size_bytes", "object_key", "content_hash",
	"original_text", "simplified_text", "clauses", "terms",
	"readability_before", "readability_after", "status", "failure_reason",
	"created_at", "updated_at",
}

// Store is a SQLite-backed document.Repository and document.GlossaryRepository.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open creates the database file and its parent directory if needed and
// applies the schema.  Use ":memory:" for a throwaway store.
func Open(path string, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create store directory").WithDetail(dir)
			}
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to open sqlite store")
	}
	// One writer keeps SQLite free of "database is locked" under concurrent saves.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to apply sqlite schema")
	}
	log.Debug("sqlite store opened", logging.String("path", path))
	return &Store{db: db, logger: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// document.Repository
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) Save(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	clauses, terms, err := encode(doc)
	if err != nil {
		return err
	}

	query, args, err := sq.Insert("documents").
		Columns(documentColumns...).
		Values(
			doc.ID, doc.Filename, doc.FileType, doc.SizeBytes, doc.ObjectKey, doc.ContentHash,
			doc.OriginalText, doc.SimplifiedText, clauses, terms,
			doc.ReadabilityBefore, doc.ReadabilityAfter, string(doc.Status), doc.FailureReason,
			doc.CreatedAt.UTC(), doc.UpdatedAt.UTC(),
		).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			object_key = excluded.object_key,
			content_hash = excluded.content_hash,
			original_text = excluded.original_text,
			simplified_text = excluded.simplified_text,
			clauses = excluded.clauses,
			terms = excluded.terms,
			readability_before = excluded.readability_before,
			readability_after = excluded.readability_after,
			status = excluded.status,
			failure_reason = excluded.failure_reason,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build document upsert")
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save document").WithDetail(doc.ID)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*document.Document, error) {
	query, args, err := sq.Select(documentColumns...).From("documents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build document query")
	}
	return scanDocument(s.db.QueryRowContext(ctx, query, args...))
}

func (s *Store) FindByContentHash(ctx context.Context, hash string) (*document.Document, error) {
	query, args, err := sq.Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"content_hash": hash, "status": string(document.StatusCompleted)}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build document query")
	}
	return scanDocument(s.db.QueryRowContext(ctx, query, args...))
}

func (s *Store) List(ctx context.Context, opts ...document.QueryOption) ([]*document.Document, int64, error) {
	o := document.ApplyOptions(opts...)

	where := sq.And{}
	if o.Status != "" {
		where = append(where, sq.Eq{"status": string(o.Status)})
	}
	if kw := strings.TrimSpace(o.FilenameFilter); kw != "" {
		// SQLite LIKE is case-insensitive for ASCII.
		where = append(where, sq.Like{"filename": "%" + kw + "%"})
	}

	countQ := sq.Select("COUNT(*)").From("documents")
	dataQ := sq.Select(documentColumns...).From("documents")
	if len(where) > 0 {
		countQ = countQ.Where(where)
		dataQ = dataQ.Where(where)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to build count query")
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count documents")
	}

	order := "created_at DESC"
	if o.SortAscending {
		order = "created_at ASC"
	}
	query, args, err = dataQ.OrderBy(order, "id").Limit(uint64(o.Limit)).Offset(uint64(o.Offset)).ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to build list query")
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list documents")
	}
	defer rows.Close()

	docs := make([]*document.Document, 0, o.Limit)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate documents")
	}
	return docs, total, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete document").WithDetail(id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeDocumentNotFound, "document not found").WithDetail(id)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count documents")
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Glossary
// ─────────────────────────────────────────────────────────────────────────────

// Glossary returns the glossary view of the store.
func (s *Store) Glossary() document.GlossaryRepository {
	return glossaryStore{db: s.db}
}

type glossaryStore struct {
	db *sql.DB
}

func (g glossaryStore) List(ctx context.Context) ([]*document.GlossaryEntry, error) {
	rows, err := g.db.QueryContext(ctx, "SELECT term, definition, source FROM glossary ORDER BY term_key")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list glossary")
	}
	defer rows.Close()

	var out []*document.GlossaryEntry
	for rows.Next() {
		e := &document.GlossaryEntry{}
		var source string
		if err := rows.Scan(&e.Term, &e.Definition, &source); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan glossary entry")
		}
		e.Source = document.GlossarySource(source)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate glossary")
	}
	return out, nil
}

func (g glossaryStore) FindByTerm(ctx context.Context, term string) (*document.GlossaryEntry, error) {
	e := &document.GlossaryEntry{}
	var source string
	err := g.db.QueryRowContext(ctx,
		"SELECT term, definition, source FROM glossary WHERE term_key = ?",
		document.GlossaryKey(term),
	).Scan(&e.Term, &e.Definition, &source)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeGlossaryTermNotFound, "glossary term not found").WithDetail(term)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to find glossary entry")
	}
	e.Source = document.GlossarySource(source)
	return e, nil
}

func (g glossaryStore) Upsert(ctx context.Context, entry *document.GlossaryEntry) error {
	query, args, err := sq.Insert("glossary").
		Columns("term_key", "term", "definition", "source").
		Values(entry.Key(), entry.Term, entry.Definition, string(entry.Source)).
		Suffix("ON CONFLICT(term_key) DO UPDATE SET term = excluded.term, definition = excluded.definition, source = excluded.source").
		ToSql()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build glossary upsert")
	}
	if _, err := g.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert glossary entry").WithDetail(entry.Term)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Encoding
// ─────────────────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func encode(doc *document.Document) (clauses, terms string, err error) {
	list := doc.Clauses
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode clauses")
	}
	m := doc.Terms
	if m == nil {
		m = map[string][]string{}
	}
	t, err := json.Marshal(m)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode terms")
	}
	return string(b), string(t), nil
}

func scanDocument(row rowScanner) (*document.Document, error) {
	d := &document.Document{}
	var status, clauses, terms string
	err := row.Scan(
		&d.ID, &d.Filename, &d.FileType, &d.SizeBytes, &d.ObjectKey, &d.ContentHash,
		&d.OriginalText, &d.SimplifiedText, &clauses, &terms,
		&d.ReadabilityBefore, &d.ReadabilityAfter, &status, &d.FailureReason,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeDocumentNotFound, "document not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan document")
	}
	d.Status = document.Status(status)
	d.Clauses = []string{}
	if err := json.Unmarshal([]byte(clauses), &d.Clauses); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode clauses").WithDetail(d.ID)
	}
	if err := json.Unmarshal([]byte(terms), &d.Terms); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode terms").WithDetail(d.ID)
	}
	return d, nil
}
