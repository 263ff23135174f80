package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

const documentsTable = "documents"

var documentColumns = []string{
	"id", "filename", "file_type", "size_bytes", "object_key", "content_hash",
	"original_text", "simplified_text", "clauses", "terms",
	"readability_before", "readability_after", "status", "failure_reason",
	"created_at", "updated_at",
}

type postgresDocumentRepo struct {
	conn *postgres.Connection
	tx   *sql.Tx
	log  logging.Logger
}

// NewPostgresDocumentRepo returns a document.Repository backed by PostgreSQL.
func NewPostgresDocumentRepo(conn *postgres.Connection, log logging.Logger) document.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresDocumentRepo{conn: conn, log: log}
}

func (r *postgresDocumentRepo) executor() queryExecutor {
	if r.tx != nil {
		return r.tx
	}
	return r.conn.DB()
}

// Save inserts the document or overwrites every mutable column of an existing
// row with the same ID.
func (r *postgresDocumentRepo) Save(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	clauses, terms, err := encodeAnalysis(doc)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert(documentsTable).
		Columns(documentColumns...).
		Values(
			doc.ID, doc.Filename, doc.FileType, doc.SizeBytes, doc.ObjectKey, doc.ContentHash,
			doc.OriginalText, doc.SimplifiedText, clauses, terms,
			doc.ReadabilityBefore, doc.ReadabilityAfter, string(doc.Status), doc.FailureReason,
			doc.CreatedAt, doc.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			object_key = EXCLUDED.object_key,
			content_hash = EXCLUDED.content_hash,
			original_text = EXCLUDED.original_text,
			simplified_text = EXCLUDED.simplified_text,
			clauses = EXCLUDED.clauses,
			terms = EXCLUDED.terms,
			readability_before = EXCLUDED.readability_before,
			readability_after = EXCLUDED.readability_after,
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build document upsert")
	}

	if _, err := r.executor().ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save document").WithDetail(doc.ID)
	}
	r.log.Debug("document saved", logging.String("document_id", doc.ID), logging.String("status", string(doc.Status)))
	return nil
}

func (r *postgresDocumentRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	query, args, err := psql.Select(documentColumns...).
		From(documentsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build document query")
	}
	return scanDocument(r.executor().QueryRowContext(ctx, query, args...))
}

// FindByContentHash returns the newest completed document whose raw upload has
// the given SHA-256 hash.
func (r *postgresDocumentRepo) FindByContentHash(ctx context.Context, hash string) (*document.Document, error) {
	query, args, err := psql.Select(documentColumns...).
		From(documentsTable).
		Where(sq.Eq{"content_hash": hash, "status": string(document.StatusCompleted)}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build document query")
	}
	return scanDocument(r.executor().QueryRowContext(ctx, query, args...))
}

func (r *postgresDocumentRepo) List(ctx context.Context, opts ...document.QueryOption) ([]*document.Document, int64, error) {
	o := document.ApplyOptions(opts...)

	where := sq.And{}
	if o.Status != "" {
		where = append(where, sq.Eq{"status": string(o.Status)})
	}
	if kw := strings.TrimSpace(o.FilenameFilter); kw != "" {
		where = append(where, sq.ILike{"filename": "%" + kw + "%"})
	}

	countQ := psql.Select("COUNT(*)").From(documentsTable)
	dataQ := psql.Select(documentColumns...).From(documentsTable)
	if len(where) > 0 {
		countQ = countQ.Where(where)
		dataQ = dataQ.Where(where)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to build count query")
	}
	var total int64
	if err := r.executor().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count documents")
	}

	order := "created_at DESC"
	if o.SortAscending {
		order = "created_at ASC"
	}
	query, args, err = dataQ.OrderBy(order).Limit(uint64(o.Limit)).Offset(uint64(o.Offset)).ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to build list query")
	}

	rows, err := r.executor().QueryContext(ctx, query, args...)
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

func (r *postgresDocumentRepo) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete(documentsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build delete")
	}
	res, err := r.executor().ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete document").WithDetail(id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeDocumentNotFound, "document not found").WithDetail(id)
	}
	return nil
}

func (r *postgresDocumentRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.executor().QueryRowContext(ctx, "SELECT COUNT(*) FROM "+documentsTable).Scan(&total); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count documents")
	}
	return total, nil
}

// WithTx runs fn with a repository bound to a single transaction.
func (r *postgresDocumentRepo) WithTx(ctx context.Context, fn func(document.Repository) error) error {
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&postgresDocumentRepo{conn: r.conn, tx: tx, log: r.log})
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanners
// ─────────────────────────────────────────────────────────────────────────────

func encodeAnalysis(doc *document.Document) (clauses, terms []byte, err error) {
	list := doc.Clauses
	if list == nil {
		list = []string{}
	}
	clauses, err = json.Marshal(list)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode clauses")
	}
	m := doc.Terms
	if m == nil {
		m = map[string][]string{}
	}
	terms, err = json.Marshal(m)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode terms")
	}
	return clauses, terms, nil
}

func scanDocument(row scanner) (*document.Document, error) {
	d := &document.Document{}
	var (
		status         string
		clauses, terms []byte
	)
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
	if len(clauses) > 0 {
		if err := json.Unmarshal(clauses, &d.Clauses); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode clauses").WithDetail(d.ID)
		}
	}
	if len(terms) > 0 {
		if err := json.Unmarshal(terms, &d.Terms); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode terms").WithDetail(d.ID)
		}
	}
	return d, nil
}
