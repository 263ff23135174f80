// Package repositories implements the document and glossary repositories on
// PostgreSQL.  Queries are built with squirrel using dollar placeholders and
// executed through database/sql so they can be verified with go-sqlmock.
package repositories

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// queryExecutor abstracts sql.DB and sql.Tx
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// psql is the statement builder shared by every repository.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
