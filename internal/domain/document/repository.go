package document

import "context"

// Repository defines the persistence operations for documents.
type Repository interface {
	Save(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, id string) (*Document, error)
	FindByContentHash(ctx context.Context, hash string) (*Document, error)
	List(ctx context.Context, opts ...QueryOption) ([]*Document, int64, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// QueryOptions encapsulates list parameters.
type QueryOptions struct {
	Offset         int
	Limit          int
	Status         Status
	FilenameFilter string
	SortAscending  bool
}

// QueryOption is a functional option for QueryOptions.
type QueryOption func(*QueryOptions)

// WithPagination sets pagination options.
func WithPagination(offset, limit int) QueryOption {
	return func(o *QueryOptions) {
		if offset < 0 {
			offset = 0
		}
		if limit < 1 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}
		o.Offset = offset
		o.Limit = limit
	}
}

// WithStatus restricts results to one status.
func WithStatus(s Status) QueryOption {
	return func(o *QueryOptions) { o.Status = s }
}

// WithFilenameFilter restricts results to filenames containing keyword.
func WithFilenameFilter(keyword string) QueryOption {
	return func(o *QueryOptions) { o.FilenameFilter = keyword }
}

// WithOldestFirst sorts by creation time ascending instead of descending.
func WithOldestFirst() QueryOption {
	return func(o *QueryOptions) { o.SortAscending = true }
}

// ApplyOptions applies the functional options to create QueryOptions.
func ApplyOptions(opts ...QueryOption) QueryOptions {
	o := QueryOptions{Offset: 0, Limit: 20}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
