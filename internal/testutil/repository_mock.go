package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/LegalEase-Intelligence/internal/domain/document"
)

// MockDocumentRepository is a testify mock of document.Repository.
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByContentHash(ctx context.Context, hash string) (*document.Document, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, opts ...document.QueryOption) ([]*document.Document, int64, error) {
	args := m.Called(ctx, document.ApplyOptions(opts...))
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*document.Document), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGlossaryRepository is a testify mock of document.GlossaryRepository.
type MockGlossaryRepository struct {
	mock.Mock
}

func (m *MockGlossaryRepository) List(ctx context.Context) ([]*document.GlossaryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*document.GlossaryEntry), args.Error(1)
}

func (m *MockGlossaryRepository) FindByTerm(ctx context.Context, term string) (*document.GlossaryEntry, error) {
	args := m.Called(ctx, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.GlossaryEntry), args.Error(1)
}

func (m *MockGlossaryRepository) Upsert(ctx context.Context, entry *document.GlossaryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

var (
	_ document.Repository         = (*MockDocumentRepository)(nil)
	_ document.GlossaryRepository = (*MockGlossaryRepository)(nil)
)
