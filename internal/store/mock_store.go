package store

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListArticles(ctx context.Context) ([]Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Article), args.Error(1)
}

func (m *MockStore) GetArticle(ctx context.Context, id int) (Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Article), args.Error(1)
}

func (m *MockStore) SaveArticle(ctx context.Context, a Article) (Article, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(Article), args.Error(1)
}
