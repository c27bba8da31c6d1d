package analysis

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockService is a mock implementation of Service using testify/mock.
type MockService struct {
	mock.Mock
}

func (m *MockService) AnalyzeRhetoric(ctx context.Context, article string) Result {
	args := m.Called(ctx, article)
	return args.Get(0).(Result)
}

func (m *MockService) ComparisonModel() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockService) CompareArticles(ctx context.Context, primary, reference string) Result {
	args := m.Called(ctx, primary, reference)
	return args.Get(0).(Result)
}
