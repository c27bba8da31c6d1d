package sentiment

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClassifier is a mock implementation of Classifier using testify/mock.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Analyze(ctx context.Context, text string) Result {
	args := m.Called(ctx, text)
	return args.Get(0).(Result)
}

func (m *MockClassifier) Model() string {
	args := m.Called()
	return args.String(0)
}

// MockPipeline is a mock implementation of Pipeline using testify/mock.
type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) Classify(ctx context.Context, text string) (Prediction, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(Prediction), args.Error(1)
}

func (m *MockPipeline) Name() string {
	args := m.Called()
	return args.String(0)
}
