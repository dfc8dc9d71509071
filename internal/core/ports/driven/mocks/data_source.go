package mocks

import (
	"context"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// MockDataSource is a mock implementation of DataSource for testing
type MockDataSource struct {
	Content  []*domain.ContentRecord
	Progress []*domain.ProgressRecord

	// Custom behavior hooks (optional)
	FetchContentFn  func(customerID string) ([]*domain.ContentRecord, error)
	FetchProgressFn func(customerID string, since time.Time) ([]*domain.ProgressRecord, error)
}

// NewMockDataSource creates a new MockDataSource
func NewMockDataSource() *MockDataSource {
	return &MockDataSource{}
}

func (m *MockDataSource) FetchContentCatalog(ctx context.Context, customerID string) ([]*domain.ContentRecord, error) {
	if m.FetchContentFn != nil {
		return m.FetchContentFn(customerID)
	}
	return m.Content, nil
}

func (m *MockDataSource) FetchLearnerProgress(ctx context.Context, customerID string, since time.Time) ([]*domain.ProgressRecord, error) {
	if m.FetchProgressFn != nil {
		return m.FetchProgressFn(customerID, since)
	}
	return m.Progress, nil
}
