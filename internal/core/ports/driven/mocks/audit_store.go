package mocks

import (
	"context"
	"sync"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// MockAuditStore is a mock implementation of AuditStore for testing.
// It honors the compare-and-set contract of Upsert so concurrency tests
// behave like the real store.
type MockAuditStore struct {
	mu      sync.RWMutex
	records map[domain.AuditKey]*domain.AuditRecord

	// Custom behavior hooks (optional)
	UpsertFn func(record *domain.AuditRecord) error
	GetFn    func(key domain.AuditKey) (*domain.AuditRecord, error)
}

// NewMockAuditStore creates a new MockAuditStore
func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{
		records: make(map[domain.AuditKey]*domain.AuditRecord),
	}
}

func (m *MockAuditStore) Get(ctx context.Context, key domain.AuditKey) (*domain.AuditRecord, error) {
	if m.GetFn != nil {
		return m.GetFn(key)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *MockAuditStore) GetMany(ctx context.Context, configurationID string, unitType domain.UnitType) (map[string]*domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]*domain.AuditRecord)
	for key, record := range m.records {
		if key.ConfigurationID == configurationID && key.UnitType == unitType {
			copied := *record
			result[key.ItemKey] = &copied
		}
	}
	return result, nil
}

func (m *MockAuditStore) Upsert(ctx context.Context, record *domain.AuditRecord) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(record)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := record.Key()
	existing, ok := m.records[key]
	if ok && existing.Version != record.Version {
		return domain.ErrAlreadyExists
	}
	if !ok && record.Version != 0 {
		return domain.ErrAlreadyExists
	}

	record.Version++
	copied := *record
	m.records[key] = &copied
	return nil
}

func (m *MockAuditStore) ListByConfiguration(ctx context.Context, configurationID string) ([]*domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AuditRecord
	for key, record := range m.records {
		if key.ConfigurationID == configurationID {
			copied := *record
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *MockAuditStore) DeleteByConfiguration(ctx context.Context, configurationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.records {
		if key.ConfigurationID == configurationID {
			delete(m.records, key)
		}
	}
	return nil
}

// Helper methods for testing

func (m *MockAuditStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[domain.AuditKey]*domain.AuditRecord)
}

func (m *MockAuditStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// SeedRecord stores a record directly, bypassing version checks (test setup).
func (m *MockAuditStore) SeedRecord(record *domain.AuditRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.Key()] = &copied
}
