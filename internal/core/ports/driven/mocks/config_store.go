package mocks

import (
	"context"
	"sync"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// MockConfigStore is a mock implementation of ConfigStore for testing
type MockConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*domain.ChannelConfiguration

	// Custom behavior hooks (optional)
	GetFn func(id string) (*domain.ChannelConfiguration, error)
}

// NewMockConfigStore creates a new MockConfigStore
func NewMockConfigStore() *MockConfigStore {
	return &MockConfigStore{
		configs: make(map[string]*domain.ChannelConfiguration),
	}
}

func (m *MockConfigStore) Get(ctx context.Context, id string) (*domain.ChannelConfiguration, error) {
	if m.GetFn != nil {
		return m.GetFn(id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	config, ok := m.configs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return config, nil
}

func (m *MockConfigStore) ListActive(ctx context.Context, customerID string) ([]*domain.ChannelConfiguration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ChannelConfiguration
	for _, config := range m.configs {
		if config.CustomerID == customerID && config.Active {
			result = append(result, config)
		}
	}
	return result, nil
}

func (m *MockConfigStore) List(ctx context.Context, customerID string) ([]*domain.ChannelConfiguration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ChannelConfiguration
	for _, config := range m.configs {
		if config.CustomerID == customerID {
			result = append(result, config)
		}
	}
	return result, nil
}

func (m *MockConfigStore) Save(ctx context.Context, config *domain.ChannelConfiguration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[config.ID] = config
	return nil
}

func (m *MockConfigStore) Deactivate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	config, ok := m.configs[id]
	if !ok {
		return domain.ErrNotFound
	}
	config.Active = false
	return nil
}

// Helper methods for testing

func (m *MockConfigStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs = make(map[string]*domain.ChannelConfiguration)
}

// MockCredentialsStore is a mock implementation of CredentialsStore for testing
type MockCredentialsStore struct {
	mu    sync.RWMutex
	creds map[string]*domain.Credentials

	// Custom behavior hooks (optional)
	GetFn func(id string) (*domain.Credentials, error)
}

// NewMockCredentialsStore creates a new MockCredentialsStore
func NewMockCredentialsStore() *MockCredentialsStore {
	return &MockCredentialsStore{
		creds: make(map[string]*domain.Credentials),
	}
}

func (m *MockCredentialsStore) Get(ctx context.Context, id string) (*domain.Credentials, error) {
	if m.GetFn != nil {
		return m.GetFn(id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	creds, ok := m.creds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return creds, nil
}

func (m *MockCredentialsStore) Save(ctx context.Context, creds *domain.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[creds.ID] = creds
	return nil
}

func (m *MockCredentialsStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.creds, id)
	return nil
}
