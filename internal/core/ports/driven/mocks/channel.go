package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// MockChannelClient is a mock implementation of ChannelClient for testing.
// By default every chunk succeeds; SendFn overrides per test.
type MockChannelClient struct {
	ChannelCode domain.ChannelCode

	mu         sync.Mutex
	SentChunks []*domain.TransmissionChunk

	// Custom behavior hooks (optional)
	SendFn      func(unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error)
	HeartbeatFn func() error
}

// NewMockChannelClient creates a new MockChannelClient
func NewMockChannelClient(code domain.ChannelCode) *MockChannelClient {
	return &MockChannelClient{ChannelCode: code}
}

func (m *MockChannelClient) Code() domain.ChannelCode {
	return m.ChannelCode
}

func (m *MockChannelClient) Send(ctx context.Context, unitType domain.UnitType, chunk *domain.TransmissionChunk) (*domain.ChunkOutcome, error) {
	m.mu.Lock()
	m.SentChunks = append(m.SentChunks, chunk)
	m.mu.Unlock()

	if m.SendFn != nil {
		return m.SendFn(unitType, chunk)
	}

	outcome := domain.NewChunkOutcome()
	outcome.SucceedAll(chunk)
	return outcome, nil
}

func (m *MockChannelClient) Heartbeat(ctx context.Context) error {
	if m.HeartbeatFn != nil {
		return m.HeartbeatFn()
	}
	return nil
}

// SentCount returns how many chunks were sent (for test assertions).
func (m *MockChannelClient) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SentChunks)
}

// MockSerializer is a mock implementation of PayloadSerializer for testing.
// It JSON-encodes the unit's fields unless SerializeFn is set.
type MockSerializer struct {
	SerializeFn func(unit domain.ExportableUnit) ([]byte, error)
}

func (m *MockSerializer) Serialize(unit domain.ExportableUnit) ([]byte, error) {
	if m.SerializeFn != nil {
		return m.SerializeFn(unit)
	}
	return json.Marshal(unit.Fields)
}

// MockChannelBuilder is a mock implementation of ChannelBuilder for testing
type MockChannelBuilder struct {
	ChannelCode domain.ChannelCode
	Client      *MockChannelClient

	// Custom behavior hooks (optional)
	ValidateFn        func(config *domain.ChannelConfiguration, creds *domain.Credentials) error
	BuildClientFn     func(config *domain.ChannelConfiguration) (driven.ChannelClient, error)
	BuildSerializerFn func(unitType domain.UnitType) (driven.PayloadSerializer, error)
}

// NewMockChannelBuilder creates a builder whose client succeeds on every send.
func NewMockChannelBuilder(code domain.ChannelCode) *MockChannelBuilder {
	return &MockChannelBuilder{
		ChannelCode: code,
		Client:      NewMockChannelClient(code),
	}
}

func (m *MockChannelBuilder) Code() domain.ChannelCode {
	return m.ChannelCode
}

func (m *MockChannelBuilder) ValidateConfig(config *domain.ChannelConfiguration, creds *domain.Credentials) error {
	if m.ValidateFn != nil {
		return m.ValidateFn(config, creds)
	}
	return nil
}

func (m *MockChannelBuilder) BuildClient(ctx context.Context, config *domain.ChannelConfiguration, tokens driven.TokenProvider) (driven.ChannelClient, error) {
	if m.BuildClientFn != nil {
		return m.BuildClientFn(config)
	}
	return m.Client, nil
}

func (m *MockChannelBuilder) BuildSerializer(config *domain.ChannelConfiguration, unitType domain.UnitType) (driven.PayloadSerializer, error) {
	if m.BuildSerializerFn != nil {
		return m.BuildSerializerFn(unitType)
	}
	return &MockSerializer{}, nil
}

// MockChannelFactory is a mock implementation of ChannelFactory for testing
type MockChannelFactory struct {
	mu       sync.RWMutex
	builders map[domain.ChannelCode]driven.ChannelBuilder
}

// NewMockChannelFactory creates a new MockChannelFactory
func NewMockChannelFactory() *MockChannelFactory {
	return &MockChannelFactory{
		builders: make(map[domain.ChannelCode]driven.ChannelBuilder),
	}
}

func (m *MockChannelFactory) Register(builder driven.ChannelBuilder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builders[builder.Code()] = builder
}

func (m *MockChannelFactory) GetBuilder(code domain.ChannelCode) (driven.ChannelBuilder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	builder, ok := m.builders[code]
	if !ok {
		return nil, domain.ErrChannelNotFound
	}
	return builder, nil
}

func (m *MockChannelFactory) SupportedChannels() []domain.ChannelCode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	codes := make([]domain.ChannelCode, 0, len(m.builders))
	for code := range m.builders {
		codes = append(codes, code)
	}
	return codes
}

// MockTokenProviderFactory is a mock implementation of TokenProviderFactory
// for testing
type MockTokenProviderFactory struct {
	Creds *domain.Credentials

	// Custom behavior hooks (optional)
	CreateFn func(config *domain.ChannelConfiguration) (driven.TokenProvider, error)
}

// NewMockTokenProviderFactory creates a factory returning static providers
// for the given credentials.
func NewMockTokenProviderFactory(creds *domain.Credentials) *MockTokenProviderFactory {
	return &MockTokenProviderFactory{Creds: creds}
}

func (m *MockTokenProviderFactory) Create(ctx context.Context, config *domain.ChannelConfiguration) (driven.TokenProvider, error) {
	if m.CreateFn != nil {
		return m.CreateFn(config)
	}
	return driven.NewStaticTokenProvider(m.Creds), nil
}
