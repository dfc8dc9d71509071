// Package channels holds the channel adapter registry and the per-channel
// token plumbing shared by the concrete adapters.
package channels

import (
	"fmt"
	"sync"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
	"github.com/openlearn-labs/channelsync-core/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ChannelFactory = (*Factory)(nil)

// Factory maintains the registry of channel builders, selected by the
// channel code on a configuration.
type Factory struct {
	mu       sync.RWMutex
	builders map[domain.ChannelCode]driven.ChannelBuilder
}

// NewFactory creates a channel factory.
func NewFactory() *Factory {
	return &Factory{
		builders: make(map[domain.ChannelCode]driven.ChannelBuilder),
	}
}

// Register registers a builder for a channel code.
func (f *Factory) Register(builder driven.ChannelBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[builder.Code()] = builder
}

// GetBuilder returns the builder for a channel code.
func (f *Factory) GetBuilder(code domain.ChannelCode) (driven.ChannelBuilder, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	builder, ok := f.builders[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrChannelNotFound, code)
	}
	return builder, nil
}

// SupportedChannels returns all registered channel codes.
func (f *Factory) SupportedChannels() []domain.ChannelCode {
	f.mu.RLock()
	defer f.mu.RUnlock()
	codes := make([]domain.ChannelCode, 0, len(f.builders))
	for code := range f.builders {
		codes = append(codes, code)
	}
	return codes
}
