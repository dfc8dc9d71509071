package driving

import (
	"context"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// Transmitter orchestrates export, chunking, transmission and audit
// bookkeeping for channel configurations.
type Transmitter interface {
	// Run executes one sync run for a configuration. Empty unitTypes
	// means all unit types. Per-unit failures do not fail the run; the
	// returned result carries exact counts and capped failure details.
	Run(ctx context.Context, runCtx *domain.RunContext, configurationID string, unitTypes []domain.UnitType) (*domain.RunResult, error)

	// RunAll executes a run for every active configuration of a customer.
	// Runs for different configurations proceed concurrently.
	RunAll(ctx context.Context, runCtx *domain.RunContext, customerID string) ([]*domain.RunResult, error)
}

// HealthChecker verifies a channel configuration is reachable and
// authenticated without performing a sync.
type HealthChecker interface {
	// Check probes the configuration's channel. Expected failure modes are
	// returned as a status; only an unknown channel code is an error.
	Check(ctx context.Context, configurationID string) (*domain.HealthCheckResult, error)
}
