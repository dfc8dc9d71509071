package driven

import (
	"context"
	"time"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// DataSource is the central platform's data-access collaborator. It exposes
// the raw catalog and learner-progress records the payload builder
// normalizes. Unreachability surfaces as domain.ErrDataUnavailable; an empty
// result set is valid and not an error.
type DataSource interface {
	// FetchContentCatalog returns the customer's exportable catalog items.
	FetchContentCatalog(ctx context.Context, customerID string) ([]*domain.ContentRecord, error)

	// FetchLearnerProgress returns learner progress events modified since
	// the given time. A zero time means all events.
	FetchLearnerProgress(ctx context.Context, customerID string, since time.Time) ([]*domain.ProgressRecord, error)
}
