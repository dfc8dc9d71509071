package services

import (
	"fmt"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// Chunk splits serialized units into transmission chunks of at most maxSize
// units each, preserving input order. For n units the result has ceil(n/k)
// chunks and every chunk except possibly the last holds exactly k units.
// The size cap is a hard limit from the channel configuration, not a hint.
// A zero or negative maxSize is a configuration error and fails before any
// network activity.
func Chunk(units []domain.SerializedUnit, maxSize int) ([]*domain.TransmissionChunk, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", domain.ErrInvalidConfiguration, maxSize)
	}

	var chunks []*domain.TransmissionChunk
	for start := 0; start < len(units); start += maxSize {
		end := start + maxSize
		if end > len(units) {
			end = len(units)
		}
		chunks = append(chunks, &domain.TransmissionChunk{
			Index: len(chunks),
			Units: units[start:end],
		})
	}
	return chunks, nil
}
