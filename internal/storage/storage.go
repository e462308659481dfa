// Package storage defines the persistence capability the discovery engine
// consumes: saving and retrieving one ranked resource list per topic.
package storage

import (
	"context"

	"github.com/aihorizon/eduscout/internal/types"
)

// Store persists ranked discovery results keyed by topic
type Store interface {
	// SaveResults replaces the stored result list for a topic
	SaveResults(ctx context.Context, topic string, results []types.ScoredResource) error

	// GetResults returns the stored result list for a topic in rank order.
	// A topic with no stored results yields an empty slice, not an error.
	GetResults(ctx context.Context, topic string) ([]types.ScoredResource, error)

	// Topics lists every topic with stored results
	Topics(ctx context.Context) ([]string, error)

	Close() error
}
