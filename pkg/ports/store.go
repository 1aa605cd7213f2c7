package ports

import (
	"context"

	"github.com/aretw0/scripter/pkg/domain"
)

// RunStore defines the interface for persisting run history.
type RunStore interface {
	// Save persists the record under its ID, replacing any previous version.
	Save(ctx context.Context, record *domain.RunRecord) error

	// Load retrieves the record for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.RunRecord, error)

	// Delete removes the record for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of stored runs.
	List(ctx context.Context) ([]string, error)
}
