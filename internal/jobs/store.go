package jobs

import "context"

// Store persists job state. Implementations must apply the forward-only
// transition rules and return copies from read methods.
type Store interface {
	// Create registers a new queued job and returns it.
	Create(ctx context.Context) (*Job, error)
	// Get returns the job with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Job, error)
	// SetStatus advances the job to status.
	SetStatus(ctx context.Context, id string, status Status) error
	// SetProgress updates the human-readable progress string.
	SetProgress(ctx context.Context, id, progress string) error
	// Complete marks the job completed and attaches its result.
	Complete(ctx context.Context, id string, result *Result, warnings []string) error
	// Fail marks the job failed with the given message.
	Fail(ctx context.Context, id, message string) error
	// Close releases any underlying resources.
	Close() error
}
