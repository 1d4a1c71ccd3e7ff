package dermatology

import (
	"context"
	"time"
)

type Repository interface {
	// Create stores a under a fresh dermatology_<ts> key derived from now and sets a.ID.
	Create(ctx context.Context, a *Analysis, now time.Time) error
	Get(ctx context.Context, id string) (*Analysis, error)
	List(ctx context.Context) ([]*Analysis, error)
	Update(ctx context.Context, id string, fn func(a *Analysis) error) (*Analysis, error)
}
