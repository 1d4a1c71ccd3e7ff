package medication

import "context"

// ListRepository holds the medications a session is about to check.
type ListRepository interface {
	// Add appends name unless it is already listed, in which case it returns
	// ErrDuplicateMedication. The resulting list is returned.
	Add(ctx context.Context, name string) ([]string, error)
	Remove(ctx context.Context, name string) error
	All(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

type CheckRepository interface {
	Save(ctx context.Context, r *CheckResult) error
	// History returns stored results, newest first.
	History(ctx context.Context) ([]*CheckResult, error)
}
