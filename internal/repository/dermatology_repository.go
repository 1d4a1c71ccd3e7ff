package repository

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/dermatology"
)

type AnalysisRepository struct {
	docs *timestamped[dermatology.Analysis]
}

func (r *AnalysisRepository) Create(ctx context.Context, a *dermatology.Analysis, now time.Time) error {
	id, err := r.docs.create(ctx, now, func(id string) *dermatology.Analysis {
		a.ID = id
		return a
	})
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, id string) (*dermatology.Analysis, error) {
	a, err := r.docs.get(ctx, id)
	return a, translate(err, dermatology.ErrAnalysisNotFound)
}

func (r *AnalysisRepository) List(ctx context.Context) ([]*dermatology.Analysis, error) {
	return r.docs.list(ctx)
}

func (r *AnalysisRepository) Update(ctx context.Context, id string, fn func(a *dermatology.Analysis) error) (*dermatology.Analysis, error) {
	a, err := r.docs.update(ctx, id, fn)
	return a, translate(err, dermatology.ErrAnalysisNotFound)
}
