package repository

import (
	"context"
	"slices"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medication"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
)

type MedicationListRepository struct {
	items *store.Collection[string]
}

func (r *MedicationListRepository) Add(ctx context.Context, name string) ([]string, error) {
	var list []string
	err := r.items.Modify(ctx, func(items []string) ([]string, error) {
		if slices.Contains(items, name) {
			return nil, medication.ErrDuplicateMedication
		}
		list = append(items, name)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(list), nil
}

func (r *MedicationListRepository) Remove(ctx context.Context, name string) error {
	removed, err := r.items.Remove(ctx, func(s string) bool { return s == name })
	if err != nil {
		return err
	}
	if removed == 0 {
		return medication.ErrMedicationNotFound
	}
	return nil
}

func (r *MedicationListRepository) All(ctx context.Context) ([]string, error) {
	return r.items.All(ctx)
}

func (r *MedicationListRepository) Clear(ctx context.Context) error {
	return r.items.Modify(ctx, func([]string) ([]string, error) { return []string{}, nil })
}

type DrugCheckRepository struct {
	docs *timestamped[medication.CheckResult]
}

// Save stores r under a drugCheck_<ts> key taken from r.CheckedAt and sets r.ID.
func (r *DrugCheckRepository) Save(ctx context.Context, res *medication.CheckResult) error {
	id, err := r.docs.create(ctx, res.CheckedAt, func(id string) *medication.CheckResult {
		res.ID = id
		return res
	})
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

func (r *DrugCheckRepository) History(ctx context.Context) ([]*medication.CheckResult, error) {
	all, err := r.docs.list(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(all)
	return all, nil
}
