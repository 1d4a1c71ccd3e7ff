package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
)

type PatientRepository struct {
	items *store.Collection[patient.Patient]
}

// Create assigns p an ID unique within the collection and appends it.
func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient, registeredAt time.Time) error {
	created, err := r.items.AppendWith(ctx, func(existing []patient.Patient) (patient.Patient, error) {
		ids := make(map[string]struct{}, len(existing))
		for _, e := range existing {
			ids[e.ID] = struct{}{}
		}
		rec := *p
		rec.ID = patient.NextID(registeredAt, func(id string) bool {
			_, taken := ids[id]
			return taken
		})
		rec.RegisteredAt = registeredAt
		return rec, nil
	})
	if err != nil {
		return fmt.Errorf("appending patient: %w", err)
	}
	*p = created
	return nil
}

func (r *PatientRepository) All(ctx context.Context) ([]*patient.Patient, error) {
	items, err := r.items.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*patient.Patient, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id string) (*patient.Patient, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (r *PatientRepository) Count(ctx context.Context) (int, error) {
	items, err := r.items.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
