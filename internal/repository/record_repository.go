package repository

import (
	"context"

	mr "github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/medical_record"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
)

type RecordRepository struct {
	items *store.Collection[mr.MedicalRecord]
}

func (r *RecordRepository) Append(ctx context.Context, rec *mr.MedicalRecord) error {
	return r.items.Append(ctx, *rec)
}

func (r *RecordRepository) List(ctx context.Context) ([]*mr.MedicalRecord, error) {
	items, err := r.items.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*mr.MedicalRecord, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}
