package repository

import (
	"context"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain/contact"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
)

type ContactRepository struct {
	store store.Store
}

func (r *ContactRepository) Create(ctx context.Context, m *contact.Message, now time.Time) error {
	id, err := store.CreateTimestamped(ctx, r.store, prefixContact, now, func(key string) any {
		m.ID = key
		return m
	})
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (r *ContactRepository) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Keys(ctx, prefixContact+"_")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
