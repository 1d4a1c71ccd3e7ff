package repository

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
)

// auditRetention bounds the audit_log document; older entries roll off.
const auditRetention = 5_000

type AuditRepository struct {
	items     *store.Collection[domain.AuditLog]
	retention int
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	return r.items.Modify(ctx, func(items []domain.AuditLog) ([]domain.AuditLog, error) {
		items = append(items, *entry)
		if over := len(items) - r.retention; over > 0 {
			items = items[over:]
		}
		return items, nil
	})
}

// Recent returns up to limit entries, newest last.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	items, err := r.items.All(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items, nil
}
