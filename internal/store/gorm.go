package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is the single table behind GormStore.
type Record struct {
	Key       string         `gorm:"column:key;type:varchar(512);primaryKey"`
	Value     datatypes.JSON `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime;index"`
}

func (Record) TableName() string {
	return "portal.records"
}

// placeholder marks a row inserted only to take its lock inside Update.
var placeholder = []byte("null")

// GormStore persists records in postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row Record
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %q: %w", key, err)
	}
	if bytes.Equal(row.Value, placeholder) {
		return nil, ErrNotFound
	}
	return row.Value, nil
}

func (g *GormStore) Put(ctx context.Context, key string, value []byte) error {
	if err := upsert(g.db.WithContext(ctx), key, value); err != nil {
		return fmt.Errorf("writing record %q: %w", key, err)
	}
	return nil
}

func (g *GormStore) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("key = ?", key).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("deleting record %q: %w", key, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (g *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := g.db.WithContext(ctx).
		Model(&Record{}).
		Where("key LIKE ?", likeEscaper.Replace(prefix)+"%").
		Where("value <> 'null'::jsonb").
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("listing records with prefix %q: %w", prefix, err)
	}
	return keys, nil
}

// Update serializes writers with a row lock. A placeholder row is inserted
// first so that the lock also exists when the key is new.
func (g *GormStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := Record{Key: key, Value: datatypes.JSON(placeholder)}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seeding record %q: %w", key, err)
		}

		var row Record
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("key = ?", key).First(&row).Error; err != nil {
			return fmt.Errorf("locking record %q: %w", key, err)
		}

		exists := !bytes.Equal(row.Value, placeholder)
		var current []byte
		if exists {
			current = row.Value
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}
		return upsert(tx, key, next)
	})
}

func upsert(db *gorm.DB, key string, value []byte) error {
	row := Record{Key: key, Value: datatypes.JSON(value)}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}
