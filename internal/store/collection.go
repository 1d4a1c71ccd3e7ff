package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Collection is an ordered, append-only sequence of records kept under a
// single key. Every mutation rewrites the whole sequence in one Update.
type Collection[T any] struct {
	store Store
	key   string
	log   *zap.Logger
}

func NewCollection[T any](s Store, key string, log *zap.Logger) *Collection[T] {
	return &Collection[T]{store: s, key: key, log: log}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// All returns the records in insertion order. An absent or unreadable
// collection is empty; only backend failures are returned as errors.
func (c *Collection[T]) All(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if IsAbsent(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return c.decode(raw), nil
}

func (c *Collection[T]) Append(ctx context.Context, rec T) error {
	_, err := c.AppendWith(ctx, func([]T) (T, error) { return rec, nil })
	return err
}

// AppendWith builds the new record from the current contents inside the same
// atomic update, which lets callers enforce uniqueness.
func (c *Collection[T]) AppendWith(ctx context.Context, build func(existing []T) (T, error)) (T, error) {
	var created T
	err := c.Modify(ctx, func(items []T) ([]T, error) {
		rec, err := build(items)
		if err != nil {
			return nil, err
		}
		created = rec
		return append(items, rec), nil
	})
	return created, err
}

// Remove drops every record matching pred and reports how many were removed.
func (c *Collection[T]) Remove(ctx context.Context, pred func(T) bool) (int, error) {
	removed := 0
	err := c.Modify(ctx, func(items []T) ([]T, error) {
		kept := items[:0]
		for _, it := range items {
			if pred(it) {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		return kept, nil
	})
	return removed, err
}

// Modify replaces the collection with the result of fn.
func (c *Collection[T]) Modify(ctx context.Context, fn func(items []T) ([]T, error)) error {
	return c.store.Update(ctx, c.key, func(current []byte, exists bool) ([]byte, error) {
		items := []T{}
		if exists {
			items = c.decode(current)
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encoding collection %q: %w", c.key, err)
		}
		return raw, nil
	})
}

func (c *Collection[T]) decode(raw []byte) []T {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Warn("stored collection is unreadable, treating as empty",
			zap.String("key", c.key),
			zap.Error(err),
		)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}
