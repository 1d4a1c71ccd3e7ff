package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dmehra2102/prod-golang-projects/myhealth/internal/store"
	"go.uber.org/zap"
)

var errDocNotFound = errors.New("document not found")

// timestamped manages documents stored one per key as <prefix>_<unix-millis>.
// The key doubles as the document ID.
type timestamped[T any] struct {
	store  store.Store
	prefix string
	log    *zap.Logger
}

func newTimestamped[T any](s store.Store, prefix string, log *zap.Logger) *timestamped[T] {
	return &timestamped[T]{store: s, prefix: prefix, log: log}
}

// owns reports whether id names a document of this kind, so callers cannot
// reach unrelated keys through an ID.
func (t *timestamped[T]) owns(id string) bool {
	_, ok := store.ParseTimestampKey(t.prefix, id)
	return ok
}

func (t *timestamped[T]) create(ctx context.Context, now time.Time, build func(id string) *T) (string, error) {
	return store.CreateTimestamped(ctx, t.store, t.prefix, now, func(key string) any {
		return build(key)
	})
}

func (t *timestamped[T]) get(ctx context.Context, id string) (*T, error) {
	if !t.owns(id) {
		return nil, errDocNotFound
	}
	v, err := store.GetJSON[T](ctx, t.store, id)
	if store.IsAbsent(err) {
		return nil, errDocNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// list returns every readable document, oldest first. Unreadable ones are
// skipped with a warning.
func (t *timestamped[T]) list(ctx context.Context) ([]*T, error) {
	keys, err := t.store.Keys(ctx, t.prefix+"_")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.prefix, err)
	}
	keys = slices.DeleteFunc(keys, func(k string) bool { return !t.owns(k) })
	slices.SortFunc(keys, func(a, b string) int {
		ta, _ := store.ParseTimestampKey(t.prefix, a)
		tb, _ := store.ParseTimestampKey(t.prefix, b)
		return ta.Compare(tb)
	})

	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		v, err := store.GetJSON[T](ctx, t.store, k)
		if store.IsAbsent(err) {
			t.log.Warn("skipping unreadable document", zap.String("key", k), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, nil
}

func (t *timestamped[T]) update(ctx context.Context, id string, fn func(v *T) error) (*T, error) {
	if !t.owns(id) {
		return nil, errDocNotFound
	}
	var out T
	err := store.UpdateJSON(ctx, t.store, id, func(v *T, exists bool) error {
		if !exists {
			return errDocNotFound
		}
		if err := fn(v); err != nil {
			return err
		}
		out = *v
		return nil
	})
	if errors.Is(err, store.ErrCorrupt) {
		return nil, errDocNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *timestamped[T]) count(ctx context.Context) (int, error) {
	keys, err := t.store.Keys(ctx, t.prefix+"_")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range keys {
		if t.owns(k) {
			n++
		}
	}
	return n, nil
}

// translate maps errDocNotFound to the caller's domain error.
func translate(err, notFound error) error {
	if errors.Is(err, errDocNotFound) {
		return notFound
	}
	return err
}
