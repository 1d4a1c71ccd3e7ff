package store

import (
	"context"
	"time"
)

// Observer receives the duration of every store operation.
type Observer func(operation string, d time.Duration)

type instrumented struct {
	inner   Store
	observe Observer
}

// Instrumented reports the latency of each operation on s to observe.
func Instrumented(s Store, observe Observer) Store {
	return &instrumented{inner: s, observe: observe}
}

func (s *instrumented) track(op string, start time.Time) {
	s.observe(op, time.Since(start))
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	defer s.track("get", time.Now())
	return s.inner.Get(ctx, key)
}

func (s *instrumented) Put(ctx context.Context, key string, value []byte) error {
	defer s.track("put", time.Now())
	return s.inner.Put(ctx, key, value)
}

func (s *instrumented) Delete(ctx context.Context, key string) error {
	defer s.track("delete", time.Now())
	return s.inner.Delete(ctx, key)
}

func (s *instrumented) Keys(ctx context.Context, prefix string) ([]string, error) {
	defer s.track("keys", time.Now())
	return s.inner.Keys(ctx, prefix)
}

func (s *instrumented) Update(ctx context.Context, key string, fn UpdateFunc) error {
	defer s.track("update", time.Now())
	return s.inner.Update(ctx, key, fn)
}
