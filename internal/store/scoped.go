package store

import (
	"context"
	"strings"
)

const (
	// PortalScope holds records shared by every visitor.
	PortalScope = "portal"
	scopeSep    = "/"
)

// SessionScope is the namespace of one browser session.
func SessionScope(sessionID string) string {
	return "session" + scopeSep + sessionID
}

type scoped struct {
	inner  Store
	prefix string
}

// Scoped namespaces every key of s under scope.
func Scoped(s Store, scope string) Store {
	return &scoped{inner: s, prefix: scope + scopeSep}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Put(ctx context.Context, key string, value []byte) error {
	return s.inner.Put(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *scoped) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.inner.Keys(ctx, s.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, s.prefix)
	}
	return keys, nil
}

func (s *scoped) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.inner.Update(ctx, s.prefix+key, fn)
}
