// Package media stores uploaded images.
package media

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("media object not found")

type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

type Store interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, key string) (Object, error)
}

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (m *MemoryStore) Put(_ context.Context, obj Object) error {
	obj.Data = append([]byte(nil), obj.Data...)

	m.mu.Lock()
	m.objects[obj.Key] = obj
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (Object, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return Object{}, ErrNotFound
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, nil
}
