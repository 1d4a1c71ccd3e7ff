package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type note struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "a", []byte(`1`)))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`1`), got)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"), "delete is idempotent")

	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Keys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, k := range []string{"chat_2", "chat_1", "drugCheck_1", "chat"} {
		require.NoError(t, s.Put(ctx, k, []byte(`{}`)))
	}

	keys, err := s.Keys(ctx, "chat_")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_1", "chat_2"}, keys)
}

func TestMemoryStore_UpdateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "k", []byte(`"old"`)))

	boom := errors.New("boom")
	err := s.Update(ctx, "k", func(current []byte, exists bool) ([]byte, error) {
		assert.True(t, exists)
		assert.Equal(t, []byte(`"old"`), current)
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"old"`), got)
}

func TestScoped_IsolatesKeys(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore()
	a := Scoped(base, SessionScope("a"))
	b := Scoped(base, SessionScope("b"))

	require.NoError(t, a.Put(ctx, "currentUser", []byte(`"alice"`)))

	_, err := b.Get(ctx, "currentUser")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err := a.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"currentUser"}, keys)

	raw, err := base.Get(ctx, "session/a/currentUser")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"alice"`), raw)
}

func TestCollection_AppendPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[note](NewMemoryStore(), "patients", zap.NewNop())

	const n = 25
	for i := 0; i < n; i++ {
		require.NoError(t, c.Append(ctx, note{ID: i, Text: fmt.Sprintf("n%d", i)}))
	}

	all, err := c.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, n)
	for i, rec := range all {
		assert.Equal(t, i, rec.ID)
	}
}

func TestCollection_AbsentIsEmpty(t *testing.T) {
	c := NewCollection[note](NewMemoryStore(), "nothing", zap.NewNop())

	all, err := c.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestCollection_CorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "patients", []byte(`[{"id":1,`)))

	c := NewCollection[note](s, "patients", zap.NewNop())
	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	// The next append replaces the unreadable value.
	require.NoError(t, c.Append(ctx, note{ID: 7}))
	all, err = c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: 7}}, all)
}

func TestCollection_Remove(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[note](NewMemoryStore(), "notes", zap.NewNop())
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Append(ctx, note{ID: i}))
	}

	removed, err := c.Remove(ctx, func(n note) bool { return n.ID%2 == 0 })
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: 1}, {ID: 3}}, all)
}

func TestCollection_ConcurrentAppendsAreNotLost(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[note](NewMemoryStore(), "appointments", zap.NewNop())

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			assert.NoError(t, c.Append(ctx, note{ID: id}))
		}(i)
	}
	wg.Wait()

	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers)
}

func TestCollection_AppendWithSeesExisting(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[note](NewMemoryStore(), "notes", zap.NewNop())
	require.NoError(t, c.Append(ctx, note{ID: 1}))

	created, err := c.AppendWith(ctx, func(existing []note) (note, error) {
		return note{ID: len(existing) + 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)
}

func TestCreateTimestamped_BumpsOnCollision(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)

	k1, err := CreateTimestamped(ctx, s, "chat", now, func(key string) any { return note{Text: key} })
	require.NoError(t, err)
	k2, err := CreateTimestamped(ctx, s, "chat", now, func(key string) any { return note{Text: key} })
	require.NoError(t, err)

	assert.Equal(t, "chat_1700000000000", k1)
	assert.Equal(t, "chat_1700000000001", k2)

	stored, err := GetJSON[note](ctx, s, k2)
	require.NoError(t, err)
	assert.Equal(t, k2, stored.Text)

	ts, ok := ParseTimestampKey("chat", k2)
	require.True(t, ok)
	assert.Equal(t, int64(1_700_000_000_001), ts.UnixMilli())
}

func TestGetJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "currentUser", []byte(`{not json`)))

	_, err := GetJSON[note](ctx, s, "currentUser")
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.True(t, IsAbsent(err))
}

func TestUpdateJSON(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := UpdateJSON(ctx, s, "n", func(v *note, exists bool) error {
		assert.False(t, exists)
		v.ID = 1
		return nil
	})
	require.NoError(t, err)

	err = UpdateJSON(ctx, s, "n", func(v *note, exists bool) error {
		assert.True(t, exists)
		v.ID++
		return nil
	})
	require.NoError(t, err)

	got, err := GetJSON[note](ctx, s, "n")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ID)
}

func TestInstrumented_ReportsOperations(t *testing.T) {
	ctx := context.Background()
	var ops []string
	s := Instrumented(NewMemoryStore(), func(op string, _ time.Duration) { ops = append(ops, op) })

	require.NoError(t, s.Put(ctx, "k", []byte(`1`)))
	_, _ = s.Get(ctx, "k")
	_, _ = s.Keys(ctx, "")
	require.NoError(t, s.Update(ctx, "k", func([]byte, bool) ([]byte, error) { return []byte(`2`), nil }))
	require.NoError(t, s.Delete(ctx, "k"))

	assert.Equal(t, []string{"put", "get", "keys", "update", "delete"}, ops)
}
