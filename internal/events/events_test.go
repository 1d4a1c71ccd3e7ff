package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w)

	e := New(DrugChecked, "sess-1", map[string]string{"risk_level": "high"})
	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "sess-1", string(msg.Key))
	assert.Equal(t, DrugChecked, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, DrugChecked, decoded.Type)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_KeyFallsBackToEventID(t *testing.T) {
	w := &fakeWriter{}
	e := New(ContactReceived, "", nil)

	require.NoError(t, NewKafkaPublisher(w).Publish(context.Background(), e))
	assert.Equal(t, e.ID, string(w.msgs[0].Key))
}

func TestKafkaPublisher_WrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	err := NewKafkaPublisher(&fakeWriter{err: boom}).Publish(context.Background(), New(ChatReplied, "s", nil))
	assert.ErrorIs(t, err, boom)
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.Publish(context.Background(), New(UserLoggedIn, "s", nil)))
	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, UserLoggedIn, entries[0].ContextMap()["type"])
}
