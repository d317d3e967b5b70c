package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

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

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), Event{Type: PieceAttached, ConclusionID: "c1", PieceID: "p1", UserID: "u1", Timestamp: at})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "c1", string(w.msgs[0].Key))

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, PieceAttached, got.Type)
	assert.Equal(t, "p1", got.PieceID)
	assert.True(t, at.Equal(got.Timestamp))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_FillsTimestamp(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Publish(context.Background(), Event{Type: PieceRemoved, ConclusionID: "c1"}))
	assert.False(t, w.msgs[0].Time.IsZero())
}

func TestNew(t *testing.T) {
	assert.IsType(t, Noop{}, New(nil, "topic"))
	assert.IsType(t, &KafkaPublisher{}, New([]string{"localhost:9092"}, "topic"))
}

func TestEmit_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	Emit(context.Background(), p, zap.New(core), Event{Type: PiecesReordered, ConclusionID: "c1"})

	entries := logs.FilterMessage("event_publish_failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, PiecesReordered, entries[0].ContextMap()["event_type"])
}
