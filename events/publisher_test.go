package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherKeysByUser(t *testing.T) {
	writer := &recordingWriter{}
	pub := NewKafkaPublisherWithWriter(writer)

	at := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	event := NewActivityEvent(42, "task_created", "Created task: write report", at)
	require.NoError(t, pub.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)

	var decoded ActivityEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
	assert.NotEmpty(t, decoded.EventID)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "task_created", string(msg.Headers[0].Value))

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

func TestNewWithoutBrokersIsNop(t *testing.T) {
	pub := New(nil, "focusdesk.activity")
	_, ok := pub.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, pub.Publish(context.Background(), ActivityEvent{}))
}
