package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"HospitalMS/config"
	"HospitalMS/logger"
	"HospitalMS/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	err       error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func newTestBroker(ch *fakeChannel) *RabbitMQBroker {
	return &RabbitMQBroker{ch: ch, queueName: "visit_events", cb: config.NewCircuitBreaker("rabbitmq", logger.Nop())}
}

func TestPublishVisitCompleted(t *testing.T) {
	ch := &fakeChannel{}
	broker := newTestBroker(ch)

	evt := models.VisitCompletedEvent{VisitID: "v1", PatientID: "p1", Tests: 2, CompletedAt: time.Now().UTC()}
	require.NoError(t, broker.PublishVisitCompleted(context.Background(), evt))

	require.Len(t, ch.published, 1)
	msg := ch.published[0]
	assert.Equal(t, "visit_events", ch.keys[0])
	assert.Equal(t, VisitCompletedType, msg.Type)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "v1", msg.MessageId)

	var decoded models.VisitCompletedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, 2, decoded.Tests)
	assert.Equal(t, "p1", decoded.PatientID)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	ch := &fakeChannel{err: errors.New("connection reset")}
	broker := newTestBroker(ch)

	for i := 0; i < 3; i++ {
		assert.Error(t, broker.PublishVisitCompleted(context.Background(), models.VisitCompletedEvent{VisitID: "v"}))
	}
	err := broker.PublishVisitCompleted(context.Background(), models.VisitCompletedEvent{VisitID: "v"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
