package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InfringeScope/internal/domain/event"
	"github.com/turtacn/InfringeScope/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	written   []kafka.Message
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return NewProducerWithWriter(w, ProducerConfig{
		Brokers:     []string{"localhost:9092"},
		TopicPrefix: "infringescope.",
	}, nil)
}

func TestProducer_PublishRoutesByType(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)
	e, err := event.New(event.ReportSaved, "infringescope", "r-1", map[string]string{"report_id": "r-1"})
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.written, 1)
	msg := w.written[0]
	assert.Equal(t, "infringescope.report.saved", msg.Topic)
	assert.Equal(t, []byte("r-1"), msg.Key)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("report.saved"), msg.Headers[0].Value)

	var decoded event.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, int64(1), p.Sent())
}

func TestProducer_PublishFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return stderrors.New("broker down")
	}}
	p := newTestProducer(w)
	e, err := event.New(event.AnalysisCompleted, "infringescope", "k", struct{}{})
	require.NoError(t, err)

	err = p.Publish(context.Background(), e)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))
	assert.Equal(t, int64(1), p.Failed())
}

func TestProducer_RejectsInvalidEvents(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	assert.Error(t, p.Publish(context.Background(), nil))
	assert.Error(t, p.Publish(context.Background(), &event.Event{}))

	big, err := event.New(event.ReportSaved, "s", "k", strings.Repeat("x", 2*1024*1024))
	require.NoError(t, err)
	err = p.Publish(context.Background(), big)
	assert.True(t, errors.IsValidation(err))
}

func TestProducer_Close(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	e, err := event.New(event.ReportSaved, "s", "k", struct{}{})
	require.NoError(t, err)
	assert.ErrorIs(t, p.Publish(context.Background(), e), ErrProducerClosed)
}

func TestValidateProducerConfig(t *testing.T) {
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b"}, MaxRetries: -1}))
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b"}}))

	_, err := NewProducer(ProducerConfig{}, nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
