package submission

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestConsumer_handle(t *testing.T) {
	tests := map[string]struct {
		body      string
		processed error
		acked     bool
		requeued  bool
		failed    string
	}{
		"Processed": {
			body:  `{"ID": 1}`,
			acked: true,
		},
		"RateLimited": {
			body:      `{"ID": 1}`,
			processed: &RateLimitedError{RetryAfter: time.Millisecond},
			requeued:  true,
		},
		"NotFound": {
			body:      `{"ID": 1}`,
			processed: errdef.NewNotFound("submission 1 doesn't exist"),
			acked:     true,
		},
		"Failed": {
			body:      `{"ID": 1}`,
			processed: errors.New("connection refused"),
			failed:    "processing failed: connection refused",
		},
		"InvalidBody": {
			body: `not json`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			processor := &processorMock{}
			processor.On("Process", uint(1)).Return(test.processed).Maybe()
			if test.failed != "" {
				processor.On("Fail", uint(1), test.failed).Return(nil).Once()
			}
			acknowledger := &acknowledgerMock{}
			consumer := &Consumer{logger: slog.Default(), processor: processor}

			consumer.handle(context.Background(), amqp.Delivery{Acknowledger: acknowledger, DeliveryTag: 7, Body: []byte(test.body)})

			assert.Equal(t, test.acked, acknowledger.acked)
			assert.Equal(t, !test.acked, acknowledger.nacked)
			assert.Equal(t, test.requeued, acknowledger.requeued)
			processor.AssertExpectations(t)
		})
	}
}

func TestConsumer_handleCarriesCorrelationID(t *testing.T) {
	processor := &contextProcessor{}
	consumer := &Consumer{logger: slog.Default(), processor: processor}

	consumer.handle(context.Background(), amqp.Delivery{
		Acknowledger:  &acknowledgerMock{},
		CorrelationId: "3b2a6c1e",
		Body:          []byte(`{"ID": 1}`),
	})

	id, ok := middleware.GetCorrelationID(processor.ctx)
	assert.True(t, ok)
	assert.Equal(t, "3b2a6c1e", id)
}

type contextProcessor struct {
	ctx context.Context
}

func (p *contextProcessor) Process(ctx context.Context, _ uint) error {
	p.ctx = ctx
	return nil
}

func (p *contextProcessor) Fail(context.Context, uint, error) error {
	return nil
}

func TestConsumer_handleNacksWhenFailingFails(t *testing.T) {
	processor := &processorMock{}
	processor.On("Process", uint(1)).Return(errors.New("connection refused"))
	processor.On("Fail", uint(1), "processing failed: connection refused").Return(errors.New("database unavailable"))
	acknowledger := &acknowledgerMock{}
	consumer := &Consumer{logger: slog.Default(), processor: processor}

	consumer.handle(context.Background(), amqp.Delivery{Acknowledger: acknowledger, Body: []byte(`{"ID": 1}`)})

	assert.True(t, acknowledger.nacked)
	assert.False(t, acknowledger.requeued)
	processor.AssertExpectations(t)
}

func TestIsRateLimited(t *testing.T) {
	retryAfter, ok := IsRateLimited(errors.Join(errors.New("wrapped"), &RateLimitedError{RetryAfter: time.Second}))
	assert.True(t, ok)
	assert.Equal(t, time.Second, retryAfter)

	_, ok = IsRateLimited(errors.New("other"))
	assert.False(t, ok)
}

type processorMock struct {
	mock.Mock
}

func (p *processorMock) Process(_ context.Context, id uint) error {
	return p.Called(id).Error(0)
}

func (p *processorMock) Fail(_ context.Context, id uint, cause error) error {
	return p.Called(id, cause.Error()).Error(0)
}

type acknowledgerMock struct {
	acked, nacked, requeued bool
}

func (a *acknowledgerMock) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *acknowledgerMock) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *acknowledgerMock) Reject(tag uint64, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}
