package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/skyportal/skyportal/internal/errdef"
	"github.com/skyportal/skyportal/internal/middleware"
)

// QueueName of the queue submission ids are published to.
const QueueName = "sharing-submission"

type message struct {
	ID uint
}

func declareQueue(channel *amqp.Channel) error {
	_, err := channel.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue %q: %v", QueueName, err)
	}
	return nil
}

func NewQueue(connection *amqp.Connection) (*Queue, error) {
	channel, err := connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open AMQP channel: %v", err)
	}

	if err := declareQueue(channel); err != nil {
		return nil, err
	}

	return &Queue{channel: channel}, nil
}

// Queue publishes submissions to be processed.
type Queue struct {
	channel *amqp.Channel
}

func (q *Queue) Enqueue(ctx context.Context, submissionID uint) error {
	body, err := json.Marshal(message{ID: submissionID})
	if err != nil {
		return err
	}

	// the worker logs with the correlation id of the request which queued the submission
	correlationID, _ := middleware.GetCorrelationID(ctx)
	return q.channel.PublishWithContext(ctx, "", QueueName, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: correlationID,
		Body:          body,
	})
}

func (q *Queue) Close() error {
	return q.channel.Close()
}

type processor interface {
	Process(ctx context.Context, id uint) error
	Fail(ctx context.Context, id uint, cause error) error
}

func NewConsumer(logger *slog.Logger, connection *amqp.Connection, processor processor) (*Consumer, error) {
	channel, err := connection.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open AMQP channel: %v", err)
	}

	if err := declareQueue(channel); err != nil {
		return nil, err
	}

	// submissions are processed one at a time so the TNS rate limit is respected
	if err := channel.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set AMQP prefetch count: %v", err)
	}

	return &Consumer{logger: logger, channel: channel, processor: processor}, nil
}

// Consumer processes queued submissions.
type Consumer struct {
	logger    *slog.Logger
	channel   *amqp.Channel
	processor processor
}

// Consume processes submissions until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, QueueName, "skyportal-submission", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %q: %v", QueueName, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("submission deliveries channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	if d.CorrelationId != "" {
		ctx = middleware.NewContextWithCorrelationID(ctx, d.CorrelationId)
	}

	var payload message
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		c.logger.ErrorContext(ctx, "Error unmarshalling submission message", "error", err)
		c.nack(ctx, d, false)
		return
	}

	err := c.processor.Process(ctx, payload.ID)
	if err == nil {
		c.logger.InfoContext(ctx, "Processed submission", "submission", payload.ID)
		c.ack(ctx, d)
		return
	}

	if retryAfter, ok := IsRateLimited(err); ok {
		c.logger.InfoContext(ctx, "Submission rate limited", "submission", payload.ID, "retryAfter", retryAfter)
		timer := time.NewTimer(retryAfter)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		c.nack(ctx, d, true)
		return
	}

	if errdef.IsNotFound(err) {
		c.logger.WarnContext(ctx, "Submission not found", "submission", payload.ID, "error", err)
		c.ack(ctx, d)
		return
	}

	// the message is dropped since a retry could publish to a target a second time. targets still
	// pending are failed so the obj can be submitted again.
	c.logger.ErrorContext(ctx, "Error processing submission", "submission", payload.ID, "error", err)
	if err := c.processor.Fail(ctx, payload.ID, fmt.Errorf("processing failed: %v", err)); err != nil {
		c.logger.ErrorContext(ctx, "Error failing submission", "submission", payload.ID, "error", err)
	}
	c.nack(ctx, d, false)
}

func (c *Consumer) ack(ctx context.Context, d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		c.logger.ErrorContext(ctx, "Error acknowledging submission message", "error", err)
	}
}

func (c *Consumer) nack(ctx context.Context, d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		c.logger.ErrorContext(ctx, "Error negatively acknowledging submission message", "error", err)
	}
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
