package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RubachokBoss/exam-eligibility/internal/models"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type EventPublisher interface {
	PublishStudentCreated(ctx context.Context, event *models.StudentCreatedEvent) error
	PublishRecordUpdated(ctx context.Context, event *models.RecordUpdatedEvent) error
	Close() error
}

type rabbitMQPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	logger   zerolog.Logger
}

// NewRabbitMQPublisher declares a durable direct exchange. When queueName is
// set, a durable queue is declared and bound to every routing key.
func NewRabbitMQPublisher(url, exchange, queueName string, logger zerolog.Logger) (EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	if queueName != "" {
		if err := declareQueue(channel, exchange, queueName); err != nil {
			channel.Close()
			conn.Close()
			return nil, err
		}
	}

	logger.Info().
		Str("exchange", exchange).
		Str("queue", queueName).
		Msg("Connected to RabbitMQ")

	return &rabbitMQPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		logger:   logger,
	}, nil
}

func declareQueue(channel *amqp091.Channel, exchange, queueName string) error {
	queue, err := channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{models.RoutingKeyStudentCreated, models.RoutingKeyRecordUpdated} {
		if err := channel.QueueBind(queue.Name, key, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}
	return nil
}

func (p *rabbitMQPublisher) PublishStudentCreated(ctx context.Context, event *models.StudentCreatedEvent) error {
	if err := p.publish(ctx, models.RoutingKeyStudentCreated, event); err != nil {
		return err
	}

	p.logger.Info().
		Int64("student_id", event.StudentID).
		Msg("Student created event published")
	return nil
}

func (p *rabbitMQPublisher) PublishRecordUpdated(ctx context.Context, event *models.RecordUpdatedEvent) error {
	if err := p.publish(ctx, models.RoutingKeyRecordUpdated, event); err != nil {
		return err
	}

	p.logger.Info().
		Int64("student_id", event.StudentID).
		Str("subject", event.Subject).
		Str("status", event.Status).
		Msg("Record updated event published")
	return nil
}

func (p *rabbitMQPublisher) publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		publishCtx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

func (p *rabbitMQPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}

type nopPublisher struct{}

// NewNopPublisher is used when RabbitMQ is disabled or unreachable.
func NewNopPublisher() EventPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishStudentCreated(context.Context, *models.StudentCreatedEvent) error {
	return nil
}

func (nopPublisher) PublishRecordUpdated(context.Context, *models.RecordUpdatedEvent) error {
	return nil
}

func (nopPublisher) Close() error {
	return nil
}
