package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypePipelineTriggered MessageType = "pipeline.triggered"
	MessageTypeJobReady          MessageType = "job.ready"
	MessageTypeJobCompleted      MessageType = "job.completed"
	MessageTypePipelineFinished  MessageType = "pipeline.finished"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// PipelineTriggeredPayload — payload для сообщения о новом pipeline.
type PipelineTriggeredPayload struct {
	PipelineID uuid.UUID `json:"pipeline_id"`
}

// JobReadyPayload — payload для сообщения о готовом к выполнению job.
type JobReadyPayload struct {
	JobID      uuid.UUID `json:"job_id"`
	PipelineID uuid.UUID `json:"pipeline_id"`
}

// JobCompletedPayload — payload для сообщения о завершённом job.
type JobCompletedPayload struct {
	JobID        uuid.UUID `json:"job_id"`
	PipelineID   uuid.UUID `json:"pipeline_id"`
	Channel      string    `json:"channel"`
	Status       string    `json:"status"` // PASSED или FAILED
	AllowFailure bool      `json:"allow_failure"`
	Error        string    `json:"error,omitempty"`
}

// PipelineFinishedPayload — payload для сообщения об итоге pipeline.
// Полный отчёт внешние потребители забирают через API по pipeline_id.
type PipelineFinishedPayload struct {
	PipelineID uuid.UUID `json:"pipeline_id"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishPipelineTriggered публикует событие о новом pipeline, ожидающем обработки.
// Потребитель: Orchestrator.
func (p *Publisher) PublishPipelineTriggered(ctx context.Context, pipelineID uuid.UUID) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypePipelineTriggered,
		Payload:   PipelineTriggeredPayload{PipelineID: pipelineID},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangePipelines, RoutingKeyTriggered, msg)
}

// PublishJobReady публикует событие о job, готовом к выполнению.
// Потребитель: Agent.
func (p *Publisher) PublishJobReady(ctx context.Context, jobID, pipelineID uuid.UUID) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobReady,
		Payload:   JobReadyPayload{JobID: jobID, PipelineID: pipelineID},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeyReady, msg)
}

// PublishJobCompleted публикует событие о завершённом job.
// Потребитель: Orchestrator.
func (p *Publisher) PublishJobCompleted(ctx context.Context, payload JobCompletedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeJobCompleted,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeJobs, RoutingKeyCompleted, msg)
}

// PublishPipelineFinished публикует итог pipeline для внешних потребителей.
func (p *Publisher) PublishPipelineFinished(ctx context.Context, payload PipelineFinishedPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypePipelineFinished,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangePipelines, RoutingKeyFinished, msg)
}

// PublishJSON публикует произвольный JSON payload.
func (p *Publisher) PublishJSON(ctx context.Context, exchange Exchange, routingKey RoutingKey, msgType MessageType, payload any) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, exchange, routingKey, msg)
}
