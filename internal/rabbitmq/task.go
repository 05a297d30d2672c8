// Package rabbitmq publishes task changes to the "tasks" topic exchange.
package rabbitmq

import (
	"bytes"
	"context"
	"encoding/gob"
	"time"

	"github.com/streadway/amqp"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/sanLimbu/todo-app/internal"
)

const otelName = "github.com/sanLimbu/todo-app/internal/rabbitmq"

// Exchange is the topic exchange receiving task events.
const Exchange = "tasks"

// Task represents the repository used for publishing Task records.
type Task struct {
	ch *amqp.Channel
}

// NewTask instantiates the Task repository.
func NewTask(channel *amqp.Channel) *Task {
	return &Task{
		ch: channel,
	}
}

// Created publishes a message indicating a task was created.
func (t *Task) Created(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Created", internal.EventTaskCreated, task)
}

// Deleted publishes a message indicating a task was deleted.
func (t *Task) Deleted(ctx context.Context, id string) error {
	return t.publish(ctx, "Task.Deleted", internal.EventTaskDeleted, id)
}

// Updated publishes a message indicating a task was updated.
func (t *Task) Updated(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Updated", internal.EventTaskUpdated, task)
}

func (t *Task) publish(ctx context.Context, spanName, routingKey string, e interface{}) error {
	_, span := otel.Tracer(otelName).Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		semconv.MessagingSystemKey.String("rabbitmq"),
		semconv.MessagingRabbitmqRoutingKeyKey.String(routingKey),
	)

	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(e); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "gob.Encode")
	}

	err := t.ch.Publish(
		Exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			AppId:       "todo-web-server",
			ContentType: "application/x-encoding-gob",
			Body:        b.Bytes(),
			Timestamp:   time.Now(),
		})
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "ch.Publish")
	}

	return nil
}

// DecodeTask decodes the body of created and updated events.
func DecodeTask(b []byte) (internal.Task, error) {
	var res internal.Task

	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "gob.Decode")
	}

	return res, nil
}

// DecodeID decodes the body of deleted events.
func DecodeID(b []byte) (string, error) {
	var res string

	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&res); err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "gob.Decode")
	}

	return res, nil
}
