// Package kafka publishes task changes to a Kafka topic.
package kafka

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"github.com/sanLimbu/todo-app/internal"
)

const otelName = "github.com/sanLimbu/todo-app/internal/kafka"

// Task represents the repository used for publishing Task records.
type Task struct {
	producer  *kafka.Producer
	topicName string
}

// Event is the message value written to the topic.
type Event struct {
	Type  string
	Value internal.Task
}

// NewTask instantiates the Task repository.
func NewTask(producer *kafka.Producer, topicName string) *Task {
	return &Task{
		topicName: topicName,
		producer:  producer,
	}
}

// Created publishes a message indicating a task was created.
func (t *Task) Created(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Created", internal.EventTaskCreated, task)
}

// Deleted publishes a message indicating a task was deleted.
func (t *Task) Deleted(ctx context.Context, id string) error {
	return t.publish(ctx, "Task.Deleted", internal.EventTaskDeleted, internal.Task{ID: id})
}

// Updated publishes a message indicating a task was updated.
func (t *Task) Updated(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Updated", internal.EventTaskUpdated, task)
}

func (t *Task) publish(ctx context.Context, spanName, msgType string, task internal.Task) error {
	_, span := otel.Tracer(otelName).Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		semconv.MessagingSystemKey.String("kafka"),
		semconv.MessagingDestinationKey.String(t.topicName),
	)

	b, err := EncodeEvent(Event{Type: msgType, Value: task})
	if err != nil {
		return err
	}

	if err := t.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &t.topicName,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(task.ID),
		Value: b,
	}, nil); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "producer.Produce")
	}

	return nil
}

// EncodeEvent returns the wire representation of evt.
func EncodeEvent(evt Event) ([]byte, error) {
	var b bytes.Buffer

	if err := json.NewEncoder(&b).Encode(evt); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Encode")
	}

	return b.Bytes(), nil
}

// DecodeEvent parses a message value produced by Task.
func DecodeEvent(b []byte) (Event, error) {
	var evt Event

	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&evt); err != nil {
		return Event{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json.Decode")
	}

	return evt, nil
}
