package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/todo-app/internal"
)

const otelName = "github.com/sanLimbu/todo-app/internal/session"

// Redis stores sessions as JSON values under "session:<id>".
type Redis struct {
	client *redis.Client
}

// NewRedis instantiates the Redis backend.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
	}
}

func redisKey(id string) string {
	return "session:" + id
}

// Get returns the stored session.
func (r *Redis) Get(ctx context.Context, id string) (Data, error) {
	defer newOTELSpan(ctx, "Redis.Get").End()

	b, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Data{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "client.Get")
		}

		return Data{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Get")
	}

	var res Data
	if err := json.Unmarshal(b, &res); err != nil {
		return Data{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Unmarshal")
	}

	return res, nil
}

// Set stores the session for ttl.
func (r *Redis) Set(ctx context.Context, id string, data Data, ttl time.Duration) error {
	defer newOTELSpan(ctx, "Redis.Set").End()

	b, err := json.Marshal(data)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Marshal")
	}

	if err := r.client.Set(ctx, redisKey(id), b, ttl).Err(); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Set")
	}

	return nil
}

// Delete removes the session.
func (r *Redis) Delete(ctx context.Context, id string) error {
	defer newOTELSpan(ctx, "Redis.Delete").End()

	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Del")
	}

	return nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemRedis)

	return span
}
