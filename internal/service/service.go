// Package service implements the task and account use cases on top of the repositories.
package service

import (
	"context"
	"time"

	"github.com/mercari/go-circuitbreaker"

	"github.com/sanLimbu/todo-app/internal"
)

const otelName = "github.com/sanLimbu/todo-app/internal/service"

func newCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(
		circuitbreaker.WithOpenTimeout(10*time.Second),
		circuitbreaker.WithCounterResetInterval(time.Minute),
		circuitbreaker.WithTripFunc(circuitbreaker.NewTripFuncConsecutiveFailures(3)),
	)
}

// NopMessageBroker discards every event, used when no broker is configured.
type NopMessageBroker struct{}

func (NopMessageBroker) Created(context.Context, internal.Task) error { return nil }
func (NopMessageBroker) Deleted(context.Context, string) error        { return nil }
func (NopMessageBroker) Updated(context.Context, internal.Task) error { return nil }
