package internal

import (
	"github.com/streadway/amqp"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
	"github.com/sanLimbu/todo-app/internal/rabbitmq"
)

// RabbitMQ holds the connection and the channel used for task events.
type RabbitMQ struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

// NewRabbitMQ instantiates the RabbitMQ instances using configuration defined in environment variables.
func NewRabbitMQ(conf *envvar.Configuration) (*RabbitMQ, error) {
	url, err := conf.Get("RABBITMQ_URL")
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get RABBITMQ_URL")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "amqp.Dial")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "conn.Channel")
	}

	err = ch.ExchangeDeclare(
		rabbitmq.Exchange, // name
		"topic",           // type
		true,              // durable
		false,             // auto-deleted
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "ch.ExchangeDeclare")
	}

	if err := ch.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	); err != nil {
		_ = conn.Close()
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "ch.Qos")
	}

	return &RabbitMQ{
		Connection: conn,
		Channel:    ch,
	}, nil
}

// Close closes the connection and with it the channel.
func (r *RabbitMQ) Close() {
	_ = r.Connection.Close()
}
