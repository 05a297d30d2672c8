package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/cmd/internal"
	internaldomain "github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/elasticsearch"
	"github.com/sanLimbu/todo-app/internal/envvar"
	"github.com/sanLimbu/todo-app/internal/rabbitmq"
)

const rabbitMQConsumerName = "elasticsearch-indexer"

func main() {
	var env string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.Parse()

	errC, err := run(env)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "zap.NewProduction")
	}

	if env != "" {
		if err := envvar.Load(env); err != nil {
			return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
		}
	}

	settings, err := internal.NewSettings()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewSettings")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	esClient, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewElasticSearch")
	}

	rmq, err := internal.NewRabbitMQ(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewRabbitMQ")
	}

	telemetry, err := internal.NewOTExporter(conf, settings.ServiceName+"-indexer-rabbitmq")
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	srv := &Server{
		logger: logger,
		rmq:    rmq,
		task:   elasticsearch.NewTask(esClient),
		done:   make(chan struct{}),
	}

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()

		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		defer func() {
			_ = telemetry.Shutdown(ctxTimeout)
			_ = logger.Sync()
			rmq.Close()
			stop()
			cancel()
			close(errC)
		}()

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving")

		if err := srv.ListenAndServe(); err != nil {
			errC <- err
		}
	}()

	return errC, nil
}

// Server consumes task events from RabbitMQ and mirrors them into Elasticsearch.
type Server struct {
	logger *zap.Logger
	rmq    *internal.RabbitMQ
	task   *elasticsearch.Task
	done   chan struct{}
}

// ListenAndServe declares the queue and starts consuming in the background.
func (s *Server) ListenAndServe() error {
	queue, err := s.rmq.Channel.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "channel.QueueDeclare")
	}

	err = s.rmq.Channel.QueueBind(
		queue.Name,        // queue name
		"tasks.event.*",   // routing key
		rabbitmq.Exchange, // exchange
		false,
		nil,
	)
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "channel.QueueBind")
	}

	msgs, err := s.rmq.Channel.Consume(
		queue.Name,           // queue
		rabbitMQConsumerName, // consumer
		false,                // auto-ack
		false,                // exclusive
		false,                // no-local
		false,                // no-wait
		nil,                  // args
	)
	if err != nil {
		return internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "channel.Consume")
	}

	go func() {
		for msg := range msgs {
			s.logger.Info("Received message", zap.String("routing_key", msg.RoutingKey))

			if err := s.handle(msg); err != nil {
				s.logger.Info("Nacking", zap.Error(err))

				// Malformed bodies are dropped, anything else is retried.
				_ = msg.Nack(false, internaldomain.CodeOf(err) != internaldomain.ErrorCodeInvalidArgument)

				continue
			}

			_ = msg.Ack(false)
		}

		s.logger.Info("No more messages to consume. Exiting.")

		s.done <- struct{}{}
	}()

	return nil
}

func (s *Server) handle(msg amqp.Delivery) error {
	ctx := context.Background()

	switch msg.RoutingKey {
	case internaldomain.EventTaskCreated, internaldomain.EventTaskUpdated:
		task, err := rabbitmq.DecodeTask(msg.Body)
		if err != nil {
			return err
		}

		return s.task.Index(ctx, task)
	case internaldomain.EventTaskDeleted:
		id, err := rabbitmq.DecodeID(msg.Body)
		if err != nil {
			return err
		}

		return s.task.Delete(ctx, id)
	}

	return internaldomain.NewErrorf(internaldomain.ErrorCodeInvalidArgument, "unknown routing key %s", msg.RoutingKey)
}

// Shutdown cancels the consumer and waits for in flight deliveries.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	_ = s.rmq.Channel.Cancel(rabbitMQConsumerName, false)

	select {
	case <-ctx.Done():
		return internaldomain.WrapErrorf(ctx.Err(), internaldomain.ErrorCodeUnknown, "context.Done")
	case <-s.done:
		return nil
	}
}
