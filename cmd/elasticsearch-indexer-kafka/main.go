package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/cmd/internal"
	internaldomain "github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/elasticsearch"
	"github.com/sanLimbu/todo-app/internal/envvar"
	kafkabroker "github.com/sanLimbu/todo-app/internal/kafka"
)

const kafkaGroupID = "elasticsearch-indexer"

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

	es, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewElasticSearch")
	}

	kafka, err := internal.NewKafkaConsumer(conf, kafkaGroupID)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewKafkaConsumer")
	}

	telemetry, err := internal.NewOTExporter(conf, settings.ServiceName+"-indexer-kafka")
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	srv := &Server{
		logger: logger,
		kafka:  kafka,
		task:   elasticsearch.NewTask(es),
		doneC:  make(chan struct{}),
		closeC: make(chan struct{}),
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
			_ = kafka.Consumer.Unsubscribe()
			_ = kafka.Consumer.Close()
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

// Server consumes task events from Kafka and mirrors them into Elasticsearch.
type Server struct {
	logger *zap.Logger
	kafka  *internal.KafkaConsumer
	task   *elasticsearch.Task
	doneC  chan struct{}
	closeC chan struct{}
}

// ListenAndServe starts polling in the background.
func (s *Server) ListenAndServe() error {
	commit := func(msg *kafka.Message) {
		if _, err := s.kafka.Consumer.CommitMessage(msg); err != nil {
			s.logger.Error("commit failed", zap.Error(err))
		}
	}

	go func() {
		for {
			select {
			case <-s.closeC:
				s.logger.Info("No more messages to consume. Exiting.")
				s.doneC <- struct{}{}

				return
			default:
			}

			msg, ok := s.kafka.Consumer.Poll(150).(*kafka.Message)
			if !ok {
				continue
			}

			evt, err := kafkabroker.DecodeEvent(msg.Value)
			if err != nil {
				s.logger.Info("Ignoring message, invalid", zap.Error(err))
				commit(msg)

				continue
			}

			if err := s.handle(evt); err != nil {
				// Left uncommitted so it is delivered again after a restart.
				s.logger.Error("Couldn't process event", zap.String("type", evt.Type), zap.Error(err))
				continue
			}

			s.logger.Info("Consumed", zap.String("type", evt.Type), zap.String("task_id", evt.Value.ID))
			commit(msg)
		}
	}()

	return nil
}

func (s *Server) handle(evt kafkabroker.Event) error {
	ctx := context.Background()

	switch evt.Type {
	case internaldomain.EventTaskCreated, internaldomain.EventTaskUpdated:
		return s.task.Index(ctx, evt.Value)
	case internaldomain.EventTaskDeleted:
		return s.task.Delete(ctx, evt.Value.ID)
	}

	s.logger.Info("Ignoring unknown event", zap.String("type", evt.Type))

	return nil
}

// Shutdown stops polling and waits for the loop to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	close(s.closeC)

	select {
	case <-ctx.Done():
		return internaldomain.WrapErrorf(ctx.Err(), internaldomain.ErrorCodeUnknown, "context.Done")
	case <-s.doneC:
		return nil
	}
}
