package internal

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/envvar"
)

// KafkaProducer holds the producer and the topic task events are written to.
type KafkaProducer struct {
	Producer *kafka.Producer
	Topic    string
}

// KafkaConsumer holds a consumer subscribed to the task events topic.
type KafkaConsumer struct {
	Consumer *kafka.Consumer
}

func kafkaConfig(conf *envvar.Configuration) (host, topic string, err error) {
	if host, err = conf.Get("KAFKA_HOST"); err != nil {
		return "", "", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get KAFKA_HOST")
	}

	if topic, err = conf.Get("KAFKA_TOPIC"); err != nil {
		return "", "", internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "conf.Get KAFKA_TOPIC")
	}

	if topic == "" {
		return "", "", internal.NewErrorf(internal.ErrorCodeInvalidArgument, "KAFKA_TOPIC is required")
	}

	return host, topic, nil
}

// NewKafkaProducer instantiates the Kafka producer using configuration defined in environment variables.
func NewKafkaProducer(conf *envvar.Configuration) (*KafkaProducer, error) {
	host, topic, err := kafkaConfig(conf)
	if err != nil {
		return nil, err
	}

	client, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": host,
	})
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "kafka.NewProducer")
	}

	return &KafkaProducer{
		Producer: client,
		Topic:    topic,
	}, nil
}

// NewKafkaConsumer instantiates the Kafka consumer using configuration defined in environment variables.
// Offsets are committed explicitly once a message is processed.
func NewKafkaConsumer(conf *envvar.Configuration, groupID string) (*KafkaConsumer, error) {
	host, topic, err := kafkaConfig(conf)
	if err != nil {
		return nil, err
	}

	client, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  host,
		"group.id":           groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "kafka.NewConsumer")
	}

	if err := client.Subscribe(topic, nil); err != nil {
		_ = client.Close()
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Subscribe")
	}

	return &KafkaConsumer{
		Consumer: client,
	}, nil
}
