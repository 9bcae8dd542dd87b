package notifications

import (
	"context"
	"fmt"
	"time"

	"tickethub/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher is the contract booking-side services publish through. A nil
// *KafkaPublisher is a valid no-op publisher, so deployments without Kafka
// simply drop the events.
type Publisher interface {
	Publish(ctx context.Context, notification *Notification) error
	Close() error
}

// KafkaPublisherConfig contains configuration for the Kafka publisher
type KafkaPublisherConfig struct {
	Brokers      []string
	Topic        string
	RetryMax     int
	Timeout      time.Duration
	RequiredAcks sarama.RequiredAcks
}

// DefaultKafkaPublisherConfig returns a default publisher configuration
func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "booking-events",
		RetryMax:     3,
		Timeout:      10 * time.Second,
		RequiredAcks: sarama.WaitForAll,
	}
}

// KafkaPublisher publishes notifications to Kafka via a synchronous producer.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaPublisherConfig
}

// NewKafkaPublisher creates a Kafka-backed publisher
func NewKafkaPublisher(config *KafkaPublisherConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps per-user ordering stable.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("Kafka notification publisher created", "topic", config.Topic)
	return &KafkaPublisher{producer: producer, config: config}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, notification *Notification) error {
	if p == nil {
		return nil
	}

	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.config.Topic,
		Key:   sarama.StringEncoder(notification.PartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(notification.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	logger.Debug("Notification published",
		"type", string(notification.Type),
		"booking_id", notification.BookingID.String(),
		"partition", partition,
		"offset", offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
