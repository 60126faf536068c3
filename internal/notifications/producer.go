package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"neontix/internal/shared/config"
	"neontix/pkg/logger"
)

// Publisher hands notifications to the message bus.
type Publisher interface {
	Publish(ctx context.Context, notification *Notification) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka notification producer
type KafkaProducerConfig struct {
	Brokers          []string
	BookingTopic     string
	CheckoutTopic    string
	ClientID         string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		BookingTopic:     "booking.confirmed",
		CheckoutTopic:    "checkout.expired",
		ClientID:         "neontix-producer",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// ProducerConfigFromKafkaConfig overlays the application settings on the defaults
func ProducerConfigFromKafkaConfig(kc config.KafkaConfig) *KafkaProducerConfig {
	cfg := DefaultKafkaProducerConfig()
	if len(kc.Brokers) > 0 {
		cfg.Brokers = kc.Brokers
	}
	if kc.BookingTopic != "" {
		cfg.BookingTopic = kc.BookingTopic
	}
	if kc.CheckoutTopic != "" {
		cfg.CheckoutTopic = kc.CheckoutTopic
	}
	if kc.ProducerClientID != "" {
		cfg.ClientID = kc.ProducerClientID
	}
	if kc.MaxRetries > 0 {
		cfg.RetryMax = kc.MaxRetries
	}
	return cfg
}

func (c *KafkaProducerConfig) saramaConfig() *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = c.ClientID

	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = c.RequiredAcks
	sc.Producer.Compression = c.CompressionType
	sc.Producer.Retry.Max = c.RetryMax
	sc.Producer.Timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	sc.Producer.Idempotent = c.IdempotentWrites
	sc.Producer.MaxMessageBytes = c.MaxMessageBytes

	if c.IdempotentWrites {
		sc.Net.MaxOpenRequests = 1
	}

	// Same key, same partition: per-event ordering
	sc.Producer.Partitioner = sarama.NewHashPartitioner

	return sc
}

// KafkaProducer publishes notifications with a synchronous sarama producer
type KafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

func NewKafkaProducer(cfg *KafkaProducerConfig, log *logger.Logger) (*KafkaProducer, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, cfg.saramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka notification producer created", "brokers", cfg.Brokers)
	return NewKafkaProducerWithClient(producer, cfg, log), nil
}

// NewKafkaProducerWithClient wraps an existing sarama producer
func NewKafkaProducerWithClient(producer sarama.SyncProducer, cfg *KafkaProducerConfig, log *logger.Logger) *KafkaProducer {
	if log == nil {
		log = logger.GetDefault()
	}
	return &KafkaProducer{producer: producer, config: cfg, log: log}
}

func (kp *KafkaProducer) Publish(ctx context.Context, notification *Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	notification.Status = NotificationStatusQueued
	notification.UpdatedAt = time.Now()

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	topic := kp.topicFor(notification.Type)
	message := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	kp.log.DebugContext(ctx, "Notification published",
		"topic", topic,
		"partition", partition,
		"offset", offset,
		"type", string(notification.Type),
	)
	return nil
}

func (kp *KafkaProducer) topicFor(t NotificationType) string {
	if t == NotificationTypeCheckoutExpired {
		return kp.config.CheckoutTopic
	}
	return kp.config.BookingTopic
}

func createHeaders(n *Notification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(n.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(n.Type)},
		{Key: []byte("producer"), Value: []byte("neontix")},
		{Key: []byte("created_at"), Value: []byte(n.CreatedAt.Format(time.RFC3339))},
	}

	if n.EventID != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("event_id"), Value: []byte(n.EventID)})
	}
	if n.BookingID != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("booking_id"), Value: []byte(n.BookingID)})
	}
	if n.SessionID != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("session_id"), Value: []byte(n.SessionID)})
	}

	return headers
}

func (kp *KafkaProducer) Close() error {
	if kp.producer == nil {
		return nil
	}
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	kp.log.Info("Kafka notification producer closed")
	return nil
}

// NoopPublisher logs notifications instead of sending them. Used when Kafka is disabled.
type NoopPublisher struct {
	log *logger.Logger
}

func NewNoopPublisher(log *logger.Logger) *NoopPublisher {
	if log == nil {
		log = logger.GetDefault()
	}
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(ctx context.Context, notification *Notification) error {
	p.log.DebugContext(ctx, "Kafka disabled, dropping notification",
		"type", string(notification.Type),
		"event_id", notification.EventID,
		"booking_id", notification.BookingID,
	)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
