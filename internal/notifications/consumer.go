package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"neontix/internal/shared/config"
	"neontix/pkg/logger"
)

type ConsumerConfig struct {
	Brokers           []string
	GroupID           string
	Topics            []string
	SessionTimeout    time.Duration
	HeartbeatInterval time.Duration
	MaxProcessingTime time.Duration
	OffsetOldest      bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

func ConsumerConfigFromKafkaConfig(kc config.KafkaConfig) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:           kc.Brokers,
		GroupID:           kc.ConsumerGroup,
		Topics:            []string{kc.BookingTopic},
		SessionTimeout:    30 * time.Second,
		HeartbeatInterval: 3 * time.Second,
		MaxProcessingTime: 5 * time.Minute,
		MaxRetries:        kc.MaxRetries,
		RetryBackoff:      kc.RetryBackoff,
	}
}

// Consumer reads booking notifications and emails the customer
type Consumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	handler *ConsumerGroupHandler
	log     *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(cfg *ConsumerConfig, sender EmailSender, log *logger.Logger) (*Consumer, error) {
	sc := sarama.NewConfig()
	sc.Consumer.Group.Session.Timeout = cfg.SessionTimeout
	sc.Consumer.Group.Heartbeat.Interval = cfg.HeartbeatInterval
	sc.Consumer.MaxProcessingTime = cfg.MaxProcessingTime
	sc.Consumer.Return.Errors = true
	sc.Consumer.Offsets.AutoCommit.Enable = true
	sc.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if cfg.OffsetOldest {
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:   group,
		config:  cfg,
		handler: NewConsumerGroupHandler(sender, cfg.MaxRetries, cfg.RetryBackoff, log),
		log:     log,
	}, nil
}

// Start consumes in the background until ctx is cancelled or Stop is called
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.log.Info("Starting notification consumer", "topics", c.config.Topics, "group", c.config.GroupID)

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.log.Error("Consumer group error", "error", err.Error())
		}
	}()
	go func() {
		defer c.wg.Done()
		for {
			if err := c.group.Consume(ctx, c.config.Topics, c.handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.log.Error("Error consuming notifications", "error", err.Error())
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	c.log.Info("Notification consumer stopped")
	return nil
}

type ConsumerGroupHandler struct {
	sender     EmailSender
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func NewConsumerGroupHandler(sender EmailSender, maxRetries int, backoff time.Duration, log *logger.Logger) *ConsumerGroupHandler {
	if log == nil {
		log = logger.GetDefault()
	}
	return &ConsumerGroupHandler{sender: sender, maxRetries: maxRetries, backoff: backoff, log: log}
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.log.Debug("Consumer group session started")
	return nil
}

func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.log.Debug("Consumer group session ended")
	return nil
}

func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.Error("Error processing notification",
					"topic", message.Topic,
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err.Error(),
				)
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *ConsumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification Notification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	if !notification.HasRecipient() {
		h.log.DebugContext(ctx, "Notification has no recipient, skipping",
			"id", notification.ID.String(),
			"type", string(notification.Type),
		)
		return nil
	}

	notification.Status = NotificationStatusSending
	if err := h.executeWithRetry(ctx, &notification); err != nil {
		notification.MarkFailed(err)
		return err
	}

	notification.MarkSent()
	h.log.InfoContext(ctx, "Email notification sent", "to", notification.RecipientEmail, "type", string(notification.Type))
	return nil
}

func (h *ConsumerGroupHandler) executeWithRetry(ctx context.Context, notification *Notification) error {
	for attempt := 0; ; attempt++ {
		err := h.sender.Send(ctx, notification)
		if err == nil {
			if attempt > 0 {
				h.log.InfoContext(ctx, "Notification sent after retries", "retries", attempt)
			}
			return nil
		}

		if attempt >= h.maxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		// Exponential backoff
		delay := h.backoff * time.Duration(1<<attempt)
		h.log.WarnContext(ctx, "Retrying notification", "attempt", attempt+1, "delay", delay.String(), "error", err.Error())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
