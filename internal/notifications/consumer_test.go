package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	sent     []*Notification
	attempts int
}

func (f *fakeSender) Send(ctx context.Context, n *Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, n)
	return nil
}

func message(t *testing.T, n *Notification) *sarama.ConsumerMessage {
	t.Helper()
	b, err := n.ToJSON()
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "booking.confirmed", Value: b}
}

func TestProcessMessage_SendsEmail(t *testing.T) {
	sender := &fakeSender{}
	h := NewConsumerGroupHandler(sender, 3, time.Millisecond, nil)

	require.NoError(t, h.processMessage(context.Background(), message(t, bookingNotification())))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ada@example.com", sender.sent[0].RecipientEmail)
	assert.Equal(t, NotificationStatusSent, sender.sent[0].Status)
}

func TestProcessMessage_SkipsWithoutRecipient(t *testing.T) {
	sender := &fakeSender{}
	h := NewConsumerGroupHandler(sender, 3, time.Millisecond, nil)

	n := NewNotificationBuilder().WithType(NotificationTypeCheckoutExpired).WithSession("s-1").Build()
	require.NoError(t, h.processMessage(context.Background(), message(t, n)))
	assert.Zero(t, sender.attempts)
}

func TestProcessMessage_RejectsGarbage(t *testing.T) {
	h := NewConsumerGroupHandler(&fakeSender{}, 0, time.Millisecond, nil)
	err := h.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("{not json")})
	assert.Error(t, err)
}

func TestExecuteWithRetry_RecoversAfterFailures(t *testing.T) {
	sender := &fakeSender{failures: 2}
	h := NewConsumerGroupHandler(sender, 3, time.Millisecond, nil)

	require.NoError(t, h.executeWithRetry(context.Background(), bookingNotification()))
	assert.Equal(t, 3, sender.attempts)
	assert.Len(t, sender.sent, 1)
}

func TestExecuteWithRetry_GivesUp(t *testing.T) {
	sender := &fakeSender{failures: 10}
	h := NewConsumerGroupHandler(sender, 2, time.Millisecond, nil)

	err := h.executeWithRetry(context.Background(), bookingNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
	assert.Equal(t, 3, sender.attempts)
}

func TestExecuteWithRetry_StopsOnCancel(t *testing.T) {
	sender := &fakeSender{failures: 10}
	h := NewConsumerGroupHandler(sender, 5, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	assert.ErrorIs(t, h.executeWithRetry(ctx, bookingNotification()), context.Canceled)
	assert.Equal(t, 1, sender.attempts)
}
