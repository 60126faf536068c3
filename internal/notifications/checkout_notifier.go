package notifications

import (
	"context"
	"time"

	"neontix/internal/checkout"
	"neontix/pkg/logger"
)

const publishTimeout = 10 * time.Second

// CheckoutNotifier forwards expired checkouts to the checkout topic.
// Publishing runs off the session goroutine so a slow broker never delays the countdown.
type CheckoutNotifier struct {
	publisher Publisher
	log       *logger.Logger
}

func NewCheckoutNotifier(publisher Publisher, log *logger.Logger) *CheckoutNotifier {
	if log == nil {
		log = logger.GetDefault()
	}
	return &CheckoutNotifier{publisher: publisher, log: log}
}

func (cn *CheckoutNotifier) Notify(n checkout.Notice) {
	if n.Kind != checkout.NoticeExpired {
		return
	}

	notification := NewNotificationBuilder().
		WithType(NotificationTypeCheckoutExpired).
		WithSession(n.SessionID).
		WithEvent(n.EventID, "").
		Build()
	notification.SeatIDs = n.SeatIDs

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := cn.publisher.Publish(ctx, notification); err != nil {
			cn.log.Warn("Failed to publish checkout expiry", "session_id", n.SessionID, "error", err.Error())
		}
	}()
}
