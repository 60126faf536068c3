package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neontix/internal/checkout"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []*Notification
}

func (r *recordingPublisher) Publish(ctx context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestCheckoutNotifier_PublishesExpiry(t *testing.T) {
	pub := &recordingPublisher{}
	cn := NewCheckoutNotifier(pub, nil)

	cn.Notify(checkout.Notice{Kind: checkout.NoticeTick, SessionID: "s-1"})
	cn.Notify(checkout.Notice{Kind: checkout.NoticeConfirmed, SessionID: "s-1"})
	cn.Notify(checkout.Notice{Kind: checkout.NoticeExpired, SessionID: "s-1", EventID: "ev-1", SeatIDs: []string{"F1"}})

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	n := pub.sent[0]
	assert.Equal(t, NotificationTypeCheckoutExpired, n.Type)
	assert.Equal(t, "s-1", n.SessionID)
	assert.Equal(t, "ev-1", n.EventID)
	assert.Equal(t, []string{"F1"}, n.SeatIDs)
}
