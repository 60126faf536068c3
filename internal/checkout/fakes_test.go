package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
)

type fakeTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) lastTicker() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// fire delivers one tick and advances the clock by a second.
func (c *fakeClock) fire() {
	c.mu.Lock()
	c.now = c.now.Add(time.Second)
	now := c.now
	t := c.tickers[len(c.tickers)-1]
	c.mu.Unlock()
	t.ch <- now
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) SubmitBooking(ctx context.Context, req BookingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) Charge(ctx context.Context, req ChargeRequest) (PaymentResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(PaymentResult), args.Error(1)
}

func (m *mockPayments) Refund(ctx context.Context, reference string, amount int) error {
	return m.Called(ctx, reference, amount).Error(0)
}

// gatedPayments blocks every charge until release is closed.
type gatedPayments struct {
	entered chan struct{}
	release chan struct{}
	result  PaymentResult
}

func newGatedPayments(result PaymentResult) *gatedPayments {
	return &gatedPayments{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		result:  result,
	}
}

func (g *gatedPayments) Charge(ctx context.Context, req ChargeRequest) (PaymentResult, error) {
	close(g.entered)
	<-g.release
	return g.result, nil
}

func (g *gatedPayments) Refund(ctx context.Context, reference string, amount int) error {
	return nil
}

type noticeLog struct {
	mu    sync.Mutex
	items []Notice
}

func (l *noticeLog) Notify(n Notice) {
	l.mu.Lock()
	l.items = append(l.items, n)
	l.mu.Unlock()
}

func (l *noticeLog) kinds() []NoticeKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]NoticeKind, 0, len(l.items))
	for _, n := range l.items {
		if n.Kind != NoticeTick {
			out = append(out, n.Kind)
		}
	}
	return out
}

func (l *noticeLog) last() Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[len(l.items)-1]
}
