package storefront

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"neontix/internal/checkout"
	"neontix/internal/events"
)

type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) checkout.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	c.now = c.now.Add(time.Second)
	now := c.now
	t := c.tickers[len(c.tickers)-1]
	c.mu.Unlock()
	t.ch <- now
}

type fakeCatalog struct {
	events map[uuid.UUID]*events.EventResponse
}

func newFakeCatalog(evs ...*events.EventResponse) *fakeCatalog {
	c := &fakeCatalog{events: make(map[uuid.UUID]*events.EventResponse)}
	for _, e := range evs {
		c.events[uuid.MustParse(e.ID)] = e
	}
	return c
}

func (c *fakeCatalog) GetEventByID(ctx context.Context, id uuid.UUID) (*events.EventResponse, error) {
	e, ok := c.events[id]
	if !ok {
		return nil, events.ErrEventNotFound
	}
	return e, nil
}

type fakeOccupancy map[uuid.UUID][]string

func (o fakeOccupancy) OccupiedSeats(ctx context.Context, eventID uuid.UUID) ([]string, error) {
	return o[eventID], nil
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) SubmitBooking(ctx context.Context, req checkout.BookingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type declineAll struct{}

func (declineAll) Charge(ctx context.Context, req checkout.ChargeRequest) (checkout.PaymentResult, error) {
	return checkout.PaymentResult{Approved: false, Reason: "insufficient funds"}, nil
}

func (declineAll) Refund(ctx context.Context, reference string, amount int) error { return nil }

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []checkout.NoticeKind
}

func (r *recordingNotifier) Notify(n checkout.Notice) {
	r.mu.Lock()
	r.kinds = append(r.kinds, n.Kind)
	r.mu.Unlock()
}

func (r *recordingNotifier) has(kind checkout.NoticeKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type droppedSeats struct {
	sessionID string
	eventID   string
	seatIDs   []string
}

type recordingAnnouncer struct {
	mu    sync.Mutex
	drops []droppedSeats
}

func (r *recordingAnnouncer) SelectionDropped(sessionID, eventID string, seatIDs []string) {
	r.mu.Lock()
	r.drops = append(r.drops, droppedSeats{sessionID: sessionID, eventID: eventID, seatIDs: seatIDs})
	r.mu.Unlock()
}

func (r *recordingAnnouncer) all() []droppedSeats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]droppedSeats, len(r.drops))
	copy(out, r.drops)
	return out
}

func testEvent(title string) *events.EventResponse {
	return &events.EventResponse{
		ID:             uuid.NewString(),
		Title:          title,
		Date:           "2026-06-12",
		Time:           "8:00 PM",
		Venue:          "Neon Hall",
		City:           "Mumbai",
		PriceMin:       18,
		PriceMax:       45,
		TotalSeats:     96,
		AvailableSeats: 96,
	}
}

// testConfig is the default chart with no random bookings and a three tick hold
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Layout.BookedProbability = 0
	cfg.HoldDuration = 3 * time.Second
	cfg.TickInterval = time.Second
	return cfg
}
