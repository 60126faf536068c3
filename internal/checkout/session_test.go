package checkout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"neontix/internal/seating"
	"neontix/internal/selection"
	"neontix/pkg/logger"
)

var (
	seatF1 = seating.Seat{ID: "F1", Row: "F", Number: 1, Price: 18, Tier: seating.TierBase, Status: seating.StatusAvailable}
	seatD5 = seating.Seat{ID: "D5", Row: "D", Number: 5, Price: 45, Tier: seating.TierVIP, Status: seating.StatusVIP}
	seatA2 = seating.Seat{ID: "A2", Row: "A", Number: 2, Price: 25, Tier: seating.TierFront, Status: seating.StatusAvailable}
)

type harness struct {
	session *Session
	cart    *selection.Store
	clock   *fakeClock
	sink    *mockSink
	notices *noticeLog
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	cart := selection.NewStore()
	cart.SetEvent(&selection.Event{ID: "ev-1", Title: "Dune: Part Three"})
	cart.Toggle(seatF1)
	cart.Toggle(seatD5)

	h := &harness{
		cart:    cart,
		clock:   newFakeClock(),
		sink:    new(mockSink),
		notices: &noticeLog{},
	}
	base := []Option{WithClock(h.clock), WithNotifier(h.notices)}
	h.session = NewSession("sess-1", cart, h.sink, append(base, opts...)...)
	t.Cleanup(h.session.Close)
	return h
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("countdown goroutine did not exit")
	}
}

func TestSession_OpenStartsCountdown(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, StateIdle, h.session.State())
	require.NoError(t, h.session.Open())

	assert.Equal(t, StateActive, h.session.State())
	assert.Equal(t, 600, h.session.Remaining())
	require.NotNil(t, h.clock.lastTicker())

	snap := h.session.Snapshot()
	require.NotNil(t, snap.ExpiresAt)
	assert.Equal(t, h.clock.Now().Add(600*time.Second), *snap.ExpiresAt)
	assert.Equal(t, Breakdown{Subtotal: 63, BookingFee: 6, Tax: 5, Total: 74}, snap.Breakdown)
}

func TestSession_OpenPreconditions(t *testing.T) {
	t.Run("no event", func(t *testing.T) {
		s := NewSession("s", selection.NewStore(), new(mockSink), WithClock(newFakeClock()))
		assert.ErrorIs(t, s.Open(), ErrNoEvent)
	})

	t.Run("empty selection", func(t *testing.T) {
		cart := selection.NewStore()
		cart.SetEvent(&selection.Event{ID: "ev-1"})
		s := NewSession("s", cart, new(mockSink), WithClock(newFakeClock()))
		assert.ErrorIs(t, s.Open(), ErrEmptySelection)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("opened twice", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.session.Open())
		assert.ErrorIs(t, h.session.Open(), ErrNotIdle)
	})

	t.Run("after close", func(t *testing.T) {
		h := newHarness(t)
		h.session.Close()
		assert.ErrorIs(t, h.session.Open(), ErrClosed)
	})
}

func TestSession_ExpiresAfterExactlySixHundredTicks(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Open())

	for i := 0; i < 599; i++ {
		h.session.Tick()
	}
	assert.Equal(t, StateActive, h.session.State())
	assert.Equal(t, 1, h.session.Remaining())
	assert.Equal(t, 2, h.cart.Count())

	h.session.Tick()

	assert.Equal(t, StateExpired, h.session.State())
	assert.Equal(t, 0, h.session.Remaining())
	assert.Equal(t, 0, h.cart.Count())
	assert.True(t, h.clock.lastTicker().stopped.Load())
	h.sink.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)

	expired := h.notices.last()
	assert.Equal(t, NoticeExpired, expired.Kind)
	assert.ElementsMatch(t, []string{"F1", "D5"}, expired.SeatIDs)
	waitDone(t, h.session)

	// Ticks after expiry are no-ops.
	h.session.Tick()
	assert.Equal(t, 0, h.session.Remaining())
	assert.Equal(t, []NoticeKind{NoticeExpired}, h.notices.kinds())
}

func TestSession_ConfirmWritesOneBooking(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Open())
	h.session.Tick()

	h.sink.On("SubmitBooking", mock.Anything, mock.MatchedBy(func(req BookingRequest) bool {
		return req.EventID == "ev-1" &&
			len(req.Seats) == 2 &&
			req.Seats[0] == BookedSeat{ID: "F1", Row: "F", Number: 1, Price: 18} &&
			req.TotalAmount == 74 && req.BookingFee == 6 && req.Tax == 5 &&
			req.Status == "confirmed" &&
			req.Buyer.Email == "fan@example.com" &&
			req.PaymentReference != ""
	})).Return("bk-1", nil).Once()

	receipt, err := h.session.Confirm(context.Background(), PaymentDetails{
		Method: "card",
		Buyer:  Buyer{Email: "fan@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "bk-1", receipt.BookingID)
	assert.Equal(t, Breakdown{Subtotal: 63, BookingFee: 6, Tax: 5, Total: 74}, receipt.Breakdown)
	assert.Len(t, receipt.Seats, 2)
	assert.Equal(t, StateConfirmed, h.session.State())
	assert.Equal(t, 0, h.cart.Count())
	assert.True(t, h.clock.lastTicker().stopped.Load())
	h.sink.AssertNumberOfCalls(t, "SubmitBooking", 1)
	h.sink.AssertExpectations(t)

	snap := h.session.Snapshot()
	require.NotNil(t, snap.Receipt)
	assert.Equal(t, 74, snap.Breakdown.Total)
	assert.Equal(t, []NoticeKind{NoticeConfirmed}, h.notices.kinds())
	waitDone(t, h.session)

	_, err = h.session.Confirm(context.Background(), PaymentDetails{})
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestSession_LogLinesCarrySessionIDOnce(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness(t, WithLogger(logger.NewWithWriter(&buf, "info")))
	require.NoError(t, h.session.Open())

	h.sink.On("SubmitBooking", mock.Anything, mock.Anything).Return("bk-1", nil).Once()
	_, err := h.session.Confirm(context.Background(), PaymentDetails{Method: "card"})
	require.NoError(t, err)
	waitDone(t, h.session)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "session_id"), line)
		assert.Contains(t, line, "sess-1")
	}
}

func TestSession_ExpiryLogCarriesSessionIDOnce(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness(t, WithLogger(logger.NewWithWriter(&buf, "warn")))
	require.NoError(t, h.session.Open())

	for i := 0; i < 600; i++ {
		h.session.Tick()
	}
	waitDone(t, h.session)

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "Checkout Expired")
	assert.Equal(t, 1, strings.Count(line, "session_id"))
}

func TestSession_ConfirmRejectsEmptySelection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Open())
	h.cart.Clear()

	_, err := h.session.Confirm(context.Background(), PaymentDetails{})
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, StateActive, h.session.State())
	h.sink.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)
}

func TestSession_ConfirmBeforeOpen(t *testing.T) {
	h := newHarness(t)
	_, err := h.session.Confirm(context.Background(), PaymentDetails{})
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestSession_DeclinedPaymentLeavesStateUnchanged(t *testing.T) {
	payments := new(mockPayments)
	payments.On("Charge", mock.Anything, mock.MatchedBy(func(req ChargeRequest) bool {
		return req.Amount == 74 && req.SessionID == "sess-1"
	})).Return(PaymentResult{Approved: false, Reason: "insufficient funds"}, nil)

	h := newHarness(t, WithPaymentProcessor(payments))
	require.NoError(t, h.session.Open())

	_, err := h.session.Confirm(context.Background(), PaymentDetails{Method: "card"})
	require.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Contains(t, err.Error(), "insufficient funds")

	assert.Equal(t, StateActive, h.session.State())
	assert.Equal(t, 2, h.cart.Count())
	assert.False(t, h.clock.lastTicker().stopped.Load())
	h.sink.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)
	assert.Equal(t, NoticeError, h.notices.last().Kind)
}

func TestSession_SinkFailureRefundsAndKeepsSelection(t *testing.T) {
	payments := new(mockPayments)
	payments.On("Charge", mock.Anything, mock.Anything).Return(PaymentResult{Approved: true, Reference: "pay-9"}, nil)
	payments.On("Refund", mock.Anything, "pay-9", 74).Return(nil).Once()

	h := newHarness(t, WithPaymentProcessor(payments))
	h.sink.On("SubmitBooking", mock.Anything, mock.Anything).Return("", errors.New("database unavailable")).Once()
	require.NoError(t, h.session.Open())

	_, err := h.session.Confirm(context.Background(), PaymentDetails{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unavailable")

	assert.Equal(t, StateActive, h.session.State())
	assert.Equal(t, 2, h.cart.Count())
	payments.AssertExpectations(t)

	// A retry within the same session succeeds.
	h.sink.On("SubmitBooking", mock.Anything, mock.Anything).Return("bk-2", nil).Once()
	receipt, err := h.session.Confirm(context.Background(), PaymentDetails{})
	require.NoError(t, err)
	assert.Equal(t, "bk-2", receipt.BookingID)
}

func TestSession_CancelKeepsSelection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Open())

	require.NoError(t, h.session.Cancel())

	assert.Equal(t, StateCancelled, h.session.State())
	assert.Equal(t, 2, h.cart.Count())
	assert.True(t, h.clock.lastTicker().stopped.Load())
	waitDone(t, h.session)

	h.session.Tick()
	assert.Equal(t, 600, h.session.Remaining())
	assert.ErrorIs(t, h.session.Cancel(), ErrNotActive)

	_, err := h.session.Confirm(context.Background(), PaymentDetails{})
	assert.ErrorIs(t, err, ErrNotActive)
	assert.Equal(t, []NoticeKind{NoticeCancelled}, h.notices.kinds())
}

func TestSession_CloseIsIdempotent(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Open())

	h.session.Close()
	h.session.Close()

	assert.Equal(t, StateCancelled, h.session.State())
	assert.True(t, h.clock.lastTicker().stopped.Load())
	waitDone(t, h.session)
	assert.Equal(t, []NoticeKind{NoticeCancelled}, h.notices.kinds())
}

func TestSession_BreakdownTracksLiveSelection(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.session.Open())
	assert.Equal(t, 74, h.session.Breakdown().Total)

	h.cart.Toggle(seatA2)
	h.session.Tick()
	assert.Equal(t, Breakdown{Subtotal: 88, BookingFee: 9, Tax: 7, Total: 104}, h.session.Breakdown())

	h.cart.Toggle(seatD5)
	assert.Equal(t, 43, h.session.Breakdown().Subtotal)
}

func TestSession_TickerDrivesExpiry(t *testing.T) {
	h := newHarness(t, WithHoldDuration(3*time.Second))
	require.NoError(t, h.session.Open())
	assert.Equal(t, 3, h.session.Remaining())

	h.clock.fire()
	h.clock.fire()
	assert.Eventually(t, func() bool { return h.session.Remaining() == 1 }, time.Second, 5*time.Millisecond)

	h.clock.fire()
	assert.Eventually(t, func() bool { return h.session.State() == StateExpired }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.cart.Count())
	waitDone(t, h.session)
}

func TestSession_PendingExpiryWinsTieWithConfirm(t *testing.T) {
	h := newHarness(t, WithHoldDuration(time.Second))
	require.NoError(t, h.session.Open())
	ft := h.clock.lastTicker()

	// Hold the lock so the final tick is delivered but cannot be applied yet.
	h.session.mu.Lock()
	ft.ch <- h.clock.Now()
	require.Eventually(t, func() bool {
		return len(ft.ch) == 1 || h.session.pending.Load() == 1
	}, time.Second, time.Millisecond)
	h.session.mu.Unlock()

	_, err := h.session.Confirm(context.Background(), PaymentDetails{})

	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, StateExpired, h.session.State())
	assert.Equal(t, 0, h.cart.Count())
	h.sink.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)
}

func TestSession_ConfirmAcceptedBeforeExpiryIsHonored(t *testing.T) {
	gate := newGatedPayments(PaymentResult{Approved: true, Reference: "pay-1"})
	h := newHarness(t, WithHoldDuration(2*time.Second), WithPaymentProcessor(gate))
	h.sink.On("SubmitBooking", mock.Anything, mock.Anything).Return("bk-7", nil).Once()
	require.NoError(t, h.session.Open())

	type result struct {
		receipt *Receipt
		err     error
	}
	out := make(chan result, 1)
	go func() {
		r, err := h.session.Confirm(context.Background(), PaymentDetails{})
		out <- result{r, err}
	}()
	<-gate.entered

	// The countdown keeps running while the payment is in flight.
	h.session.Tick()
	assert.Equal(t, 1, h.session.Remaining())
	h.session.Tick()
	assert.Equal(t, 0, h.session.Remaining())
	assert.Equal(t, StateActive, h.session.State())
	assert.True(t, h.session.Snapshot().InFlight)

	_, err := h.session.Confirm(context.Background(), PaymentDetails{})
	assert.ErrorIs(t, err, ErrConfirmInFlight)
	assert.ErrorIs(t, h.session.Cancel(), ErrConfirmInFlight)

	close(gate.release)
	res := <-out
	require.NoError(t, res.err)
	assert.Equal(t, "bk-7", res.receipt.BookingID)
	assert.Equal(t, StateConfirmed, h.session.State())
	assert.Equal(t, 0, h.cart.Count())
}

func TestSession_FailedConfirmAfterDeadlineExpires(t *testing.T) {
	gate := newGatedPayments(PaymentResult{Approved: false, Reason: "card expired"})
	h := newHarness(t, WithHoldDuration(time.Second), WithPaymentProcessor(gate))
	require.NoError(t, h.session.Open())

	errc := make(chan error, 1)
	go func() {
		_, err := h.session.Confirm(context.Background(), PaymentDetails{})
		errc <- err
	}()
	<-gate.entered
	h.session.Tick()
	assert.Equal(t, StateActive, h.session.State())

	close(gate.release)
	assert.ErrorIs(t, <-errc, ErrPaymentDeclined)
	assert.Equal(t, StateExpired, h.session.State())
	assert.Equal(t, 0, h.cart.Count())
	assert.Equal(t, []NoticeKind{NoticeError, NoticeExpired}, h.notices.kinds())
	h.sink.AssertNotCalled(t, "SubmitBooking", mock.Anything, mock.Anything)
}

func TestSession_CloseDuringConfirmFailureCancels(t *testing.T) {
	gate := newGatedPayments(PaymentResult{Approved: false})
	h := newHarness(t, WithPaymentProcessor(gate))
	require.NoError(t, h.session.Open())

	errc := make(chan error, 1)
	go func() {
		_, err := h.session.Confirm(context.Background(), PaymentDetails{})
		errc <- err
	}()
	<-gate.entered
	h.session.Close()
	assert.True(t, h.clock.lastTicker().stopped.Load())

	close(gate.release)
	assert.ErrorIs(t, <-errc, ErrPaymentDeclined)
	assert.Equal(t, StateCancelled, h.session.State())
	assert.Equal(t, 2, h.cart.Count())
}

func TestSession_TickNoticesCountDown(t *testing.T) {
	h := newHarness(t, WithHoldDuration(3*time.Second))
	require.NoError(t, h.session.Open())

	h.session.Tick()
	h.session.Tick()

	h.notices.mu.Lock()
	defer h.notices.mu.Unlock()
	require.Len(t, h.notices.items, 2)
	assert.Equal(t, NoticeTick, h.notices.items[0].Kind)
	assert.Equal(t, 2, h.notices.items[0].Remaining)
	assert.Equal(t, 1, h.notices.items[1].Remaining)
	assert.Equal(t, "ev-1", h.notices.items[1].EventID)
}

func TestState_Terminal(t *testing.T) {
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateActive.Terminal())
	assert.True(t, StateConfirmed.Terminal())
	assert.True(t, StateExpired.Terminal())
	assert.True(t, StateCancelled.Terminal())
}

func TestNotifiers_FanOutSkipsNil(t *testing.T) {
	var a, b noticeLog
	n := Notifiers(&a, nil, NotifierFunc(b.Notify))
	n.Notify(Notice{Kind: NoticeExpired})
	assert.Len(t, a.items, 1)
	assert.Len(t, b.items, 1)
}
