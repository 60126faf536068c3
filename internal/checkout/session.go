// Package checkout implements the time-boxed checkout session that turns a
// seat selection into a confirmed booking.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"neontix/internal/seating"
	"neontix/pkg/logger"
)

const (
	DefaultHoldDuration = 600 * time.Second
	DefaultTickInterval = time.Second
)

var ErrClosed = errors.New("checkout session closed")

type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StateConfirmed State = "confirmed"
	StateExpired   State = "expired"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateConfirmed || s == StateExpired || s == StateCancelled
}

// Cart is the live selection a session reads from and clears.
type Cart interface {
	EventID() string
	Seats() []seating.Seat
	Total() int
	Clear()
}

type Receipt struct {
	BookingID        string       `json:"booking_id"`
	EventID          string       `json:"event_id"`
	Seats            []BookedSeat `json:"seats"`
	Breakdown        Breakdown    `json:"breakdown"`
	PaymentReference string       `json:"payment_reference"`
	ConfirmedAt      time.Time    `json:"confirmed_at"`
}

type Snapshot struct {
	SessionID string         `json:"session_id"`
	EventID   string         `json:"event_id"`
	State     State          `json:"state"`
	Remaining int            `json:"remaining"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	InFlight  bool           `json:"in_flight"`
	Seats     []seating.Seat `json:"seats"`
	Breakdown Breakdown      `json:"breakdown"`
	Receipt   *Receipt       `json:"receipt,omitempty"`
}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithHoldDuration sets the countdown length. It is rounded down to whole ticks.
func WithHoldDuration(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.hold = d
		}
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithPaymentProcessor(p PaymentProcessor) Option {
	return func(s *Session) {
		if p != nil {
			s.payments = p
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

func WithPricing(p Pricing) Option {
	return func(s *Session) {
		s.pricing = p
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session is a single checkout attempt. The countdown runs on its own
// goroutine from Open until the session leaves the active state.
type Session struct {
	id       string
	cart     Cart
	sink     BookingSink
	payments PaymentProcessor
	notifier Notifier
	clock    Clock
	pricing  Pricing
	hold     time.Duration
	interval time.Duration
	log      *logger.Logger

	// ticks received by the driver but not yet applied
	pending atomic.Int64

	mu        sync.Mutex
	state     State
	remaining int
	inFlight  bool
	expiryDue bool
	closed    bool
	openedAt  time.Time
	receipt   *Receipt
	ticker    Ticker
	stop      chan struct{}
	done      chan struct{}
}

func NewSession(id string, cart Cart, sink BookingSink, opts ...Option) *Session {
	s := &Session{
		id:       id,
		cart:     cart,
		sink:     sink,
		payments: ApproveAll{},
		clock:    SystemClock(),
		pricing:  DefaultPricing(),
		hold:     DefaultHoldDuration,
		interval: DefaultTickInterval,
		log:      logger.GetDefault(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithSessionID(id)
	s.remaining = s.countdown()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) countdown() int {
	return int(s.hold / s.interval)
}

// Open starts the countdown.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrClosed
	case s.state != StateIdle:
		return ErrNotIdle
	case s.cart.EventID() == "":
		return ErrNoEvent
	case len(s.cart.Seats()) == 0:
		return ErrEmptySelection
	}

	s.state = StateActive
	s.remaining = s.countdown()
	s.openedAt = s.clock.Now()
	s.startTimerLocked()

	s.log.Info("Checkout opened",
		slog.String("event_id", s.cart.EventID()),
		slog.Int("remaining", s.remaining),
	)
	return nil
}

func (s *Session) startTimerLocked() {
	t := s.clock.NewTicker(s.interval)
	stop := make(chan struct{})
	done := make(chan struct{})
	s.ticker, s.stop, s.done = t, stop, done
	go s.drive(t, stop, done)
}

func (s *Session) drive(t Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			s.pending.Add(1)
			s.mu.Lock()
			notes := s.catchUpLocked()
			s.mu.Unlock()
			s.publish(notes)
		}
	}
}

// stopTimerLocked cancels the countdown. The driver exits on its own; waiting
// for it here would deadlock if it is blocked on s.mu.
func (s *Session) stopTimerLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
}

// Done is closed once the countdown goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

// catchUpLocked applies ticks that already fired but have not been processed,
// so an expiry that is due always lands before a competing confirm or cancel.
func (s *Session) catchUpLocked() []Notice {
	if s.ticker != nil {
		select {
		case <-s.ticker.C():
			s.pending.Add(1)
		default:
		}
	}
	var notes []Notice
	for n := s.pending.Swap(0); n > 0; n-- {
		notes = append(notes, s.tickLocked()...)
	}
	return notes
}

// Tick advances the countdown by one step.
func (s *Session) Tick() {
	s.mu.Lock()
	notes := s.tickLocked()
	s.mu.Unlock()
	s.publish(notes)
}

func (s *Session) tickLocked() []Notice {
	if s.state != StateActive || s.remaining == 0 {
		return nil
	}
	s.remaining--
	notes := []Notice{s.noticeLocked(NoticeTick, "")}
	if s.remaining > 0 {
		return notes
	}
	if s.inFlight {
		// A confirm accepted before this tick decides the outcome.
		s.expiryDue = true
		return notes
	}
	return append(notes, s.expireLocked())
}

func (s *Session) expireLocked() Notice {
	n := s.noticeLocked(NoticeExpired, "Your seat hold expired. Please select your seats again.")
	n.SeatIDs = seatIDs(s.cart.Seats())

	s.state = StateExpired
	s.expiryDue = false
	s.stopTimerLocked()
	s.cart.Clear()

	s.log.LogCheckoutExpired(context.Background(), n.EventID, len(n.SeatIDs))
	return n
}

// Confirm charges the shopper and writes the booking. The countdown keeps
// running while the external calls are in progress. On failure the state and
// the selection are left as they were.
func (s *Session) Confirm(ctx context.Context, details PaymentDetails) (*Receipt, error) {
	s.mu.Lock()
	notes := s.catchUpLocked()
	if err := s.confirmableLocked(); err != nil {
		s.mu.Unlock()
		s.publish(notes)
		return nil, err
	}
	eventID := s.cart.EventID()
	seats := s.cart.Seats()
	if eventID == "" || len(seats) == 0 {
		s.mu.Unlock()
		s.publish(notes)
		if eventID == "" {
			return nil, ErrNoEvent
		}
		return nil, ErrEmptySelection
	}
	subtotal := 0
	for _, seat := range seats {
		subtotal += seat.Price
	}
	bd := s.pricing.Compute(subtotal)
	s.inFlight = true
	s.mu.Unlock()
	s.publish(notes)

	bookingID, ref, err := s.commit(ctx, eventID, seats, bd, details)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		notes = []Notice{s.noticeLocked(NoticeError, failureMessage(err))}
		switch {
		case s.expiryDue:
			notes = append(notes, s.expireLocked())
		case s.closed:
			s.state = StateCancelled
			s.stopTimerLocked()
		}
		s.mu.Unlock()
		s.publish(notes)

		s.log.ErrorWithContext(ctx, "Checkout confirmation failed", err, map[string]interface{}{
			"event_id": eventID,
		})
		return nil, err
	}

	receipt := &Receipt{
		BookingID:        bookingID,
		EventID:          eventID,
		Seats:            bookedSeats(seats),
		Breakdown:        bd,
		PaymentReference: ref,
		ConfirmedAt:      s.clock.Now().UTC(),
	}
	s.state = StateConfirmed
	s.receipt = receipt
	s.expiryDue = false
	s.stopTimerLocked()
	s.cart.Clear()
	n := s.noticeLocked(NoticeConfirmed, "Booking confirmed! Enjoy the show.")
	n.EventID = eventID
	n.BookingID = bookingID
	n.SeatIDs = seatIDs(seats)
	s.mu.Unlock()
	s.publish([]Notice{n})

	s.log.LogCheckoutConfirmed(ctx, bookingID, eventID, bd.Total)
	return receipt, nil
}

func (s *Session) confirmableLocked() error {
	switch s.state {
	case StateActive:
		if s.inFlight {
			return ErrConfirmInFlight
		}
		return nil
	case StateExpired:
		return ErrExpired
	default:
		return ErrNotActive
	}
}

func (s *Session) commit(ctx context.Context, eventID string, seats []seating.Seat, bd Breakdown, details PaymentDetails) (string, string, error) {
	res, err := s.payments.Charge(ctx, ChargeRequest{
		SessionID: s.id,
		EventID:   eventID,
		Amount:    bd.Total,
		Details:   details,
	})
	if err != nil {
		return "", "", fmt.Errorf("charge payment: %w", err)
	}
	if !res.Approved {
		reason := res.Reason
		if reason == "" {
			reason = "no reason given"
		}
		return "", "", fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
	}

	id, err := s.sink.SubmitBooking(ctx, BookingRequest{
		SessionID:        s.id,
		EventID:          eventID,
		Seats:            bookedSeats(seats),
		TotalAmount:      bd.Total,
		BookingFee:       bd.BookingFee,
		Tax:              bd.Tax,
		Status:           BookingStatusConfirmed,
		Buyer:            details.Buyer,
		PaymentReference: res.Reference,
		PaymentMethod:    details.Method,
		CreatedAt:        s.clock.Now().UTC(),
	})
	if err != nil {
		if rerr := s.payments.Refund(context.WithoutCancel(ctx), res.Reference, bd.Total); rerr != nil {
			s.log.ErrorWithContext(ctx, "Refund after failed booking write", rerr, map[string]interface{}{
				"reference": res.Reference,
			})
		}
		return "", "", fmt.Errorf("submit booking: %w", err)
	}
	return id, res.Reference, nil
}

// Cancel aborts an active checkout. The selection is kept.
func (s *Session) Cancel() error {
	s.mu.Lock()
	notes := s.catchUpLocked()
	switch {
	case s.state == StateExpired:
		s.mu.Unlock()
		s.publish(notes)
		return ErrExpired
	case s.state != StateActive:
		s.mu.Unlock()
		s.publish(notes)
		return ErrNotActive
	case s.inFlight:
		s.mu.Unlock()
		s.publish(notes)
		return ErrConfirmInFlight
	}
	s.state = StateCancelled
	s.stopTimerLocked()
	notes = append(notes, s.noticeLocked(NoticeCancelled, "Checkout cancelled."))
	s.mu.Unlock()
	s.publish(notes)
	return nil
}

// Close tears the session down when its hosting surface goes away. It is safe
// to call more than once and always leaves the countdown stopped. A confirm
// already in flight still resolves; if it fails the session ends cancelled.
func (s *Session) Close() {
	s.mu.Lock()
	var notes []Notice
	s.closed = true
	if s.state == StateActive && !s.inFlight {
		s.state = StateCancelled
		notes = append(notes, s.noticeLocked(NoticeCancelled, "Checkout closed."))
	}
	s.stopTimerLocked()
	s.mu.Unlock()
	s.publish(notes)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Breakdown prices the live selection.
func (s *Session) Breakdown() Breakdown {
	return s.pricing.Compute(s.cart.Total())
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID: s.id,
		EventID:   s.cart.EventID(),
		State:     s.state,
		Remaining: s.remaining,
		InFlight:  s.inFlight,
		Seats:     s.cart.Seats(),
		Breakdown: s.pricing.Compute(s.cart.Total()),
	}
	if !s.openedAt.IsZero() {
		exp := s.openedAt.Add(s.hold)
		snap.ExpiresAt = &exp
	}
	if s.receipt != nil {
		r := *s.receipt
		snap.Receipt = &r
		snap.EventID = r.EventID
		snap.Breakdown = r.Breakdown
	}
	return snap
}

func (s *Session) noticeLocked(kind NoticeKind, msg string) Notice {
	return Notice{
		SessionID: s.id,
		EventID:   s.cart.EventID(),
		Kind:      kind,
		Message:   msg,
		Remaining: s.remaining,
		At:        s.clock.Now().UTC(),
	}
}

func (s *Session) publish(notes []Notice) {
	if s.notifier == nil {
		return
	}
	for _, n := range notes {
		s.notifier.Notify(n)
	}
}

func failureMessage(err error) string {
	if errors.Is(err, ErrPaymentDeclined) {
		return "Your payment was declined. Your seats are still held."
	}
	return "We couldn't complete your booking. Your seats are still held, please try again."
}

func seatIDs(seats []seating.Seat) []string {
	ids := make([]string, len(seats))
	for i, s := range seats {
		ids[i] = s.ID
	}
	return ids
}
