// Package storefront hosts shopper sessions: the seat map for an open event,
// the live selection and the checkout countdown that turns it into a booking.
package storefront

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"neontix/internal/checkout"
	"neontix/internal/events"
	"neontix/internal/seating"
	"neontix/internal/selection"
	"neontix/internal/shared/config"
	"neontix/pkg/logger"
)

const defaultPaymentMethod = "card"

// Catalog looks up the event a shopper opens
type Catalog interface {
	GetEventByID(ctx context.Context, id uuid.UUID) (*events.EventResponse, error)
}

// Occupancy lists seats already held by stored bookings
type Occupancy interface {
	OccupiedSeats(ctx context.Context, eventID uuid.UUID) ([]string, error)
}

// Config controls seat chart generation and the checkout countdown
type Config struct {
	Layout       seating.Layout
	Seed         int64
	Pricing      checkout.Pricing
	HoldDuration time.Duration
	TickInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Layout:       seating.DefaultLayout(),
		Pricing:      checkout.DefaultPricing(),
		HoldDuration: checkout.DefaultHoldDuration,
		TickInterval: checkout.DefaultTickInterval,
	}
}

// ConfigFromAppConfig applies the seating and checkout sections on top of the defaults
func ConfigFromAppConfig(cfg *config.Config) Config {
	c := DefaultConfig()
	if len(cfg.Seating.Rows) > 0 {
		c.Layout.Rows = cfg.Seating.Rows
	}
	if cfg.Seating.SeatsPerRow > 0 {
		c.Layout.SeatsPerRow = cfg.Seating.SeatsPerRow
	}
	c.Layout.BookedProbability = cfg.Seating.BookedProbability
	c.Seed = cfg.Seating.Seed
	c.Pricing = checkout.Pricing{FeePercent: cfg.Checkout.FeePercent, TaxPercent: cfg.Checkout.TaxPercent}
	if cfg.Checkout.HoldDuration > 0 {
		c.HoldDuration = cfg.Checkout.HoldDuration
	}
	if cfg.Checkout.TickInterval > 0 {
		c.TickInterval = cfg.Checkout.TickInterval
	}
	return c
}

// Validate rejects a configuration that would fail on every OpenEvent
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("seating layout: %w", err)
	}
	if c.HoldDuration <= 0 {
		return fmt.Errorf("checkout hold duration must be positive")
	}
	if c.TickInterval <= 0 || c.TickInterval > c.HoldDuration {
		return fmt.Errorf("checkout tick interval must be between 0 and the hold duration")
	}
	if c.Pricing.FeePercent < 0 || c.Pricing.TaxPercent < 0 {
		return fmt.Errorf("checkout fee and tax percentages must not be negative")
	}
	return nil
}

type Service interface {
	CreateSession(ctx context.Context) (*SessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*SessionResponse, error)
	CloseSession(ctx context.Context, id uuid.UUID) error
	OpenEvent(ctx context.Context, id, eventID uuid.UUID) (*SeatMapResponse, error)
	GetSeatMap(ctx context.Context, id uuid.UUID) (*SeatMapResponse, error)
	ToggleSeat(ctx context.Context, id uuid.UUID, seatID string) (*ToggleResponse, error)
	ClearSelection(ctx context.Context, id uuid.UUID) (*CartResponse, error)
	GetCart(ctx context.Context, id uuid.UUID) (*CartResponse, error)
	StartCheckout(ctx context.Context, id uuid.UUID) (*checkout.Snapshot, error)
	GetCheckout(ctx context.Context, id uuid.UUID) (*checkout.Snapshot, error)
	ConfirmCheckout(ctx context.Context, id uuid.UUID, userID string, req ConfirmCheckoutRequest) (*checkout.Receipt, error)
	CancelCheckout(ctx context.Context, id uuid.UUID) (*checkout.Snapshot, error)
}

type ServiceOption func(*service)

func WithPaymentProcessor(p checkout.PaymentProcessor) ServiceOption {
	return func(s *service) {
		s.payments = p
	}
}

// WithNotifiers adds receivers for checkout notices, e.g. the realtime hub
func WithNotifiers(ns ...checkout.Notifier) ServiceOption {
	return func(s *service) {
		s.notifiers = append(s.notifiers, ns...)
	}
}

// WithClock drives checkout countdowns from c instead of the wall clock
func WithClock(c checkout.Clock) ServiceOption {
	return func(s *service) {
		s.clock = c
	}
}

type service struct {
	registry  *Registry
	catalog   Catalog
	occupancy Occupancy
	sink      checkout.BookingSink
	payments  checkout.PaymentProcessor
	notifiers []checkout.Notifier
	clock     checkout.Clock
	cfg       Config
	log       *logger.Logger
}

func NewService(registry *Registry, catalog Catalog, occupancy Occupancy, sink checkout.BookingSink, cfg Config, opts ...ServiceOption) Service {
	s := &service{
		registry:  registry,
		catalog:   catalog,
		occupancy: occupancy,
		sink:      sink,
		cfg:       cfg,
		log:       logger.GetDefault(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateSession(ctx context.Context) (*SessionResponse, error) {
	shopper := s.registry.Create()
	s.log.InfoWithContext(ctx, "Shopper session created", map[string]interface{}{
		"session_id": shopper.id.String(),
	})
	return s.sessionResponse(shopper), nil
}

func (s *service) GetSession(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return s.sessionResponse(shopper), nil
}

func (s *service) CloseSession(ctx context.Context, id uuid.UUID) error {
	if err := s.registry.Remove(id); err != nil {
		return err
	}
	s.log.InfoWithContext(ctx, "Shopper session closed", map[string]interface{}{
		"session_id": id.String(),
	})
	return nil
}

// OpenEvent builds a fresh seat chart for the event with stored bookings
// forced booked. Opening another event drops the current selection.
func (s *service) OpenEvent(ctx context.Context, id, eventID uuid.UUID) (*SeatMapResponse, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	event, err := s.catalog.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	occupied, err := s.occupancy.OccupiedSeats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupied seats: %w", err)
	}
	seats, err := seating.Generate(s.generatorOptions(event.ID, occupied)...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate seat chart: %w", err)
	}

	shopper.mu.Lock()
	defer shopper.mu.Unlock()

	if shopper.closed {
		return nil, ErrSessionClosed
	}
	if shopper.checkoutActiveLocked() {
		return nil, ErrCheckoutActive
	}
	if shopper.session != nil {
		shopper.session.Close()
		shopper.session = nil
	}

	shopper.event = summarize(event)
	shopper.seats = seats
	shopper.store.SetEvent(&selection.Event{ID: event.ID, Title: event.Title})

	return seatMapLocked(shopper), nil
}

func (s *service) generatorOptions(eventID string, occupied []string) []seating.Option {
	opts := []seating.Option{
		seating.WithLayout(s.cfg.Layout),
		seating.WithOccupied(occupied...),
	}
	if s.cfg.Seed != 0 {
		opts = append(opts, seating.WithSeed(eventSeed(s.cfg.Seed, eventID)))
	}
	return opts
}

// eventSeed keeps charts reproducible per event while differing between events
func eventSeed(seed int64, eventID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(eventID))
	return uint64(seed) ^ h.Sum64()
}

func (s *service) GetSeatMap(ctx context.Context, id uuid.UUID) (*SeatMapResponse, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	shopper.mu.Lock()
	defer shopper.mu.Unlock()
	if shopper.event == nil {
		return nil, ErrNoEventOpen
	}
	return seatMapLocked(shopper), nil
}

func seatMapLocked(shopper *Shopper) *SeatMapResponse {
	available := 0
	for _, seat := range shopper.seats {
		if !seat.Booked() {
			available++
		}
	}
	selected := shopper.store.Seats()
	ids := make([]string, len(selected))
	for i, seat := range selected {
		ids[i] = seat.ID
	}
	return &SeatMapResponse{
		Event:           *shopper.event,
		Rows:            seating.Rows(shopper.seats),
		SelectedSeatIDs: ids,
		Capacity:        len(shopper.seats),
		Available:       available,
	}
}

// ToggleSeat adds or removes a seat. Booked seats leave the selection unchanged.
func (s *service) ToggleSeat(ctx context.Context, id uuid.UUID, seatID string) (*ToggleResponse, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	shopper.mu.Lock()
	defer shopper.mu.Unlock()

	if shopper.event == nil {
		return nil, ErrNoEventOpen
	}
	seat, ok := seating.Find(shopper.seats, seatID)
	if !ok {
		return nil, ErrSeatNotFound
	}
	if err := confirmingLocked(shopper); err != nil {
		return nil, err
	}

	result := shopper.store.Toggle(seat)
	return &ToggleResponse{
		SeatID: seat.ID,
		Result: result.String(),
		Cart:   s.cart(shopper.store),
	}, nil
}

// confirmingLocked blocks selection edits while a payment is being processed
func confirmingLocked(shopper *Shopper) error {
	if shopper.session != nil && shopper.session.Snapshot().InFlight {
		return checkout.ErrConfirmInFlight
	}
	return nil
}

func (s *service) ClearSelection(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	shopper.mu.Lock()
	defer shopper.mu.Unlock()
	if err := confirmingLocked(shopper); err != nil {
		return nil, err
	}
	shopper.store.Clear()
	cart := s.cart(shopper.store)
	return &cart, nil
}

func (s *service) GetCart(ctx context.Context, id uuid.UUID) (*CartResponse, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	cart := s.cart(shopper.store)
	return &cart, nil
}

func (s *service) cart(store *selection.Store) CartResponse {
	seats := store.Seats()
	subtotal := 0
	for _, seat := range seats {
		subtotal += seat.Price
	}
	return CartResponse{
		EventID:   store.EventID(),
		Seats:     seats,
		Count:     len(seats),
		Breakdown: s.cfg.Pricing.Compute(subtotal),
	}
}

// StartCheckout opens a countdown over the current selection. A finished
// checkout is replaced; a running one is not.
func (s *service) StartCheckout(ctx context.Context, id uuid.UUID) (*checkout.Snapshot, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	shopper.mu.Lock()
	if shopper.checkoutActiveLocked() {
		shopper.mu.Unlock()
		return nil, checkout.ErrNotIdle
	}

	session := checkout.NewSession(shopper.id.String(), shopper.store, s.sink, s.sessionOptions()...)
	if err := session.Open(); err != nil {
		shopper.mu.Unlock()
		return nil, err
	}
	if shopper.session != nil {
		shopper.session.Close()
	}
	shopper.session = session
	shopper.mu.Unlock()

	snap := session.Snapshot()
	return &snap, nil
}

func (s *service) sessionOptions() []checkout.Option {
	notifiers := append([]checkout.Notifier{s.registry}, s.notifiers...)
	opts := []checkout.Option{
		checkout.WithHoldDuration(s.cfg.HoldDuration),
		checkout.WithTickInterval(s.cfg.TickInterval),
		checkout.WithPricing(s.cfg.Pricing),
		checkout.WithNotifier(checkout.Notifiers(notifiers...)),
		checkout.WithLogger(s.log),
	}
	if s.payments != nil {
		opts = append(opts, checkout.WithPaymentProcessor(s.payments))
	}
	if s.clock != nil {
		opts = append(opts, checkout.WithClock(s.clock))
	}
	return opts
}

func (s *service) checkoutOf(id uuid.UUID) (*Shopper, *checkout.Session, error) {
	shopper, err := s.registry.Get(id)
	if err != nil {
		return nil, nil, err
	}
	shopper.mu.Lock()
	defer shopper.mu.Unlock()
	if shopper.session == nil {
		return nil, nil, ErrNoCheckout
	}
	return shopper, shopper.session, nil
}

func (s *service) GetCheckout(ctx context.Context, id uuid.UUID) (*checkout.Snapshot, error) {
	_, session, err := s.checkoutOf(id)
	if err != nil {
		return nil, err
	}
	snap := session.Snapshot()
	return &snap, nil
}

// ConfirmCheckout charges the shopper and writes the booking. The shopper lock
// is not held while payment and storage calls run.
func (s *service) ConfirmCheckout(ctx context.Context, id uuid.UUID, userID string, req ConfirmCheckoutRequest) (*checkout.Receipt, error) {
	shopper, session, err := s.checkoutOf(id)
	if err != nil {
		return nil, err
	}

	method := req.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}
	receipt, err := session.Confirm(ctx, checkout.PaymentDetails{
		Method:         method,
		CardholderName: req.CardholderName,
		Buyer: checkout.Buyer{
			UserID: userID,
			Email:  req.Email,
			Name:   req.Name,
		},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(receipt.Seats))
	for i, seat := range receipt.Seats {
		ids[i] = seat.ID
	}
	shopper.markBooked(receipt.EventID, ids)
	return receipt, nil
}

func (s *service) CancelCheckout(ctx context.Context, id uuid.UUID) (*checkout.Snapshot, error) {
	_, session, err := s.checkoutOf(id)
	if err != nil {
		return nil, err
	}
	if err := session.Cancel(); err != nil {
		return nil, err
	}
	snap := session.Snapshot()
	return &snap, nil
}

func (s *service) sessionResponse(shopper *Shopper) *SessionResponse {
	shopper.mu.Lock()
	defer shopper.mu.Unlock()

	resp := &SessionResponse{
		ID:         shopper.id.String(),
		Cart:       s.cart(shopper.store),
		CreatedAt:  shopper.createdAt,
		LastSeenAt: shopper.lastSeen,
	}
	if shopper.event != nil {
		ev := *shopper.event
		resp.Event = &ev
	}
	if shopper.session != nil {
		snap := shopper.session.Snapshot()
		resp.Checkout = &snap
	}
	return resp
}
