package storefront

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"neontix/internal/checkout"
	"neontix/internal/seating"
	"neontix/internal/selection"
)

// Shopper is one browsing session: the open event, its seat chart, the
// selection and at most one checkout.
type Shopper struct {
	id        uuid.UUID
	store     *selection.Store
	createdAt time.Time

	mu       sync.Mutex
	event    *EventSummary
	seats    []seating.Seat
	session  *checkout.Session
	lastSeen time.Time
	closed   bool
}

func newShopper(id uuid.UUID, now time.Time) *Shopper {
	return &Shopper{
		id:        id,
		store:     selection.NewStore(),
		createdAt: now,
		lastSeen:  now,
	}
}

func (s *Shopper) ID() uuid.UUID { return s.id }

// Selection exposes the live selection, mainly for checkout wiring
func (s *Shopper) Selection() *selection.Store { return s.store }

func (s *Shopper) touchLocked(now time.Time) {
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
}

// LastSeen is the time of the most recent request against the session
func (s *Shopper) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// checkoutActiveLocked reports whether a countdown is running
func (s *Shopper) checkoutActiveLocked() bool {
	return s.session != nil && s.session.State() == checkout.StateActive
}

// Busy reports whether the session has a live checkout and must not be swept
func (s *Shopper) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutActiveLocked()
}

// markBooked flags seats of the open event as booked on this chart and drops
// them from the selection. It returns the ids that left the selection.
func (s *Shopper) markBooked(eventID string, ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.event == nil || s.event.ID != eventID {
		return nil
	}
	booked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		booked[id] = struct{}{}
	}
	for i, seat := range s.seats {
		if _, ok := booked[seat.ID]; ok {
			s.seats[i] = seat.WithStatus(seating.StatusBooked)
		}
	}
	return s.store.Drop(ids...)
}

// Close stops any checkout countdown and drops the selection. It is idempotent.
func (s *Shopper) Close() {
	s.mu.Lock()
	session := s.session
	s.closed = true
	s.event = nil
	s.seats = nil
	s.mu.Unlock()

	if session != nil {
		session.Close()
	}
	s.store.SetEvent(nil)
}
