package storefront

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"neontix/internal/checkout"
)

// SelectionAnnouncer tells a shopper's clients that seats left the selection
// because another shopper booked them.
type SelectionAnnouncer interface {
	SelectionDropped(sessionID, eventID string, seatIDs []string)
}

// Registry tracks live shopper sessions by id.
type Registry struct {
	mu          sync.RWMutex
	shoppers    map[uuid.UUID]*Shopper
	idleTimeout time.Duration
	now         func() time.Time
	announcer   SelectionAnnouncer
}

func NewRegistry(idleTimeout time.Duration) *Registry {
	return &Registry{
		shoppers:    make(map[uuid.UUID]*Shopper),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// SetAnnouncer installs the sink for dropped-seat announcements
func (r *Registry) SetAnnouncer(a SelectionAnnouncer) {
	r.mu.Lock()
	r.announcer = a
	r.mu.Unlock()
}

// Create registers a fresh shopper session
func (r *Registry) Create() *Shopper {
	s := newShopper(uuid.New(), r.now())
	r.mu.Lock()
	r.shoppers[s.id] = s
	r.mu.Unlock()
	return s
}

// Get returns the session and records activity on it
func (r *Registry) Get(id uuid.UUID) (*Shopper, error) {
	r.mu.RLock()
	s, ok := r.shoppers[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.touchLocked(r.now())
	return s, nil
}

// Remove closes and forgets the session
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.shoppers[id]
	delete(r.shoppers, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shoppers)
}

// Sweep closes sessions idle for longer than the idle timeout. Sessions with a
// running checkout are left to their countdown.
func (r *Registry) Sweep() int {
	if r.idleTimeout <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTimeout)

	var stale []*Shopper
	r.mu.Lock()
	for id, s := range r.shoppers {
		if s.LastSeen().Before(cutoff) && !s.Busy() {
			stale = append(stale, s)
			delete(r.shoppers, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// CloseAll tears down every session, used on shutdown
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Shopper, 0, len(r.shoppers))
	for id, s := range r.shoppers {
		all = append(all, s)
		delete(r.shoppers, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

// Notify marks seats confirmed by one shopper as booked on the charts of the
// other shoppers viewing the same event, and drops them from their selections.
func (r *Registry) Notify(n checkout.Notice) {
	if n.Kind != checkout.NoticeConfirmed || n.EventID == "" {
		return
	}
	r.mu.RLock()
	announcer := r.announcer
	others := make([]*Shopper, 0, len(r.shoppers))
	for _, s := range r.shoppers {
		if s.id.String() != n.SessionID {
			others = append(others, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range others {
		dropped := s.markBooked(n.EventID, n.SeatIDs)
		if len(dropped) > 0 && announcer != nil {
			announcer.SelectionDropped(s.id.String(), n.EventID, dropped)
		}
	}
}
