// Package selection holds a shopper's in-progress seat picks for one event.
package selection

import (
	"sync"

	"neontix/internal/seating"
)

// Event identifies the event a selection is scoped to.
type Event struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ToggleResult int

const (
	// ToggleIgnored means the seat was booked and the selection is unchanged.
	ToggleIgnored ToggleResult = iota
	ToggleAdded
	ToggleRemoved
)

func (r ToggleResult) String() string {
	switch r {
	case ToggleAdded:
		return "added"
	case ToggleRemoved:
		return "removed"
	default:
		return "ignored"
	}
}

// Store is an insertion-ordered set of seats. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	event *Event
	seats []seating.Seat
}

func NewStore() *Store {
	return &Store{}
}

// SetEvent scopes the store to an event. Switching to a different event, or
// to none, clears the selection in the same step.
func (s *Store) SetEvent(e *Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.event != nil && e != nil && s.event.ID == e.ID {
		ev := *e
		s.event = &ev
		return
	}
	s.seats = nil
	if e == nil {
		s.event = nil
		return
	}
	ev := *e
	s.event = &ev
}

// Event returns the current event, or nil.
func (s *Store) Event() *Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.event == nil {
		return nil
	}
	ev := *s.event
	return &ev
}

// EventID returns the current event id, or "".
func (s *Store) EventID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.event == nil {
		return ""
	}
	return s.event.ID
}

// Toggle adds the seat if absent and removes it if present. Booked seats are ignored.
func (s *Store) Toggle(seat seating.Seat) ToggleResult {
	if seat.Booked() {
		return ToggleIgnored
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.seats {
		if cur.ID == seat.ID {
			s.seats = append(s.seats[:i:i], s.seats[i+1:]...)
			return ToggleRemoved
		}
	}
	s.seats = append(s.seats, seat)
	return ToggleAdded
}

// Drop removes the given seats regardless of their status and returns the ids
// that were actually selected. It is the removal path for seats that became
// booked elsewhere, which Toggle refuses.
func (s *Store) Drop(ids ...string) []string {
	if len(ids) == 0 {
		return nil
	}
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped []string
	kept := s.seats[:0:0]
	for _, cur := range s.seats {
		if _, ok := gone[cur.ID]; ok {
			dropped = append(dropped, cur.ID)
			continue
		}
		kept = append(kept, cur)
	}
	if len(dropped) > 0 {
		s.seats = kept
	}
	return dropped
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.seats = nil
	s.mu.Unlock()
}

// Seats returns a copy of the selection in insertion order.
func (s *Store) Seats() []seating.Seat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]seating.Seat, len(s.seats))
	copy(out, s.seats)
	return out
}

func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cur := range s.seats {
		if cur.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seats)
}

// Total is the sum of selected seat prices.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, cur := range s.seats {
		total += cur.Price
	}
	return total
}
