package checkout

import "time"

type NoticeKind string

const (
	NoticeTick      NoticeKind = "tick"
	NoticeConfirmed NoticeKind = "confirmed"
	NoticeExpired   NoticeKind = "expired"
	NoticeCancelled NoticeKind = "cancelled"
	NoticeError     NoticeKind = "error"
)

// Notice is a user-facing signal emitted by a checkout session.
type Notice struct {
	SessionID string     `json:"session_id"`
	EventID   string     `json:"event_id,omitempty"`
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message,omitempty"`
	Remaining int        `json:"remaining"`
	BookingID string     `json:"booking_id,omitempty"`
	SeatIDs   []string   `json:"seat_ids,omitempty"`
	At        time.Time  `json:"at"`
}

// Notifier receives notices after the session lock is released.
type Notifier interface {
	Notify(n Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type fanout []Notifier

func (f fanout) Notify(n Notice) {
	for _, x := range f {
		x.Notify(n)
	}
}

// Notifiers combines several notifiers. Nil entries are skipped.
func Notifiers(ns ...Notifier) Notifier {
	out := make(fanout, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}
