package storefront

import (
	"time"

	"neontix/internal/checkout"
	"neontix/internal/events"
	"neontix/internal/seating"
)

// EventSummary is the slice of the catalog entry a seat map needs
type EventSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Venue string `json:"venue"`
	City  string `json:"city"`
}

func summarize(e *events.EventResponse) *EventSummary {
	return &EventSummary{
		ID:    e.ID,
		Title: e.Title,
		Date:  e.Date,
		Time:  e.Time,
		Venue: e.Venue,
		City:  e.City,
	}
}

type SessionResponse struct {
	ID         string             `json:"id"`
	Event      *EventSummary      `json:"event,omitempty"`
	Cart       CartResponse       `json:"cart"`
	Checkout   *checkout.Snapshot `json:"checkout,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	LastSeenAt time.Time          `json:"last_seen_at"`
}

// SeatMapResponse carries the chart as generated. Selected seats are listed
// separately; the chart itself never carries the selected status.
type SeatMapResponse struct {
	Event           EventSummary     `json:"event"`
	Rows            [][]seating.Seat `json:"rows"`
	SelectedSeatIDs []string         `json:"selected_seat_ids"`
	Capacity        int              `json:"capacity"`
	Available       int              `json:"available"`
}

type CartResponse struct {
	EventID   string             `json:"event_id,omitempty"`
	Seats     []seating.Seat     `json:"seats"`
	Count     int                `json:"count"`
	Breakdown checkout.Breakdown `json:"breakdown"`
}

type ToggleResponse struct {
	SeatID string       `json:"seat_id"`
	Result string       `json:"result"`
	Cart   CartResponse `json:"cart"`
}
