package checkout

import (
	"context"
	"time"

	"neontix/internal/seating"
)

const BookingStatusConfirmed = "confirmed"

type BookedSeat struct {
	ID     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Price  int    `json:"price"`
}

// BookingRequest is the record written when a checkout is confirmed.
type BookingRequest struct {
	SessionID        string       `json:"session_id"`
	EventID          string       `json:"event_id"`
	Seats            []BookedSeat `json:"seats"`
	TotalAmount      int          `json:"total_amount"`
	BookingFee       int          `json:"booking_fee"`
	Tax              int          `json:"tax"`
	Status           string       `json:"status"`
	Buyer            Buyer        `json:"buyer"`
	PaymentReference string       `json:"payment_reference"`
	PaymentMethod    string       `json:"payment_method,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// BookingSink persists confirmed bookings and returns the new booking id.
type BookingSink interface {
	SubmitBooking(ctx context.Context, req BookingRequest) (string, error)
}

func bookedSeats(seats []seating.Seat) []BookedSeat {
	out := make([]BookedSeat, len(seats))
	for i, s := range seats {
		out[i] = BookedSeat{ID: s.ID, Row: s.Row, Number: s.Number, Price: s.Price}
	}
	return out
}
