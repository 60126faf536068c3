package bookings

import (
	"time"

	"neontix/internal/checkout"
)

type BookingResponse struct {
	ID               string                `json:"id"`
	SessionID        string                `json:"session_id"`
	EventID          string                `json:"event_id"`
	EventTitle       string                `json:"event_title,omitempty"`
	EventDate        string                `json:"event_date,omitempty"`
	Venue            string                `json:"venue,omitempty"`
	CustomerEmail    string                `json:"customer_email,omitempty"`
	CustomerName     string                `json:"customer_name,omitempty"`
	Seats            []checkout.BookedSeat `json:"seats"`
	TicketCount      int                   `json:"ticket_count"`
	TotalAmount      int                   `json:"total_amount"`
	BookingFee       int                   `json:"booking_fee"`
	Tax              int                   `json:"tax"`
	Status           Status                `json:"status"`
	PaymentReference string                `json:"payment_reference,omitempty"`
	PaymentMethod    string                `json:"payment_method,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

type PaginatedBookings struct {
	Bookings   []BookingResponse `json:"bookings"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:               b.ID.String(),
		SessionID:        b.SessionID,
		EventID:          b.EventID.String(),
		CustomerEmail:    b.CustomerEmail,
		CustomerName:     b.CustomerName,
		Seats:            []checkout.BookedSeat(b.Seats),
		TicketCount:      b.TicketCount,
		TotalAmount:      b.TotalAmount,
		BookingFee:       b.BookingFee,
		Tax:              b.Tax,
		Status:           b.Status,
		PaymentReference: b.PaymentReference,
		PaymentMethod:    b.PaymentMethod,
		CreatedAt:        b.CreatedAt,
	}
	if resp.Seats == nil {
		resp.Seats = []checkout.BookedSeat{}
	}
	if b.Event != nil {
		resp.EventTitle = b.Event.Title
		resp.EventDate = b.Event.Date
		resp.Venue = b.Event.Venue
	}
	return resp
}
