package bookings

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrSoldOut         = errors.New("not enough seats left for this event")
	ErrSeatTaken       = errors.New("one or more seats are already booked")
	ErrInvalidStatus   = errors.New("invalid booking status")
	ErrInvalidEventID  = errors.New("invalid event id")
	ErrNoSeats         = errors.New("booking has no seats")
)
