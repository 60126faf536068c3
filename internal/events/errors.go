package events

import "errors"

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrInvalidPrice     = errors.New("price_max must be greater than or equal to price_min")
	ErrInvalidCategory  = errors.New("invalid event category")
	ErrSeatsExceedTotal = errors.New("available seats cannot exceed total seats")
)
