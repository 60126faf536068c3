package storefront

import "errors"

var (
	ErrSessionNotFound = errors.New("shopper session not found")
	ErrSessionClosed   = errors.New("shopper session closed")
	ErrNoEventOpen     = errors.New("no event open")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrNoCheckout      = errors.New("no checkout started")
	ErrCheckoutActive  = errors.New("a checkout is in progress")
)
