package checkout

import "errors"

var (
	ErrNotIdle         = errors.New("checkout already opened")
	ErrNotActive       = errors.New("checkout is not active")
	ErrExpired         = errors.New("checkout expired")
	ErrEmptySelection  = errors.New("no seats selected")
	ErrNoEvent         = errors.New("no event selected")
	ErrConfirmInFlight = errors.New("confirmation already in progress")
	ErrPaymentDeclined = errors.New("payment declined")
)
