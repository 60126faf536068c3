package bookings

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

func Statuses() []Status {
	return []Status{StatusConfirmed, StatusPending, StatusCancelled, StatusRefunded}
}

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// HoldsSeats reports whether a booking in this status keeps its seats off the market
func (s Status) HoldsSeats() bool {
	return s == StatusConfirmed || s == StatusPending
}
