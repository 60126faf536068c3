package seating

import "strconv"

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusVIP       Status = "vip"

	// StatusSelected is a presentation overlay. The generator never emits it.
	StatusSelected Status = "selected"
)

type Tier string

const (
	TierFront Tier = "front"
	TierVIP   Tier = "vip"
	TierBase  Tier = "base"
)

type Seat struct {
	ID     string `json:"id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Price  int    `json:"price"`
	Tier   Tier   `json:"tier"`
	Status Status `json:"status"`
}

// SeatID builds the stable identifier for a seat, e.g. "D5".
func SeatID(row string, number int) string {
	return row + strconv.Itoa(number)
}

// Booked reports whether the seat was unavailable at generation time.
func (s Seat) Booked() bool {
	return s.Status == StatusBooked
}

// WithStatus returns a copy of the seat carrying a different status label.
func (s Seat) WithStatus(st Status) Seat {
	s.Status = st
	return s
}

// Rows groups a row-major seat list by row label, preserving order.
func Rows(seats []Seat) [][]Seat {
	var out [][]Seat
	idx := make(map[string]int)
	for _, s := range seats {
		i, ok := idx[s.Row]
		if !ok {
			i = len(out)
			idx[s.Row] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], s)
	}
	return out
}

// Find looks a seat up by identifier.
func Find(seats []Seat, id string) (Seat, bool) {
	for _, s := range seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}
