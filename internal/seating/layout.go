package seating

import (
	"errors"
	"fmt"
)

// Band is an inclusive integer range.
type Band struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Contains reports whether n falls inside the band.
func (b Band) Contains(n int) bool {
	return n >= b.From && n <= b.To
}

// Layout describes a venue seating chart and its price tiers.
type Layout struct {
	Rows        []string `json:"rows"`
	SeatsPerRow int      `json:"seats_per_row"`

	// FrontRows is the number of leading rows priced at FrontPrice.
	FrontRows int `json:"front_rows"`

	// VIPRows holds 0-based row indexes, VIPSeats holds 1-based seat numbers.
	VIPRows  Band `json:"vip_rows"`
	VIPSeats Band `json:"vip_seats"`

	FrontPrice int `json:"front_price"`
	VIPPrice   int `json:"vip_price"`
	BasePrice  int `json:"base_price"`

	BookedProbability float64 `json:"booked_probability"`
}

var (
	ErrNoRows             = errors.New("layout has no rows")
	ErrInvalidSeatCount   = errors.New("seats per row must be positive")
	ErrInvalidBand        = errors.New("vip band out of range")
	ErrInvalidPrice       = errors.New("tier prices must be positive")
	ErrInvalidProbability = errors.New("booked probability must be within [0, 1]")
	ErrDuplicateRow       = errors.New("duplicate row label")
)

// DefaultLayout returns the standard 8x12 auditorium chart.
func DefaultLayout() Layout {
	return Layout{
		Rows:              []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		SeatsPerRow:       12,
		FrontRows:         3,
		VIPRows:           Band{From: 3, To: 4},
		VIPSeats:          Band{From: 4, To: 9},
		FrontPrice:        25,
		VIPPrice:          45,
		BasePrice:         18,
		BookedProbability: 0.25,
	}
}

// Capacity is the total number of seats in the layout.
func (l Layout) Capacity() int {
	return len(l.Rows) * l.SeatsPerRow
}

// Validate checks the layout for structural problems.
func (l Layout) Validate() error {
	if len(l.Rows) == 0 {
		return ErrNoRows
	}
	seen := make(map[string]struct{}, len(l.Rows))
	for _, r := range l.Rows {
		if r == "" {
			return fmt.Errorf("%w: empty label", ErrNoRows)
		}
		if _, ok := seen[r]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateRow, r)
		}
		seen[r] = struct{}{}
	}
	if l.SeatsPerRow <= 0 {
		return ErrInvalidSeatCount
	}
	if l.VIPRows.From > l.VIPRows.To || l.VIPRows.From < 0 || l.VIPRows.To >= len(l.Rows) {
		return fmt.Errorf("%w: rows %d-%d", ErrInvalidBand, l.VIPRows.From, l.VIPRows.To)
	}
	if l.VIPSeats.From > l.VIPSeats.To || l.VIPSeats.From < 1 || l.VIPSeats.To > l.SeatsPerRow {
		return fmt.Errorf("%w: seats %d-%d", ErrInvalidBand, l.VIPSeats.From, l.VIPSeats.To)
	}
	if l.FrontPrice <= 0 || l.VIPPrice <= 0 || l.BasePrice <= 0 {
		return ErrInvalidPrice
	}
	if l.BookedProbability < 0 || l.BookedProbability > 1 {
		return ErrInvalidProbability
	}
	return nil
}

// TierOf classifies a seat. The VIP band wins over the front-row rule.
func (l Layout) TierOf(rowIndex, number int) Tier {
	switch {
	case l.VIPRows.Contains(rowIndex) && l.VIPSeats.Contains(number):
		return TierVIP
	case rowIndex < l.FrontRows:
		return TierFront
	default:
		return TierBase
	}
}

// PriceOf returns the configured price for a tier.
func (l Layout) PriceOf(t Tier) int {
	switch t {
	case TierVIP:
		return l.VIPPrice
	case TierFront:
		return l.FrontPrice
	default:
		return l.BasePrice
	}
}
