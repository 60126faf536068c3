// Package seating builds the seat chart for an event showing.
package seating

import (
	"fmt"
	"math/rand/v2"
)

type Option func(*generator)

type generator struct {
	layout   Layout
	rng      *rand.Rand
	occupied map[string]struct{}
}

// WithLayout replaces the default 8x12 layout.
func WithLayout(l Layout) Option {
	return func(g *generator) {
		g.layout = l
	}
}

// WithRand supplies the random source used for availability.
func WithRand(r *rand.Rand) Option {
	return func(g *generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithSeed makes availability reproducible.
func WithSeed(seed uint64) Option {
	return func(g *generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithOccupied forces the given seat ids to booked regardless of the random draw.
func WithOccupied(ids ...string) Option {
	return func(g *generator) {
		for _, id := range ids {
			g.occupied[id] = struct{}{}
		}
	}
}

// Generate produces the chart in row-major order with seat numbers ascending.
// Every seat, VIP included, is independently booked with the layout's probability.
func Generate(opts ...Option) ([]Seat, error) {
	g := &generator{
		layout:   DefaultLayout(),
		occupied: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if err := g.layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	l := g.layout
	seats := make([]Seat, 0, l.Capacity())
	for ri, row := range l.Rows {
		for n := 1; n <= l.SeatsPerRow; n++ {
			id := SeatID(row, n)
			tier := l.TierOf(ri, n)

			// Draw for every seat so a seed yields the same chart with or without overrides.
			booked := g.rng.Float64() < l.BookedProbability
			if _, ok := g.occupied[id]; ok {
				booked = true
			}

			seats = append(seats, Seat{
				ID:     id,
				Row:    row,
				Number: n,
				Price:  l.PriceOf(tier),
				Tier:   tier,
				Status: statusFor(booked, tier),
			})
		}
	}
	return seats, nil
}

func statusFor(booked bool, tier Tier) Status {
	switch {
	case booked:
		return StatusBooked
	case tier == TierVIP:
		return StatusVIP
	default:
		return StatusAvailable
	}
}
