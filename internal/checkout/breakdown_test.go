package checkout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neontix/internal/seating"
)

func TestComputeBreakdown(t *testing.T) {
	tests := []struct {
		subtotal int
		want     Breakdown
	}{
		{0, Breakdown{Subtotal: 0, BookingFee: 0, Tax: 0, Total: 0}},
		{5, Breakdown{Subtotal: 5, BookingFee: 1, Tax: 0, Total: 6}},
		{25, Breakdown{Subtotal: 25, BookingFee: 3, Tax: 2, Total: 30}},
		{63, Breakdown{Subtotal: 63, BookingFee: 6, Tax: 5, Total: 74}},
		{70, Breakdown{Subtotal: 70, BookingFee: 7, Tax: 6, Total: 83}},
		{1000, Breakdown{Subtotal: 1000, BookingFee: 100, Tax: 80, Total: 1180}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeBreakdown(tt.subtotal), "subtotal %d", tt.subtotal)
	}
}

func TestComputeBreakdown_MatchesRoundHalfAwayFromZero(t *testing.T) {
	for s := 0; s <= 5000; s++ {
		bd := ComputeBreakdown(s)
		fee := int(math.Round(float64(s*10) / 100))
		tax := int(math.Round(float64(s*8) / 100))
		require.Equal(t, fee, bd.BookingFee, "fee for %d", s)
		require.Equal(t, tax, bd.Tax, "tax for %d", s)
		require.Equal(t, s+fee+tax, bd.Total, "total for %d", s)
	}
}

func TestPricing_Custom(t *testing.T) {
	p := Pricing{FeePercent: 15, TaxPercent: 0}
	assert.Equal(t, Breakdown{Subtotal: 10, BookingFee: 2, Tax: 0, Total: 12}, p.Compute(10))
}

func TestBreakdown_GeneratedChartScenarios(t *testing.T) {
	l := seating.DefaultLayout()
	l.BookedProbability = 0
	seats, err := seating.Generate(seating.WithLayout(l))
	require.NoError(t, err)

	price := func(id string) int {
		s, ok := seating.Find(seats, id)
		require.True(t, ok, id)
		return s.Price
	}

	assert.Equal(t, Breakdown{Subtotal: 63, BookingFee: 6, Tax: 5, Total: 74}, ComputeBreakdown(price("F1")+price("D5")))
	assert.Equal(t, Breakdown{Subtotal: 70, BookingFee: 7, Tax: 6, Total: 83}, ComputeBreakdown(price("A1")+price("D5")))
}
