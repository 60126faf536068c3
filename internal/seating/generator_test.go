package seating

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DefaultChartShape(t *testing.T) {
	seats, err := Generate(WithSeed(7))
	require.NoError(t, err)
	require.Len(t, seats, 96)

	ids := make(map[string]struct{}, len(seats))
	for i, s := range seats {
		row := DefaultLayout().Rows[i/12]
		assert.Equal(t, row, s.Row)
		assert.Equal(t, i%12+1, s.Number)
		assert.Equal(t, SeatID(s.Row, s.Number), s.ID)
		ids[s.ID] = struct{}{}
	}
	assert.Len(t, ids, 96)

	assert.Equal(t, "A1", seats[0].ID)
	assert.Equal(t, "H12", seats[95].ID)
}

func TestGenerate_PriceTiers(t *testing.T) {
	seats, err := Generate(WithSeed(1))
	require.NoError(t, err)

	tests := []struct {
		id    string
		tier  Tier
		price int
	}{
		{"A1", TierFront, 25},
		{"C12", TierFront, 25},
		{"D3", TierBase, 18},
		{"D4", TierVIP, 45},
		{"D5", TierVIP, 45},
		{"E9", TierVIP, 45},
		{"E10", TierBase, 18},
		{"F6", TierBase, 18},
		{"H1", TierBase, 18},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, ok := Find(seats, tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.tier, s.Tier)
			assert.Equal(t, tt.price, s.Price)
		})
	}

	vip := 0
	for _, s := range seats {
		if s.Tier == TierVIP {
			vip++
		}
	}
	assert.Equal(t, 12, vip)
}

func TestGenerate_StatusFollowsAvailabilityThenTier(t *testing.T) {
	seats, err := Generate(WithSeed(42))
	require.NoError(t, err)

	for _, s := range seats {
		switch s.Status {
		case StatusBooked:
		case StatusVIP:
			assert.Equal(t, TierVIP, s.Tier, s.ID)
		case StatusAvailable:
			assert.NotEqual(t, TierVIP, s.Tier, s.ID)
		default:
			t.Fatalf("unexpected status %q for %s", s.Status, s.ID)
		}
	}
}

func TestGenerate_ProbabilityExtremes(t *testing.T) {
	none := DefaultLayout()
	none.BookedProbability = 0
	seats, err := Generate(WithLayout(none))
	require.NoError(t, err)
	for _, s := range seats {
		assert.False(t, s.Booked(), s.ID)
	}

	all := DefaultLayout()
	all.BookedProbability = 1
	seats, err = Generate(WithLayout(all))
	require.NoError(t, err)
	for _, s := range seats {
		assert.True(t, s.Booked(), s.ID)
	}
	d5, _ := Find(seats, "D5")
	assert.Equal(t, 45, d5.Price, "booked VIP seat keeps its tier price")
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	a, err := Generate(WithSeed(99))
	require.NoError(t, err)
	b, err := Generate(WithRand(rand.New(rand.NewPCG(99, 99^0x9e3779b97f4a7c15))))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_OccupiedOverridesDraw(t *testing.T) {
	l := DefaultLayout()
	l.BookedProbability = 0

	seats, err := Generate(WithLayout(l), WithOccupied("A1", "D5"))
	require.NoError(t, err)

	for _, s := range seats {
		want := s.ID == "A1" || s.ID == "D5"
		assert.Equal(t, want, s.Booked(), s.ID)
	}
}

func TestGenerate_RejectsInvalidLayout(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
		want   error
	}{
		{"no rows", func(l *Layout) { l.Rows = nil }, ErrNoRows},
		{"duplicate row", func(l *Layout) { l.Rows = []string{"A", "A", "B", "C", "D"} }, ErrDuplicateRow},
		{"zero seats", func(l *Layout) { l.SeatsPerRow = 0 }, ErrInvalidSeatCount},
		{"vip rows past end", func(l *Layout) { l.VIPRows = Band{From: 6, To: 8} }, ErrInvalidBand},
		{"vip seats past end", func(l *Layout) { l.VIPSeats = Band{From: 10, To: 13} }, ErrInvalidBand},
		{"zero price", func(l *Layout) { l.BasePrice = 0 }, ErrInvalidPrice},
		{"probability above one", func(l *Layout) { l.BookedProbability = 1.5 }, ErrInvalidProbability},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			_, err := Generate(WithLayout(l))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRows_GroupsInOrder(t *testing.T) {
	seats, err := Generate(WithSeed(3))
	require.NoError(t, err)

	rows := Rows(seats)
	require.Len(t, rows, 8)
	for i, r := range rows {
		assert.Len(t, r, 12)
		assert.Equal(t, DefaultLayout().Rows[i], r[0].Row)
	}
}
