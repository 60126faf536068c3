package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"neontix/internal/events"
	"neontix/internal/seating"
	"neontix/internal/shared/constants"
	"neontix/internal/shared/database"
	"neontix/pkg/cache"
)

func newSeedCmd() *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample event catalog",
		Long:  `Insert the eight sample events. With --clean, bookings and events are truncated first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(cmd)

			db, err := database.InitDB(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			if clean {
				if err := cleanDatabase(db.PostgreSQL); err != nil {
					return err
				}
			}

			created, err := seedEvents(db.PostgreSQL, sampleEvents(seating.DefaultLayout().Capacity()))
			if err != nil {
				return err
			}

			ctx := context.Background()
			svc := cache.NewService(db.Redis)
			if err := svc.DeletePattern(ctx, constants.CACHE_PREFIX+":*"); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to clear cache: %v\n", err)
			}

			printEvents(cmd.OutOrStdout(), created)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "truncate bookings and events before seeding")
	return cmd
}

func cleanDatabase(db *gorm.DB) error {
	// bookings reference events, so they go first
	for _, table := range []string{"bookings", "events"} {
		if err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}

func seedEvents(db *gorm.DB, list []events.Event) ([]events.Event, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range list {
			if err := tx.Create(&list[i]).Error; err != nil {
				return fmt.Errorf("failed to create event %q: %w", list[i].Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func printEvents(w io.Writer, list []events.Event) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Title", "Category", "Date", "City", "Price"})
	for _, e := range list {
		t.AppendRow(table.Row{e.ID, e.Title, e.Category, e.Date + " " + e.Time, e.City, fmt.Sprintf("$%d-$%d", e.PriceMin, e.PriceMax)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d events", len(list))})
	t.Render()
}

func rating(v float64) *float64 {
	return &v
}

// sampleEvents is the demo catalog every environment starts from
func sampleEvents(capacity int) []events.Event {
	list := []events.Event{
		{
			Title:       "Dune: Part Three",
			Category:    events.CategoryMovie,
			ImageURL:    "https://images.unsplash.com/photo-1536440136628-849c177e76a1?w=800&q=80",
			Date:        "2024-03-15",
			Time:        "7:30 PM",
			Venue:       "IMAX Theatre",
			City:        "Los Angeles",
			PriceMin:    18,
			PriceMax:    35,
			Rating:      rating(9.2),
			Trending:    true,
			Featured:    true,
			Description: "The epic conclusion to the Dune saga.",
		},
		{
			Title:       "Taylor Swift - Eras Tour",
			Category:    events.CategoryConcert,
			ImageURL:    "https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=800&q=80",
			Date:        "2024-03-20",
			Time:        "8:00 PM",
			Venue:       "SoFi Stadium",
			City:        "Los Angeles",
			PriceMin:    150,
			PriceMax:    500,
			Rating:      rating(9.8),
			Trending:    true,
			Featured:    true,
			Description: "A journey through all musical eras.",
		},
		{
			Title:       "Dave Chappelle Live",
			Category:    events.CategoryComedy,
			ImageURL:    "https://images.unsplash.com/photo-1585699324551-f6c309eedeca?w=800&q=80",
			Date:        "2024-03-18",
			Time:        "9:00 PM",
			Venue:       "The Comedy Store",
			City:        "Hollywood",
			PriceMin:    75,
			PriceMax:    150,
			Rating:      rating(9.5),
			Trending:    true,
			Description: "An unforgettable night of comedy.",
		},
		{
			Title:       "NBA Finals 2024",
			Category:    events.CategorySports,
			ImageURL:    "https://images.unsplash.com/photo-1546519638-68e109498ffc?w=800&q=80",
			Date:        "2024-04-10",
			Time:        "6:00 PM",
			Venue:       "Crypto.com Arena",
			City:        "Los Angeles",
			PriceMin:    200,
			PriceMax:    1200,
			Rating:      rating(9.9),
			Featured:    true,
			Description: "Championship basketball at its finest.",
		},
		{
			Title:       "Oppenheimer",
			Category:    events.CategoryMovie,
			ImageURL:    "https://images.unsplash.com/photo-1489599849927-2ee91cede3ba?w=800&q=80",
			Date:        "2024-03-16",
			Time:        "6:45 PM",
			Venue:       "Dolby Cinema",
			City:        "New York",
			PriceMin:    15,
			PriceMax:    28,
			Rating:      rating(8.9),
			Description: "The story of J. Robert Oppenheimer.",
		},
		{
			Title:       "Coldplay World Tour",
			Category:    events.CategoryConcert,
			ImageURL:    "https://images.unsplash.com/photo-1540039155733-5bb30b53aa14?w=800&q=80",
			Date:        "2024-03-25",
			Time:        "7:00 PM",
			Venue:       "Rose Bowl",
			City:        "Pasadena",
			PriceMin:    120,
			PriceMax:    400,
			Rating:      rating(9.4),
			Trending:    true,
			Description: "Music of the Spheres World Tour.",
		},
		{
			Title:       "Kevin Hart Comedy Night",
			Category:    events.CategoryComedy,
			ImageURL:    "https://images.unsplash.com/photo-1527224538127-2104bb71c51b?w=800&q=80",
			Date:        "2024-03-22",
			Time:        "8:30 PM",
			Venue:       "Madison Square Garden",
			City:        "New York",
			PriceMin:    85,
			PriceMax:    200,
			Rating:      rating(9.0),
			Description: "Reality Check Tour 2024.",
		},
		{
			Title:       "Avatar 3: Fire and Ash",
			Category:    events.CategoryMovie,
			ImageURL:    "https://images.unsplash.com/photo-1478720568477-152d9b164e26?w=800&q=80",
			Date:        "2024-03-28",
			Time:        "7:00 PM",
			Venue:       "AMC Empire 25",
			City:        "New York",
			PriceMin:    20,
			PriceMax:    40,
			Rating:      rating(9.1),
			Featured:    true,
			Description: "Return to Pandora.",
		},
	}

	for i := range list {
		list[i].TotalSeats = capacity
		list[i].AvailableSeats = capacity
		list[i].CreatedBy = "seed"
	}
	return list
}
