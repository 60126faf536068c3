package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"neontix/internal/seating"
)

type seatMapOptions struct {
	seed        uint64
	probability float64
	occupied    []string
}

func newSeatMapCmd() *cobra.Command {
	opts := seatMapOptions{}
	layout := seating.DefaultLayout()

	cmd := &cobra.Command{
		Use:   "seatmap",
		Short: "Render a generated seat chart",
		Long:  `Generate a seat chart with the standard layout and print it row by row with tier prices.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout.BookedProbability = opts.probability

			genOpts := []seating.Option{
				seating.WithLayout(layout),
				seating.WithOccupied(opts.occupied...),
			}
			if cmd.Flags().Changed("seed") {
				genOpts = append(genOpts, seating.WithSeed(opts.seed))
			}

			seats, err := seating.Generate(genOpts...)
			if err != nil {
				return err
			}
			renderSeatMap(cmd.OutOrStdout(), layout, seats)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for a reproducible chart")
	cmd.Flags().Float64Var(&opts.probability, "probability", layout.BookedProbability, "chance each seat is already booked")
	cmd.Flags().StringSliceVar(&opts.occupied, "occupied", nil, "seat ids to force booked, e.g. A1,D5")
	return cmd
}

// seatCell marks booked seats with x and VIP seats with *
func seatCell(s seating.Seat) string {
	switch {
	case s.Booked():
		return "x"
	case s.Tier == seating.TierVIP:
		return "*"
	default:
		return strconv.Itoa(s.Number)
	}
}

func renderSeatMap(w io.Writer, layout seating.Layout, seats []seating.Seat) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Footer = text.FormatDefault

	header := table.Row{"Row"}
	for n := 1; n <= layout.SeatsPerRow; n++ {
		header = append(header, n)
	}
	header = append(header, "Price")
	t.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, layout.SeatsPerRow)
	for n := 2; n <= layout.SeatsPerRow+1; n++ {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignCenter})
	}
	t.SetColumnConfigs(configs)

	available := 0
	for _, row := range seating.Rows(seats) {
		r := table.Row{row[0].Row}
		for _, s := range row {
			r = append(r, seatCell(s))
			if !s.Booked() {
				available++
			}
		}
		r = append(r, priceLabel(row))
		t.AppendRow(r)
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d available", available, len(seats))})
	t.Render()
}

func priceLabel(row []seating.Seat) string {
	low, high := row[0].Price, row[0].Price
	for _, s := range row {
		low = min(low, s.Price)
		high = max(high, s.Price)
	}
	if low == high {
		return fmt.Sprintf("$%d", low)
	}
	return fmt.Sprintf("$%d / $%d", low, high)
}
