package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/malexanderboyd/godr4ft/internal/booster"
	"github.com/malexanderboyd/godr4ft/internal/cardlist"
	"github.com/malexanderboyd/godr4ft/internal/cards"
	"github.com/malexanderboyd/godr4ft/internal/config"
)

// checkListCmd parses a custom card list against the configured card table
// and reports whether a table of the given size can be supplied from it.
func checkListCmd(configPath *string) *cobra.Command {
	var players, boosters int
	cmd := &cobra.Command{
		Use:   "check-list FILE",
		Short: "Validate a custom card list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			pool, err := cards.LoadPoolFile(cfg.Cards.Path)
			if err != nil {
				return fmt.Errorf("load card table: %w", err)
			}
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read card list: %w", err)
			}

			out := cmd.OutOrStdout()
			list, err := cardlist.Parse(string(text), pool)
			if err != nil {
				var pe *cardlist.ParseError
				if errors.As(err, &pe) {
					fmt.Fprintf(out, "%s\n%s\n%s\n", pe.Title, pe.Text, pe.Footer)
				}
				return err
			}
			fmt.Fprintf(out, "%q: %d cards on %d sheets, %d cards per booster\n",
				list.Settings.Name, list.Size(), len(list.Sheets), list.CardsPerBooster())
			for _, lay := range list.EffectiveLayouts() {
				fmt.Fprintf(out, "  layout %s (weight %d): %d cards\n", lay.Name, lay.Weight, lay.Size())
			}

			if n := list.Settings.BoostersPerPlayer; n > 0 && !cmd.Flags().Changed("boosters") {
				boosters = n
			}
			src, err := booster.NewCustomSource(list, pool, false, rand.New(rand.NewPCG(1, 1)), &cards.Sequence{})
			if err != nil {
				return err
			}
			if err := src.CheckSupply(boosters, players); err != nil {
				return err
			}
			fmt.Fprintf(out, "enough cards for %d players with %d boosters each\n", players, boosters)
			return nil
		},
	}
	cmd.Flags().IntVar(&players, "players", 8, "number of seats to check the supply for")
	cmd.Flags().IntVar(&boosters, "boosters", 3, "boosters per player, the list's setting wins unless set")
	return cmd
}
