package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/travelmate/tripplanner/internal/config"
	"github.com/travelmate/tripplanner/internal/tui"
)

func newCatalogCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the attractions that can be added to an itinerary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				items, err := a.catalog.Load(ctx)
				if err != nil {
					return err
				}
				for _, it := range items {
					fmt.Fprintf(a.out, "%4d  %-32s %12s\n", it.ID, it.Name, tui.FormatCost(displayLanguage(), it.Cost))
				}
				return nil
			})
		},
	}
}
