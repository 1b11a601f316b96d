package main

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/config"
	"github.com/travelmate/tripplanner/internal/draft"
	"github.com/travelmate/tripplanner/internal/tui"
)

func newItineraryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "itinerary",
		Aliases: []string{"it", "schedule"},
		Short:   "Manage saved itineraries",
	}
	cmd.AddCommand(newItineraryListCmd(cfg))
	cmd.AddCommand(newItineraryShowCmd(cfg))
	cmd.AddCommand(newItineraryCreateCmd(cfg))
	cmd.AddCommand(newItineraryEditCmd(cfg))
	cmd.AddCommand(newItineraryDeleteCmd(cfg))
	cmd.AddCommand(newItineraryBuildCmd(cfg))
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", client.ErrInvalidID, arg)
	}
	return id, nil
}

func newItineraryListCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your itineraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				cards, err := a.listing.List(ctx)
				if err != nil {
					return err
				}
				printCards(a.out, cards)
				return nil
			})
		},
	}
}

func newItineraryShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				s, err := a.client.GetSchedule(ctx, id)
				if err != nil {
					return err
				}
				printSchedule(a.out, *s)
				return nil
			})
		},
	}
}

// draftFlags are the fields shared by create and edit.
type draftFlags struct {
	title  string
	start  string
	end    string
	add    []int64
	remove []int64
}

func (f *draftFlags) bind(cmd *cobra.Command, withRemove bool) {
	cmd.Flags().StringVar(&f.title, "title", "", "Itinerary title")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date ("+client.DateLayout+")")
	cmd.Flags().StringVar(&f.end, "end", "", "End date ("+client.DateLayout+")")
	cmd.Flags().Int64SliceVar(&f.add, "item", nil, "Catalog item id to add (repeatable)")
	if withRemove {
		cmd.Flags().Int64SliceVar(&f.remove, "remove", nil, "Catalog item id to remove (repeatable)")
	}
}

// apply copies the flags that were set onto d, resolving item ids through
// the catalog. The catalog is only fetched when items are added.
func (f *draftFlags) apply(ctx context.Context, cmd *cobra.Command, a *app, d *draft.Draft) error {
	if cmd.Flags().Changed("title") {
		d.SetTitle(f.title)
	}
	start, end := d.StartDate(), d.EndDate()
	var err error
	if cmd.Flags().Changed("start") {
		if start, err = client.ParseDate(f.start); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("end") {
		if end, err = client.ParseDate(f.end); err != nil {
			return err
		}
	}
	d.SetDates(start, end)

	for _, id := range f.remove {
		d.Remove(id)
	}
	if len(f.add) == 0 {
		return nil
	}
	if _, err := a.catalog.Load(ctx); err != nil {
		return err
	}
	for _, id := range f.add {
		item, ok := a.catalog.Find(id)
		if !ok {
			return fmt.Errorf("catalog item %d not found", id)
		}
		d.Add(item)
	}
	return nil
}

func (a *app) save(ctx context.Context, d *draft.Draft) error {
	s, err := a.engine.Save(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved itinerary #%d %q, total %s\n", s.ID, s.Title, tui.FormatCost(displayLanguage(), s.TotalCost))
	return nil
}

func newItineraryCreateCmd(cfg *config.Config) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an itinerary from catalog item ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				d := draft.New()
				if err := f.apply(ctx, cmd, a, d); err != nil {
					return err
				}
				return a.save(ctx, d)
			})
		},
	}
	f.bind(cmd, false)
	return cmd
}

func newItineraryEditCmd(cfg *config.Config) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an itinerary's title, dates or items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				d, err := a.engine.LoadForEdit(ctx, id)
				if err != nil {
					return err
				}
				if err := f.apply(ctx, cmd, a, d); err != nil {
					return err
				}
				return a.save(ctx, d)
			})
		},
	}
	f.bind(cmd, true)
	return cmd
}

func newItineraryDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an itinerary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				if _, err := a.listing.List(ctx); err != nil {
					return err
				}
				if err := a.listing.Delete(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Deleted itinerary #%d\n", id)
				printCards(a.out, a.listing.Cards())
				return nil
			})
		},
	}
}

func newItineraryBuildCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "build [id]",
		Short: "Open the interactive builder, optionally on an existing itinerary",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, cfg, func(ctx context.Context, a *app) error {
				if err := a.requireSession(); err != nil {
					return err
				}
				d := draft.New()
				if len(args) == 1 {
					id, err := parseID(args[0])
					if err != nil {
						return err
					}
					if d, err = a.engine.LoadForEdit(ctx, id); err != nil {
						return err
					}
				}
				m := tui.New(ctx, a.catalog, d, a.engine, displayLanguage())
				final, err := tui.Run(m, tea.WithContext(ctx), tea.WithAltScreen())
				if err != nil {
					return err
				}
				if s := final.Result(); s != nil {
					fmt.Fprintf(a.out, "Saved itinerary #%d %q\n", s.ID, s.Title)
				}
				return nil
			})
		},
	}
}
