package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pkordes/packlist/backend/internal/auth"
	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/repo"
	"github.com/pkordes/packlist/backend/internal/service"
	"github.com/pkordes/packlist/backend/internal/suggest"
	"github.com/pkordes/packlist/backend/internal/weather"
	"github.com/pkordes/packlist/backend/internal/wizard"
)

var (
	planCity       string
	planStart      string
	planEnd        string
	planActivities []string
	planCustom     []string
	planSkip       []string
	planUser       string
	planSave       bool
)

func init() {
	planCmd.Flags().StringVar(&planCity, "city", "", "destination to search for")
	planCmd.Flags().StringVar(&planStart, "start", "", "first day, YYYY-MM-DD")
	planCmd.Flags().StringVar(&planEnd, "end", "", "last day, YYYY-MM-DD")
	planCmd.Flags().StringSliceVar(&planActivities, "activity", nil, "predefined activity (repeatable)")
	planCmd.Flags().StringSliceVar(&planCustom, "custom", nil, "custom activity name of --user (repeatable)")
	planCmd.Flags().StringSliceVar(&planSkip, "skip", nil, "suggested item name to leave out (repeatable)")
	planCmd.Flags().StringVar(&planUser, "user", "", "owner of custom activities and of the saved trip")
	planCmd.Flags().BoolVar(&planSave, "save", false, "create the trip and its selected items for --user")
	for _, f := range []string{"city", "start", "end"} {
		_ = planCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Walk the trip wizard non-interactively and print the suggestions",
	Long: `Plan a trip the way the web wizard does: pick a city, a date range and
activities, then review weather and activity based packing suggestions.

Examples:
  # Preview suggestions
  packctl plan --city Lisbon --start 2025-06-01 --end 2025-06-07 --activity Beach

  # Save the trip with everything but the umbrella
  packctl plan --city Oslo --start 2025-12-20 --end 2025-12-27 \
    --activity Skiing --custom "Ice fishing" --skip Umbrella --user alice --save`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func runPlan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if planUser == "" && (planSave || len(planCustom) > 0) {
		return errors.New("--save and --custom need --user")
	}

	w := wizard.New()

	// Details
	cities := newGeocoder().Search(ctx, planCity)
	if len(cities) == 0 {
		return fmt.Errorf("no city matches %q", planCity)
	}
	w.SetCity(cities[0])
	d := w.Draft()
	var err error
	if d.StartDate, err = domain.ParseDate(planStart); err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	if d.EndDate, err = domain.ParseDate(planEnd); err != nil {
		return fmt.Errorf("--end: %w", err)
	}
	if err := w.Next(); err != nil {
		return err
	}

	// Activities
	var pool *pgxpool.Pool
	var custom []domain.CustomActivity
	if planUser != "" {
		if pool, err = openPool(ctx); err != nil {
			return err
		}
		defer pool.Close()
		ctx = auth.WithUser(ctx, planUser)
		if custom, err = service.NewActivityService(repo.NewActivityRepo(pool), nil, nil, logger).List(ctx); err != nil {
			return err
		}
	}
	for _, name := range planActivities {
		if !domain.IsPredefinedActivity(name) {
			return fmt.Errorf("unknown activity %q (one of: %s)", name, strings.Join(domain.PredefinedActivities, ", "))
		}
		w.ToggleActivity(name)
	}
	for _, name := range planCustom {
		a, ok := findCustom(custom, name)
		if !ok {
			return fmt.Errorf("%s has no custom activity %q", planUser, name)
		}
		w.ToggleCustom(a.ID)
	}
	if err := w.Next(); err != nil {
		return err
	}

	// Review
	wx := newFetcher().FetchForTrip(ctx, d.Latitude, d.Longitude, d.StartDate, d.EndDate)
	req := suggest.Request{Activities: d.Predefined, Custom: w.SelectedCustom(custom)}
	if c, ok := weather.DeriveCondition(wx); ok {
		req.Condition, req.IsRainy = c.Category, c.IsRainy
	}
	w.SetSuggestions(suggest.Build(req))
	for _, name := range planSkip {
		for _, s := range w.Suggestions() {
			if strings.EqualFold(s.Name, name) && w.IsSelected(s.Key()) {
				w.ToggleSuggestion(s.Key())
			}
		}
	}

	trip := w.Trip(custom)
	fmt.Fprintf(out, "%s, %s to %s\n", trip.Destination,
		trip.StartDate.Format(domain.DateLayout), trip.EndDate.Format(domain.DateLayout))
	if len(trip.Activities) > 0 {
		fmt.Fprintf(out, "Activities: %s\n", strings.Join(trip.Activities, ", "))
	}
	fmt.Fprintln(out)
	if err := printWeather(out, wx); err != nil {
		return err
	}
	fmt.Fprintln(out)
	printSuggestions(out, w)

	if !planSave {
		return nil
	}
	return saveTrip(ctx, cmd, pool, trip, w.SelectedItems())
}

func findCustom(custom []domain.CustomActivity, name string) (domain.CustomActivity, bool) {
	for _, c := range custom {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return c, true
		}
	}
	return domain.CustomActivity{}, false
}

func printSuggestions(out io.Writer, w *wizard.Wizard) {
	if len(w.Suggestions()) == 0 {
		fmt.Fprintln(out, "No suggestions.")
		return
	}
	for _, g := range suggest.GroupByCategory(w.Suggestions()) {
		fmt.Fprintf(out, "%s\n", g.Category)
		for _, s := range g.Items {
			mark := " "
			if w.IsSelected(s.Key()) {
				mark = "x"
			}
			fmt.Fprintf(out, "  [%s] %s x%d (%s)\n", mark, s.Name, s.Quantity, s.Source)
		}
	}
}

func saveTrip(ctx context.Context, cmd *cobra.Command, pool *pgxpool.Pool, trip domain.Trip, selected []domain.SuggestedItem) error {
	trips := repo.NewTripRepo(pool)
	created, err := service.NewTripService(trips, repo.NewTransactor(pool), nil, nil, nil, logger).Create(ctx, trip)
	if err != nil {
		return fmt.Errorf("save trip: %w", err)
	}

	items := make([]domain.PackingItem, 0, len(selected))
	for _, s := range selected {
		items = append(items, domain.PackingItem{Name: s.Name, Category: s.Category, Quantity: s.Quantity})
	}
	itemSvc := service.NewItemService(trips, repo.NewItemRepo(pool), repo.NewBagRepo(pool), nil, nil, logger)
	added, err := itemSvc.BulkAdd(ctx, created.ID, items)
	if err != nil {
		return fmt.Errorf("trip %s saved but items failed: %w", created.ID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSaved trip %s with %d items.\n", created.ID, len(added))
	return nil
}
