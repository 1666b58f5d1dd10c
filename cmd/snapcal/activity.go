package snapcal

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/snapcal/snapcal-cli/internal/energy"
	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/snapcal/snapcal-cli/internal/tracker"
	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Track burned calories",
}

var (
	activityDuration float64
	activityDistance float64
	activityDate     string
	activityName     string
	activityBurned   float64
)

var activityAddCmd = &cobra.Command{
	Use:   "add ACTIVITY_ID",
	Short: "Log an activity from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if activityDuration <= 0 {
			return fmt.Errorf("--minutes must be > 0")
		}
		var date string
		if activityDate != "" {
			parsed, err := parseDateArg(activityDate)
			if err != nil {
				return err
			}
			date = parsed
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			in := model.ActivityCreate{
				ActivityID:      args[0],
				DurationMinutes: activityDuration,
				Date:            date,
			}
			if activityDistance > 0 {
				in.DistanceKm = &activityDistance
			}
			if err := rt.tracker.AddActivity(ctx, in); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged activity %s (%.0f min)\n", args[0], activityDuration)
			// Estimate locally when the profile has a weight; the server
			// figure lands on the next refetch.
			if u := rt.session.User(); u != nil && u.WeightKg != nil {
				if catalog, err := rt.tracker.ActivityCatalog(ctx); err == nil {
					for _, a := range catalog.Activities {
						if a.ID == args[0] {
							est := energy.ActivityCalories(a.MET, *u.WeightKg, activityDuration)
							fmt.Fprintf(out, "Estimated burn: %.0f kcal\n", est)
							break
						}
					}
				}
			}
			return nil
		})
	},
}

var activityCustomCmd = &cobra.Command{
	Use:   "custom NAME",
	Short: "Log a custom activity with a known calorie burn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if activityBurned <= 0 {
			return fmt.Errorf("--calories must be > 0")
		}
		var date string
		if activityDate != "" {
			parsed, err := parseDateArg(activityDate)
			if err != nil {
				return err
			}
			date = parsed
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			in := model.CustomActivityCreate{
				Name:            args[0],
				CaloriesBurned:  activityBurned,
				DurationMinutes: activityDuration,
				Date:            date,
			}
			if err := rt.tracker.AddCustomActivity(ctx, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%.0f kcal)\n", in.Name, in.CaloriesBurned)
			return nil
		})
	},
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show today's activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			activities, err := rt.tracker.TodayActivities(ctx)
			if err != nil {
				return err
			}
			if len(activities) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No activities logged today")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tACTIVITY\tMINUTES\tKCAL")
			var total float64
			for _, a := range activities {
				id := a.ID
				if tracker.IsProvisionalID(id) {
					id = "(pending)"
				}
				fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f\n", id, a.Name, a.DurationMinutes, a.CaloriesBurned)
				total += a.CaloriesBurned
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total burned: %.0f kcal\n", total)
			return nil
		})
	},
}

var activityDeleteCmd = &cobra.Command{
	Use:   "delete ACTIVITY_ID",
	Short: "Delete a logged activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			if err := rt.tracker.DeleteActivity(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted activity %s\n", args[0])
			return nil
		})
	},
}

var activityCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List known activities and their MET values",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			catalog, err := rt.tracker.ActivityCatalog(ctx)
			if err != nil {
				return err
			}
			if len(catalog.Activities) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMET\tCATEGORY")
			for _, a := range catalog.Activities {
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\n", a.ID, a.Name, a.MET, a.Category)
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.AddCommand(activityAddCmd, activityCustomCmd, activityListCmd, activityDeleteCmd, activityCatalogCmd)
	activityAddCmd.Flags().Float64Var(&activityDuration, "minutes", 0, "Duration in minutes")
	activityAddCmd.Flags().Float64Var(&activityDistance, "distance", 0, "Distance in km (optional)")
	activityAddCmd.Flags().StringVar(&activityDate, "date", "", "Date YYYY-MM-DD (default today)")
	activityCustomCmd.Flags().Float64Var(&activityBurned, "calories", 0, "Calories burned")
	activityCustomCmd.Flags().Float64Var(&activityDuration, "minutes", 0, "Duration in minutes (optional)")
	activityCustomCmd.Flags().StringVar(&activityDate, "date", "", "Date YYYY-MM-DD (default today)")
}
