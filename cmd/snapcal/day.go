package snapcal

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/snapcal/snapcal-cli/internal/storage"
	"github.com/snapcal/snapcal-cli/internal/tracker"
	"github.com/spf13/cobra"
)

var historyDays int

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's meals, activities, and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			log, err := rt.tracker.TodayLog(ctx)
			if err != nil {
				return err
			}
			activities, err := rt.tracker.TodayActivities(ctx)
			if err != nil {
				return err
			}
			printDailyLog(cmd, log)
			if len(activities) > 0 {
				var burned float64
				for _, a := range activities {
					burned += a.CaloriesBurned
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Burned: %.0f kcal over %d activities\n", burned, len(activities))
			}
			if u := rt.session.User(); u != nil && u.DailyCalorieGoal > 0 {
				remaining := float64(u.DailyCalorieGoal) - log.TotalCalories
				fmt.Fprintf(cmd.OutOrStdout(), "Goal: %d kcal | Remaining: %.0f kcal\n", u.DailyCalorieGoal, remaining)
			}
			return nil
		})
	},
}

var dayCmd = &cobra.Command{
	Use:   "day DATE",
	Short: "Show the meal log for a specific date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateArg(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			log, err := rt.tracker.LogByDate(ctx, date)
			if err != nil {
				return err
			}
			printDailyLog(cmd, log)
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily totals over recent days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDays <= 0 {
			return fmt.Errorf("--days must be > 0")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			// An explicit --days becomes the new default window.
			if !cmd.Flags().Changed("days") {
				if prefs, ok, err := rt.state.LoadPreferences(); err == nil && ok && prefs.HistoryDays > 0 {
					historyDays = prefs.HistoryDays
				}
			}
			days, err := rt.tracker.History(ctx, historyDays)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("days") {
				_ = rt.state.SavePreferences(storage.Preferences{HistoryViewMode: "daily", HistoryDays: historyDays})
			}
			if len(days) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No days logged")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tMEALS\tKCAL\tPROTEIN\tCARBS\tFAT")
			for _, d := range days {
				fmt.Fprintf(w, "%s\t%d\t%.0f\t%.1f\t%.1f\t%.1f\n",
					d.Date, d.MealCount, d.TotalCalories, d.TotalProtein, d.TotalCarbs, d.TotalFat)
			}
			return w.Flush()
		})
	},
}

func printDailyLog(cmd *cobra.Command, log model.DailyLog) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Date: %s\n", log.Date)
	if len(log.Meals) == 0 {
		fmt.Fprintln(out, "No meals logged")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFOOD\tKCAL\tPROTEIN\tCARBS\tFAT")
	for _, m := range log.Meals {
		id := m.ID
		if tracker.IsProvisionalID(id) {
			id = "(pending)"
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n",
			id, m.FoodName, m.Calories, m.Protein, m.Carbs, m.Fat)
	}
	w.Flush()
	fmt.Fprintf(out, "Total: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n",
		log.TotalCalories, log.TotalProtein, log.TotalCarbs, log.TotalFat)
}

func init() {
	rootCmd.AddCommand(todayCmd, dayCmd, historyCmd)
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Number of days to show")
}
