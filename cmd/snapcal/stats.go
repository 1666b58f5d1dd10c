package snapcal

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics over your log",
}

var (
	statsStart string
	statsEnd   string
	statsDays  int
	statsLimit int
)

var statsRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Averages and totals over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsStart == "" || statsEnd == "" {
			return fmt.Errorf("--start and --end are required")
		}
		start, err := parseDateArg(statsStart)
		if err != nil {
			return err
		}
		end, err := parseDateArg(statsEnd)
		if err != nil {
			return err
		}
		if start > end {
			return fmt.Errorf("--start must not be after --end")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			stats, err := rt.tracker.RangeStats(ctx, start, end)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Range: %s to %s (%d meals)\n", stats.StartDate, stats.EndDate, stats.TotalMeals)
			fmt.Fprintf(out, "Daily average: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n",
				stats.AverageCalories, stats.AverageProtein, stats.AverageCarbs, stats.AverageFat)
			if len(stats.Days) > 0 {
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tMEALS\tKCAL")
				for _, d := range stats.Days {
					fmt.Fprintf(w, "%s\t%d\t%.0f\n", d.Date, d.MealCount, d.TotalCalories)
				}
				return w.Flush()
			}
			return nil
		})
	},
}

var statsFoodsCmd = &cobra.Command{
	Use:   "foods",
	Short: "Most frequently logged foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsDays <= 0 || statsLimit <= 0 {
			return fmt.Errorf("--days and --limit must be > 0")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			foods, err := rt.tracker.FoodStats(ctx, statsDays, statsLimit)
			if err != nil {
				return err
			}
			if len(foods) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No foods logged")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FOOD\tTIMES\tTOTAL KCAL")
			for _, f := range foods {
				fmt.Fprintf(w, "%s\t%d\t%.0f\n", f.FoodName, f.Count, f.TotalCalories)
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsRangeCmd, statsFoodsCmd)
	statsRangeCmd.Flags().StringVar(&statsStart, "start", "", "Range start YYYY-MM-DD")
	statsRangeCmd.Flags().StringVar(&statsEnd, "end", "", "Range end YYYY-MM-DD")
	statsFoodsCmd.Flags().IntVar(&statsDays, "days", 30, "Window in days")
	statsFoodsCmd.Flags().IntVar(&statsLimit, "limit", 10, "Max foods to list")
}
