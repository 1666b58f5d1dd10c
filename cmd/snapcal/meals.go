package snapcal

import (
	"context"
	"fmt"

	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Manage logged meals",
}

var (
	mealName     string
	mealWeight   float64
	mealCalories float64
	mealProtein  float64
	mealCarbs    float64
	mealFat      float64
	mealDate     string
	deleteDate   string
)

var logMealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log a meal by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mealName == "" {
			return fmt.Errorf("--name is required")
		}
		if mealCalories < 0 || mealProtein < 0 || mealCarbs < 0 || mealFat < 0 {
			return fmt.Errorf("nutrition values must be >= 0")
		}
		var date string
		if mealDate != "" {
			parsed, err := parseDateArg(mealDate)
			if err != nil {
				return err
			}
			date = parsed
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			in := model.MealCreate{
				FoodName:    mealName,
				WeightGrams: mealWeight,
				Calories:    mealCalories,
				Protein:     mealProtein,
				Carbs:       mealCarbs,
				Fat:         mealFat,
				Date:        date,
			}
			if err := rt.tracker.AddMeal(ctx, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%.0f kcal)\n", in.FoodName, in.Calories)
			return nil
		})
	},
}

var logDeleteCmd = &cobra.Command{
	Use:   "delete MEAL_ID",
	Short: "Delete a logged meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var date string
		if deleteDate != "" {
			parsed, err := parseDateArg(deleteDate)
			if err != nil {
				return err
			}
			date = parsed
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := requireCredential(rt); err != nil {
				return err
			}
			if err := rt.tracker.DeleteMeal(ctx, args[0], date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logMealCmd, logDeleteCmd)
	logMealCmd.Flags().StringVar(&mealName, "name", "", "Food name")
	logMealCmd.Flags().Float64Var(&mealWeight, "weight", 0, "Portion weight in grams")
	logMealCmd.Flags().Float64Var(&mealCalories, "calories", 0, "Calories")
	logMealCmd.Flags().Float64Var(&mealProtein, "protein", 0, "Protein in grams")
	logMealCmd.Flags().Float64Var(&mealCarbs, "carbs", 0, "Carbs in grams")
	logMealCmd.Flags().Float64Var(&mealFat, "fat", 0, "Fat in grams")
	logMealCmd.Flags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default today)")
	logDeleteCmd.Flags().StringVar(&deleteDate, "date", "", "Date the meal was logged on (default today)")
}
