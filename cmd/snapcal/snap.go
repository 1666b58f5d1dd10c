package snapcal

import (
	"context"
	"fmt"
	"strings"

	"github.com/snapcal/snapcal-cli/internal/imageutil"
	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/spf13/cobra"
)

var (
	snapPrompt string
	snapLog    bool
	snapWeight float64
)

var snapCmd = &cobra.Command{
	Use:   "snap IMAGE",
	Short: "Analyze a meal photo and optionally log it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			result, err := analyzeImage(ctx, rt, args[0])
			if err != nil {
				return err
			}
			printAnalysis(cmd, result)
			if !snapLog {
				return nil
			}
			in, err := mealFromAnalysis(result, snapWeight)
			if err != nil {
				return err
			}
			if err := rt.tracker.AddMeal(ctx, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s (%.0f kcal)\n", in.FoodName, in.Calories)
			return nil
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze IMAGE",
	Short: "Analyze a meal photo without logging it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			result, err := analyzeImage(ctx, rt, args[0])
			if err != nil {
				return err
			}
			printAnalysis(cmd, result)
			return nil
		})
	},
}

func analyzeImage(ctx context.Context, rt *clientApp, path string) (model.AnalysisResult, error) {
	prepared, err := imageutil.PrepareFile(path, imageutil.DefaultMaxWidth, imageutil.DefaultQuality)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("prepare image: %w", err)
	}
	return rt.api.Analyze(ctx, rt.session.Credential(), prepared.Name, prepared.Data, snapPrompt)
}

func printAnalysis(cmd *cobra.Command, r model.AnalysisResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Food: %s (confidence %.0f%%)\n", r.Food, r.Confidence*100)
	if len(r.Ingredients) > 0 {
		fmt.Fprintf(out, "Ingredients: %s\n", strings.Join(r.Ingredients, ", "))
	}
	if r.EstimatedWeightGrams != nil {
		fmt.Fprintf(out, "Estimated weight: %.0fg\n", *r.EstimatedWeightGrams)
	}
	fmt.Fprintf(out, "Per 100g: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n",
		r.NutritionPer100g.Calories, r.NutritionPer100g.Protein, r.NutritionPer100g.Carbs, r.NutritionPer100g.Fat)
	if t := r.TotalNutrition; t != nil {
		fmt.Fprintf(out, "Total: %.0f kcal | P %.1fg | C %.1fg | F %.1fg\n",
			t.Calories, t.Protein, t.Carbs, t.Fat)
	}
	if r.Note != "" {
		fmt.Fprintf(out, "Note: %s\n", r.Note)
	}
}

// mealFromAnalysis turns an analysis into a loggable meal, preferring the
// server's total nutrition and falling back to per-100g scaling.
func mealFromAnalysis(r model.AnalysisResult, weightOverride float64) (model.MealCreate, error) {
	weight := weightOverride
	if weight <= 0 {
		if r.EstimatedWeightGrams != nil {
			weight = *r.EstimatedWeightGrams
		} else {
			weight = 100
		}
	}
	in := model.MealCreate{
		FoodName:    r.Food,
		WeightGrams: weight,
	}
	if t := r.TotalNutrition; t != nil && weightOverride <= 0 {
		in.Calories = t.Calories
		in.Protein = t.Protein
		in.Carbs = t.Carbs
		in.Fat = t.Fat
	} else {
		scale := weight / 100
		in.Calories = r.NutritionPer100g.Calories * scale
		in.Protein = r.NutritionPer100g.Protein * scale
		in.Carbs = r.NutritionPer100g.Carbs * scale
		in.Fat = r.NutritionPer100g.Fat * scale
	}
	if in.FoodName == "" {
		return model.MealCreate{}, fmt.Errorf("analysis did not identify a food")
	}
	return in, nil
}

func init() {
	rootCmd.AddCommand(snapCmd, analyzeCmd)
	snapCmd.Flags().StringVar(&snapPrompt, "prompt", "", "Extra hint for the analyzer")
	snapCmd.Flags().BoolVar(&snapLog, "log", false, "Log the analyzed meal to today")
	snapCmd.Flags().Float64Var(&snapWeight, "weight", 0, "Override portion weight in grams")
	analyzeCmd.Flags().StringVar(&snapPrompt, "prompt", "", "Extra hint for the analyzer")
}
