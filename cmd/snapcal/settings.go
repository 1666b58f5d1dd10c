package snapcal

import (
	"context"
	"fmt"

	"github.com/snapcal/snapcal-cli/internal/model"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage profile and goals",
}

var (
	setName     string
	setCalories int
	setProtein  float64
	setCarbs    float64
	setFat      float64
	setWeight   float64
	setHeight   float64
	setAge      int
	setGender   string
	setActivity string
)

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields and daily goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		var update model.ProfileUpdate
		changed := 0
		if cmd.Flags().Changed("name") {
			update.Name = &setName
			changed++
		}
		if cmd.Flags().Changed("calorie-goal") {
			if setCalories <= 0 {
				return fmt.Errorf("--calorie-goal must be > 0")
			}
			update.DailyCalorieGoal = &setCalories
			changed++
		}
		if cmd.Flags().Changed("protein-goal") {
			update.DailyProteinGoal = &setProtein
			changed++
		}
		if cmd.Flags().Changed("carbs-goal") {
			update.DailyCarbsGoal = &setCarbs
			changed++
		}
		if cmd.Flags().Changed("fat-goal") {
			update.DailyFatGoal = &setFat
			changed++
		}
		if cmd.Flags().Changed("weight") {
			if setWeight <= 0 {
				return fmt.Errorf("--weight must be > 0")
			}
			update.WeightKg = &setWeight
			changed++
		}
		if cmd.Flags().Changed("height") {
			if setHeight <= 0 {
				return fmt.Errorf("--height must be > 0")
			}
			update.HeightCm = &setHeight
			changed++
		}
		if cmd.Flags().Changed("age") {
			if setAge <= 0 {
				return fmt.Errorf("--age must be > 0")
			}
			update.Age = &setAge
			changed++
		}
		if cmd.Flags().Changed("gender") {
			update.Gender = &setGender
			changed++
		}
		if cmd.Flags().Changed("activity-level") {
			switch setActivity {
			case "sedentary", "light", "moderate", "active", "very_active":
			default:
				return fmt.Errorf("invalid --activity-level %q", setActivity)
			}
			update.ActivityLevel = &setActivity
			changed++
		}
		if changed == 0 {
			return fmt.Errorf("set at least one flag")
		}
		return withApp(func(ctx context.Context, rt *clientApp) error {
			if err := ensureUser(ctx, rt); err != nil {
				return err
			}
			if err := rt.session.UpdateProfile(ctx, update); err != nil {
				return err
			}
			u := rt.session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d field(s)\n", changed)
			if u.BMR != nil && u.TDEE != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "BMR: %.0f kcal | TDEE: %.0f kcal\n", *u.BMR, *u.TDEE)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsSetCmd.Flags().StringVar(&setName, "name", "", "Display name")
	settingsSetCmd.Flags().IntVar(&setCalories, "calorie-goal", 0, "Daily calorie goal")
	settingsSetCmd.Flags().Float64Var(&setProtein, "protein-goal", 0, "Daily protein goal in grams")
	settingsSetCmd.Flags().Float64Var(&setCarbs, "carbs-goal", 0, "Daily carbs goal in grams")
	settingsSetCmd.Flags().Float64Var(&setFat, "fat-goal", 0, "Daily fat goal in grams")
	settingsSetCmd.Flags().Float64Var(&setWeight, "weight", 0, "Body weight in kg")
	settingsSetCmd.Flags().Float64Var(&setHeight, "height", 0, "Height in cm")
	settingsSetCmd.Flags().IntVar(&setAge, "age", 0, "Age in years")
	settingsSetCmd.Flags().StringVar(&setGender, "gender", "", "Gender: male or female")
	settingsSetCmd.Flags().StringVar(&setActivity, "activity-level", "", "Activity level: sedentary, light, moderate, active, very_active")
}
