// Package energy holds the calorie arithmetic the client can do without the
// server: MET-based activity burn and Mifflin-St Jeor energy expenditure.
package energy

import (
	"math"

	"github.com/snapcal/snapcal-cli/internal/model"
)

// ActivityCalories estimates calories burned for an activity with the given
// MET value: met * weight(kg) * duration(hours), rounded.
func ActivityCalories(met, weightKg, durationMinutes float64) float64 {
	if met <= 0 || weightKg <= 0 || durationMinutes <= 0 {
		return 0
	}
	return math.Round(met * weightKg * durationMinutes / 60)
}

// BMR computes basal metabolic rate with Mifflin-St Jeor.
func BMR(weightKg, heightCm float64, age int, gender string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == "female" {
		return base - 161
	}
	return base + 5
}

// ActivityFactor maps an activity tier to its TDEE multiplier. Unknown tiers
// fall back to sedentary.
func ActivityFactor(level string) float64 {
	switch level {
	case "light":
		return 1.375
	case "moderate":
		return 1.55
	case "active":
		return 1.725
	case "very_active":
		return 1.9
	default:
		return 1.2
	}
}

// Derive recomputes the user's BMR and TDEE in place when every required
// body metric is known. Users missing a metric are left untouched.
func Derive(u *model.User) {
	if u == nil || u.WeightKg == nil || u.HeightCm == nil || u.Age == nil || u.Gender == nil {
		return
	}
	bmr := BMR(*u.WeightKg, *u.HeightCm, *u.Age, *u.Gender)
	level := ""
	if u.ActivityLevel != nil {
		level = *u.ActivityLevel
	}
	tdee := math.Round(bmr * ActivityFactor(level))
	bmr = math.Round(bmr)
	u.BMR = &bmr
	u.TDEE = &tdee
}
