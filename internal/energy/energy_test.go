package energy_test

import (
	"testing"

	"github.com/snapcal/snapcal-cli/internal/energy"
	"github.com/snapcal/snapcal-cli/internal/model"
)

func TestActivityCalories(t *testing.T) {
	t.Parallel()

	// Running at MET 9.8 for 30 minutes at 70kg: 9.8 * 70 * 0.5 = 343.
	if got := energy.ActivityCalories(9.8, 70, 30); got != 343 {
		t.Fatalf("expected 343 kcal, got %.1f", got)
	}
	// Walking at MET 3.5 for 60 minutes at 80kg: 3.5 * 80 = 280.
	if got := energy.ActivityCalories(3.5, 80, 60); got != 280 {
		t.Fatalf("expected 280 kcal, got %.1f", got)
	}
	if got := energy.ActivityCalories(0, 70, 30); got != 0 {
		t.Fatalf("expected 0 for zero MET, got %.1f", got)
	}
	if got := energy.ActivityCalories(9.8, 0, 30); got != 0 {
		t.Fatalf("expected 0 for zero weight, got %.1f", got)
	}
}

func TestBMRMifflinStJeor(t *testing.T) {
	t.Parallel()

	// Male 70kg 175cm 30y: 10*70 + 6.25*175 - 5*30 + 5 = 1648.75.
	if got := energy.BMR(70, 175, 30, "male"); got != 1648.75 {
		t.Fatalf("expected 1648.75, got %.2f", got)
	}
	// Female 60kg 165cm 25y: 10*60 + 6.25*165 - 5*25 - 161 = 1345.25.
	if got := energy.BMR(60, 165, 25, "female"); got != 1345.25 {
		t.Fatalf("expected 1345.25, got %.2f", got)
	}
}

func TestActivityFactor(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"sedentary":   1.2,
		"light":       1.375,
		"moderate":    1.55,
		"active":      1.725,
		"very_active": 1.9,
		"":            1.2,
		"unknown":     1.2,
	}
	for level, want := range cases {
		if got := energy.ActivityFactor(level); got != want {
			t.Fatalf("level %q: expected %.3f, got %.3f", level, want, got)
		}
	}
}

func TestDeriveRequiresAllBodyMetrics(t *testing.T) {
	t.Parallel()

	weight, height, age, gender := 70.0, 175.0, 30, "male"
	u := &model.User{WeightKg: &weight, HeightCm: &height, Gender: &gender}
	energy.Derive(u)
	if u.BMR != nil || u.TDEE != nil {
		t.Fatalf("derive must not run with missing age")
	}

	u.Age = &age
	level := "moderate"
	u.ActivityLevel = &level
	energy.Derive(u)
	if u.BMR == nil || u.TDEE == nil {
		t.Fatalf("derive should set BMR and TDEE")
	}
	if *u.BMR != 1649 {
		t.Fatalf("expected rounded BMR 1649, got %.1f", *u.BMR)
	}
	// 1648.75 * 1.55 = 2555.5625, rounded 2556.
	if *u.TDEE != 2556 {
		t.Fatalf("expected TDEE 2556, got %.1f", *u.TDEE)
	}
}
