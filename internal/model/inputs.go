package model

// Create-request bodies, field names matching the backend contract.

type MealCreate struct {
	FoodName     string  `json:"food_name"`
	WeightGrams  float64 `json:"weight_grams"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	ImagePreview string  `json:"image_preview,omitempty"`
	Date         string  `json:"date,omitempty"`
}

type ActivityCreate struct {
	ActivityID      string   `json:"activity_id"`
	DurationMinutes float64  `json:"duration_minutes"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	Date            string   `json:"date,omitempty"`
}

type CustomActivityCreate struct {
	Name            string  `json:"name"`
	CaloriesBurned  float64 `json:"calories_burned"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
	Date            string  `json:"date,omitempty"`
}

type FeedbackCreate struct {
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
	Rating   *int   `json:"rating,omitempty"`
}

// ProfileUpdate is the client-shaped partial settings object. Nil fields are
// left untouched; the session store translates set fields into the backend's
// names before sending.
type ProfileUpdate struct {
	Name             *string
	DailyCalorieGoal *int
	DailyProteinGoal *float64
	DailyCarbsGoal   *float64
	DailyFatGoal     *float64
	WeightKg         *float64
	HeightCm         *float64
	Age              *int
	Gender           *string
	ActivityLevel    *string
}

// BackendFields maps set fields to the server's field names.
func (p ProfileUpdate) BackendFields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.DailyCalorieGoal != nil {
		fields["daily_calorie_goal"] = *p.DailyCalorieGoal
	}
	if p.DailyProteinGoal != nil {
		fields["daily_protein_goal"] = *p.DailyProteinGoal
	}
	if p.DailyCarbsGoal != nil {
		fields["daily_carbs_goal"] = *p.DailyCarbsGoal
	}
	if p.DailyFatGoal != nil {
		fields["daily_fat_goal"] = *p.DailyFatGoal
	}
	if p.WeightKg != nil {
		fields["weight_kg"] = *p.WeightKg
	}
	if p.HeightCm != nil {
		fields["height_cm"] = *p.HeightCm
	}
	if p.Age != nil {
		fields["age"] = *p.Age
	}
	if p.Gender != nil {
		fields["gender"] = *p.Gender
	}
	if p.ActivityLevel != nil {
		fields["activity_level"] = *p.ActivityLevel
	}
	return fields
}

// ApplyTo applies the set fields to a copy of u and returns it.
func (p ProfileUpdate) ApplyTo(u *User) *User {
	out := u.Clone()
	if out == nil {
		return nil
	}
	if p.Name != nil {
		out.Name = clonePtr(p.Name)
	}
	if p.DailyCalorieGoal != nil {
		out.DailyCalorieGoal = *p.DailyCalorieGoal
	}
	if p.DailyProteinGoal != nil {
		out.DailyProteinGoal = *p.DailyProteinGoal
	}
	if p.DailyCarbsGoal != nil {
		out.DailyCarbsGoal = *p.DailyCarbsGoal
	}
	if p.DailyFatGoal != nil {
		out.DailyFatGoal = *p.DailyFatGoal
	}
	if p.WeightKg != nil {
		out.WeightKg = clonePtr(p.WeightKg)
	}
	if p.HeightCm != nil {
		out.HeightCm = clonePtr(p.HeightCm)
	}
	if p.Age != nil {
		out.Age = clonePtr(p.Age)
	}
	if p.Gender != nil {
		out.Gender = clonePtr(p.Gender)
	}
	if p.ActivityLevel != nil {
		out.ActivityLevel = clonePtr(p.ActivityLevel)
	}
	return out
}
