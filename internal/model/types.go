package model

// User is the authenticated principal as the backend reports it. Exactly one
// user type is set at a time; anonymous users still carry a server-assigned id.
type User struct {
	ID               string   `json:"id"`
	UserType         string   `json:"user_type"`
	Email            *string  `json:"email"`
	Name             *string  `json:"name"`
	TelegramID       *string  `json:"telegram_id,omitempty"`
	TelegramUsername *string  `json:"telegram_username,omitempty"`
	DailyCalorieGoal int      `json:"daily_calorie_goal"`
	DailyProteinGoal float64  `json:"daily_protein_goal"`
	DailyCarbsGoal   float64  `json:"daily_carbs_goal"`
	DailyFatGoal     float64  `json:"daily_fat_goal"`
	WeightKg         *float64 `json:"weight_kg,omitempty"`
	HeightCm         *float64 `json:"height_cm,omitempty"`
	Age              *int     `json:"age,omitempty"`
	Gender           *string  `json:"gender,omitempty"`
	ActivityLevel    *string  `json:"activity_level,omitempty"`
	BMR              *float64 `json:"bmr,omitempty"`
	TDEE             *float64 `json:"tdee,omitempty"`
	IsActive         bool     `json:"is_active"`
	CreatedAt        string   `json:"created_at"`
}

const (
	UserTypeAnonymous  = "anonymous"
	UserTypeRegistered = "registered"
	UserTypeTelegram   = "telegram"
)

// Registered reports whether the user has recoverable credentials.
func (u *User) Registered() bool {
	return u != nil && (u.UserType == UserTypeRegistered || u.UserType == UserTypeTelegram)
}

// Clone returns a deep copy so optimistic edits never alias shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Email = clonePtr(u.Email)
	out.Name = clonePtr(u.Name)
	out.TelegramID = clonePtr(u.TelegramID)
	out.TelegramUsername = clonePtr(u.TelegramUsername)
	out.WeightKg = clonePtr(u.WeightKg)
	out.HeightCm = clonePtr(u.HeightCm)
	out.Age = clonePtr(u.Age)
	out.Gender = clonePtr(u.Gender)
	out.ActivityLevel = clonePtr(u.ActivityLevel)
	out.BMR = clonePtr(u.BMR)
	out.TDEE = clonePtr(u.TDEE)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// AuthSession is the credential+user pair returned by every auth endpoint.
type AuthSession struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type MealEntry struct {
	ID           string  `json:"id"`
	FoodName     string  `json:"food_name"`
	WeightGrams  float64 `json:"weight_grams"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	ImagePreview string  `json:"image_preview,omitempty"`
	Timestamp    string  `json:"timestamp"`
	Date         string  `json:"date"`
}

// DailyLog is one calendar date's rollup. The totals must always equal the
// sum over Meals; the optimistic layer preserves that through every edit.
type DailyLog struct {
	Date          string      `json:"date"`
	Meals         []MealEntry `json:"meals"`
	TotalCalories float64     `json:"total_calories"`
	TotalProtein  float64     `json:"total_protein"`
	TotalCarbs    float64     `json:"total_carbs"`
	TotalFat      float64     `json:"total_fat"`
}

// Clone deep-copies the log including its meal slice.
func (d DailyLog) Clone() DailyLog {
	out := d
	out.Meals = make([]MealEntry, len(d.Meals))
	copy(out.Meals, d.Meals)
	return out
}

type DailySummary struct {
	Date          string  `json:"date"`
	MealCount     int     `json:"meal_count"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFat      float64 `json:"total_fat"`
}

type DateRangeStats struct {
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	Days            []DailySummary `json:"days"`
	AverageCalories float64        `json:"average_calories"`
	AverageProtein  float64        `json:"average_protein"`
	AverageCarbs    float64        `json:"average_carbs"`
	AverageFat      float64        `json:"average_fat"`
	TotalMeals      int            `json:"total_meals"`
}

type FoodStat struct {
	FoodName      string  `json:"food_name"`
	Count         int     `json:"count"`
	TotalCalories float64 `json:"total_calories"`
}

type ActivityEntry struct {
	ID              string   `json:"id"`
	ActivityID      string   `json:"activity_id,omitempty"`
	Name            string   `json:"name"`
	DurationMinutes float64  `json:"duration_minutes"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	CaloriesBurned  float64  `json:"calories_burned"`
	IsCustom        bool     `json:"is_custom"`
	Timestamp       string   `json:"timestamp"`
	Date            string   `json:"date"`
}

type CatalogActivity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	MET      float64 `json:"met"`
	Category string  `json:"category"`
}

type ActivityCatalog struct {
	Activities []CatalogActivity `json:"activities"`
}

type Feedback struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	Subject       string  `json:"subject"`
	Message       string  `json:"message"`
	Rating        *int    `json:"rating"`
	Category      string  `json:"category"`
	AdminResponse *string `json:"admin_response"`
	RespondedAt   *string `json:"responded_at"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

type FeedbackUser struct {
	ID               string  `json:"id"`
	Name             *string `json:"name"`
	TelegramUsername *string `json:"telegram_username"`
	UserType         string  `json:"user_type"`
}

type FeedbackDetail struct {
	Feedback
	User      *FeedbackUser `json:"user,omitempty"`
	Responder *FeedbackUser `json:"responder,omitempty"`
}

type FeedbackPage struct {
	Feedbacks  []FeedbackDetail `json:"feedbacks"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

type FeedbackStats struct {
	Total         int      `json:"total"`
	Pending       int      `json:"pending"`
	InReview      int      `json:"in_review"`
	Responded     int      `json:"responded"`
	Closed        int      `json:"closed"`
	AverageRating *float64 `json:"average_rating"`
}

type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// AnalysisResult is what the AI vision endpoint returns for one image.
type AnalysisResult struct {
	Food                 string     `json:"food"`
	Confidence           float64    `json:"confidence"`
	Ingredients          []string   `json:"ingredients"`
	EstimatedWeightGrams *float64   `json:"estimated_weight_grams"`
	NutritionPer100g     Nutrition  `json:"nutrition_per_100g"`
	TotalNutrition       *Nutrition `json:"total_nutrition"`
	Note                 string     `json:"note"`
	RequestID            string     `json:"-"`
}

type HealthStatus struct {
	Status string `json:"status"`
}
