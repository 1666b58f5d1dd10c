package tracker

import (
	"context"
	"time"

	"github.com/snapcal/snapcal-cli/internal/cache"
	"github.com/snapcal/snapcal-cli/internal/model"
)

// TodayLog returns today's day aggregate, refetching when stale.
func (t *Tracker) TodayLog(ctx context.Context) (model.DailyLog, error) {
	if _, err := t.credential(); err != nil {
		return model.DailyLog{}, err
	}
	return cache.Fetch(ctx, t.cache, todayLogKey, todayTTL, func(fctx context.Context) (model.DailyLog, error) {
		return t.api.TodayLog(fctx, t.session.Credential())
	})
}

func (t *Tracker) LogByDate(ctx context.Context, date string) (model.DailyLog, error) {
	if _, err := t.credential(); err != nil {
		return model.DailyLog{}, err
	}
	return cache.Fetch(ctx, t.cache, dayLogKey(date), dayTTL, func(fctx context.Context) (model.DailyLog, error) {
		return t.api.LogByDate(fctx, t.session.Credential(), date)
	})
}

func (t *Tracker) History(ctx context.Context, days int) ([]model.DailySummary, error) {
	if _, err := t.credential(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, t.cache, historyKey(days), historyTTL, func(fctx context.Context) ([]model.DailySummary, error) {
		return t.api.History(fctx, t.session.Credential(), days)
	})
}

func (t *Tracker) RangeStats(ctx context.Context, startDate, endDate string) (model.DateRangeStats, error) {
	if _, err := t.credential(); err != nil {
		return model.DateRangeStats{}, err
	}
	return cache.Fetch(ctx, t.cache, rangeStatsKey(startDate, endDate), statsTTL, func(fctx context.Context) (model.DateRangeStats, error) {
		return t.api.RangeStats(fctx, t.session.Credential(), startDate, endDate)
	})
}

func (t *Tracker) FoodStats(ctx context.Context, days, limit int) ([]model.FoodStat, error) {
	if _, err := t.credential(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, t.cache, foodStatsKey(days, limit), statsTTL, func(fctx context.Context) ([]model.FoodStat, error) {
		return t.api.FoodStats(fctx, t.session.Credential(), days, limit)
	})
}

// mealLogKey picks the day aggregate a meal mutation edits.
func (t *Tracker) mealLogKey(date string) cache.Key {
	if date == "" || date == t.today() {
		return todayLogKey
	}
	return dayLogKey(date)
}

// AddMeal logs a meal with an immediate local edit: a provisional entry is
// appended and the day totals are bumped by its contribution before the
// request fires. On failure the pre-mutation snapshot is restored; either
// way every meal-derived view is marked stale on settle.
func (t *Tracker) AddMeal(ctx context.Context, in model.MealCreate) error {
	if _, err := t.credential(); err != nil {
		return err
	}

	key := t.mealLogKey(in.Date)
	unlock := t.locks.lock(key)
	defer unlock()
	t.cache.CancelInflight(key)

	date := in.Date
	if date == "" {
		date = t.today()
	}
	temp := model.MealEntry{
		ID:           t.tempID(),
		FoodName:     in.FoodName,
		WeightGrams:  in.WeightGrams,
		Calories:     in.Calories,
		Protein:      in.Protein,
		Carbs:        in.Carbs,
		Fat:          in.Fat,
		ImagePreview: in.ImagePreview,
		Timestamp:    t.clock.Now().UTC().Format(time.RFC3339),
		Date:         date,
	}

	prev, had := t.cache.Swap(key, func(old any, ok bool) (any, bool) {
		log := model.DailyLog{Date: date}
		if ok {
			log = old.(model.DailyLog).Clone()
		}
		log.Meals = append(log.Meals, temp)
		log.TotalCalories += temp.Calories
		log.TotalProtein += temp.Protein
		log.TotalCarbs += temp.Carbs
		log.TotalFat += temp.Fat
		return log, true
	})

	defer t.cache.MarkStale(mealsPrefix)

	if _, err := t.api.AddMeal(ctx, t.session.Credential(), in); err != nil {
		t.rollback(key, prev, had)
		return err
	}
	return nil
}

// DeleteMeal removes a meal from the day's aggregate. A delete whose id is
// not in the cached list leaves the cache untouched but still fires, since
// the server may know the record.
func (t *Tracker) DeleteMeal(ctx context.Context, mealID, date string) error {
	if _, err := t.credential(); err != nil {
		return err
	}

	key := t.mealLogKey(date)
	unlock := t.locks.lock(key)
	defer unlock()
	t.cache.CancelInflight(key)

	prev, had := t.cache.Swap(key, func(old any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		log := old.(model.DailyLog)
		idx := -1
		for i, meal := range log.Meals {
			if meal.ID == mealID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		next := log.Clone()
		removed := next.Meals[idx]
		next.Meals = append(next.Meals[:idx], next.Meals[idx+1:]...)
		next.TotalCalories -= removed.Calories
		next.TotalProtein -= removed.Protein
		next.TotalCarbs -= removed.Carbs
		next.TotalFat -= removed.Fat
		return next, true
	})

	defer t.cache.MarkStale(mealsPrefix)

	if err := t.api.DeleteMeal(ctx, t.session.Credential(), mealID); err != nil {
		t.rollback(key, prev, had)
		return err
	}
	return nil
}
