package tracker

import (
	"context"
	"time"

	"github.com/snapcal/snapcal-cli/internal/cache"
	"github.com/snapcal/snapcal-cli/internal/model"
)

func (t *Tracker) TodayActivities(ctx context.Context) ([]model.ActivityEntry, error) {
	if _, err := t.credential(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, t.cache, todayActivitiesKey, dayTTL, func(fctx context.Context) ([]model.ActivityEntry, error) {
		return t.api.TodayActivities(fctx, t.session.Credential())
	})
}

// ActivityCatalog is public and changes rarely.
func (t *Tracker) ActivityCatalog(ctx context.Context) (model.ActivityCatalog, error) {
	return cache.Fetch(ctx, t.cache, catalogKey, statsTTL, func(fctx context.Context) (model.ActivityCatalog, error) {
		return t.api.ActivityCatalog(fctx)
	})
}

// settleActivities marks activity views stale and, because burned calories
// feed the day aggregates, the meal-derived views too.
func (t *Tracker) settleActivities() {
	t.cache.MarkStale(activitiesPrefix)
	t.cache.MarkStale(mealsPrefix)
}

func (t *Tracker) addActivityOptimistic(temp model.ActivityEntry) (any, bool) {
	return t.cache.Swap(todayActivitiesKey, func(old any, ok bool) (any, bool) {
		var entries []model.ActivityEntry
		if ok {
			prev := old.([]model.ActivityEntry)
			entries = make([]model.ActivityEntry, len(prev), len(prev)+1)
			copy(entries, prev)
		}
		return append(entries, temp), true
	})
}

// AddActivity logs a catalog activity. The provisional entry carries zero
// burned calories; the server computes the real figure and the settle
// refetch picks it up.
func (t *Tracker) AddActivity(ctx context.Context, in model.ActivityCreate) error {
	if _, err := t.credential(); err != nil {
		return err
	}

	unlock := t.locks.lock(todayActivitiesKey)
	defer unlock()
	t.cache.CancelInflight(todayActivitiesKey)

	date := in.Date
	if date == "" {
		date = t.today()
	}
	temp := model.ActivityEntry{
		ID:              t.tempID(),
		ActivityID:      in.ActivityID,
		DurationMinutes: in.DurationMinutes,
		DistanceKm:      in.DistanceKm,
		Timestamp:       t.clock.Now().UTC().Format(time.RFC3339),
		Date:            date,
	}
	prev, had := t.addActivityOptimistic(temp)

	defer t.settleActivities()

	if _, err := t.api.AddActivity(ctx, t.session.Credential(), in); err != nil {
		t.rollback(todayActivitiesKey, prev, had)
		return err
	}
	return nil
}

func (t *Tracker) AddCustomActivity(ctx context.Context, in model.CustomActivityCreate) error {
	if _, err := t.credential(); err != nil {
		return err
	}

	unlock := t.locks.lock(todayActivitiesKey)
	defer unlock()
	t.cache.CancelInflight(todayActivitiesKey)

	date := in.Date
	if date == "" {
		date = t.today()
	}
	temp := model.ActivityEntry{
		ID:              t.tempID(),
		Name:            in.Name,
		CaloriesBurned:  in.CaloriesBurned,
		DurationMinutes: in.DurationMinutes,
		IsCustom:        true,
		Timestamp:       t.clock.Now().UTC().Format(time.RFC3339),
		Date:            date,
	}
	prev, had := t.addActivityOptimistic(temp)

	defer t.settleActivities()

	if _, err := t.api.AddCustomActivity(ctx, t.session.Credential(), in); err != nil {
		t.rollback(todayActivitiesKey, prev, had)
		return err
	}
	return nil
}

func (t *Tracker) DeleteActivity(ctx context.Context, activityID string) error {
	if _, err := t.credential(); err != nil {
		return err
	}

	unlock := t.locks.lock(todayActivitiesKey)
	defer unlock()
	t.cache.CancelInflight(todayActivitiesKey)

	prev, had := t.cache.Swap(todayActivitiesKey, func(old any, ok bool) (any, bool) {
		if !ok {
			return nil, false
		}
		entries := old.([]model.ActivityEntry)
		next := make([]model.ActivityEntry, 0, len(entries))
		found := false
		for _, e := range entries {
			if e.ID == activityID {
				found = true
				continue
			}
			next = append(next, e)
		}
		if !found {
			return nil, false
		}
		return next, true
	})

	defer t.settleActivities()

	if err := t.api.DeleteActivity(ctx, t.session.Credential(), activityID); err != nil {
		t.rollback(todayActivitiesKey, prev, had)
		return err
	}
	return nil
}
