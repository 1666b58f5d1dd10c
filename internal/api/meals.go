package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/snapcal/snapcal-cli/internal/model"
)

func (c *Client) AddMeal(ctx context.Context, credential string, in model.MealCreate) (model.MealEntry, error) {
	var out model.MealEntry
	if err := c.post(ctx, "/meals", credential, in, &out); err != nil {
		return model.MealEntry{}, err
	}
	return out, nil
}

func (c *Client) DeleteMeal(ctx context.Context, credential, mealID string) error {
	return c.delete(ctx, "/meals/"+url.PathEscape(mealID), credential)
}

func (c *Client) TodayLog(ctx context.Context, credential string) (model.DailyLog, error) {
	var out model.DailyLog
	if err := c.get(ctx, "/meals/today", credential, &out); err != nil {
		return model.DailyLog{}, err
	}
	return out, nil
}

func (c *Client) LogByDate(ctx context.Context, credential, date string) (model.DailyLog, error) {
	var out model.DailyLog
	if err := c.get(ctx, "/meals/date/"+url.PathEscape(date), credential, &out); err != nil {
		return model.DailyLog{}, err
	}
	return out, nil
}

func (c *Client) History(ctx context.Context, credential string, days int) ([]model.DailySummary, error) {
	var out []model.DailySummary
	if err := c.get(ctx, fmt.Sprintf("/meals/history?days=%d", days), credential, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RangeStats(ctx context.Context, credential, startDate, endDate string) (model.DateRangeStats, error) {
	var out model.DateRangeStats
	path := fmt.Sprintf("/meals/stats/range?start_date=%s&end_date=%s",
		url.QueryEscape(startDate), url.QueryEscape(endDate))
	if err := c.get(ctx, path, credential, &out); err != nil {
		return model.DateRangeStats{}, err
	}
	return out, nil
}

func (c *Client) FoodStats(ctx context.Context, credential string, days, limit int) ([]model.FoodStat, error) {
	var out []model.FoodStat
	if err := c.get(ctx, fmt.Sprintf("/meals/stats/foods?days=%d&limit=%d", days, limit), credential, &out); err != nil {
		return nil, err
	}
	return out, nil
}
