package api

import (
	"context"
	"net/url"

	"github.com/snapcal/snapcal-cli/internal/model"
)

// ActivityCatalog lists the known activities and their MET values. Public,
// no credential required.
func (c *Client) ActivityCatalog(ctx context.Context) (model.ActivityCatalog, error) {
	var out model.ActivityCatalog
	if err := c.get(ctx, "/activities/catalog", "", &out); err != nil {
		return model.ActivityCatalog{}, err
	}
	return out, nil
}

func (c *Client) AddActivity(ctx context.Context, credential string, in model.ActivityCreate) (model.ActivityEntry, error) {
	var out model.ActivityEntry
	if err := c.post(ctx, "/activities", credential, in, &out); err != nil {
		return model.ActivityEntry{}, err
	}
	return out, nil
}

func (c *Client) AddCustomActivity(ctx context.Context, credential string, in model.CustomActivityCreate) (model.ActivityEntry, error) {
	var out model.ActivityEntry
	if err := c.post(ctx, "/activities/custom", credential, in, &out); err != nil {
		return model.ActivityEntry{}, err
	}
	return out, nil
}

func (c *Client) DeleteActivity(ctx context.Context, credential, activityID string) error {
	return c.delete(ctx, "/activities/"+url.PathEscape(activityID), credential)
}

func (c *Client) TodayActivities(ctx context.Context, credential string) ([]model.ActivityEntry, error) {
	var out []model.ActivityEntry
	if err := c.get(ctx, "/activities/today", credential, &out); err != nil {
		return nil, err
	}
	return out, nil
}
