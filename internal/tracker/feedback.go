package tracker

import (
	"context"
	"time"

	"github.com/snapcal/snapcal-cli/internal/cache"
	"github.com/snapcal/snapcal-cli/internal/model"
)

func (t *Tracker) MyFeedback(ctx context.Context) ([]model.Feedback, error) {
	if _, err := t.credential(); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, t.cache, myFeedbackKey, todayTTL, func(fctx context.Context) ([]model.Feedback, error) {
		return t.api.MyFeedback(fctx, t.session.Credential())
	})
}

// SubmitFeedback prepends a provisional pending entry so the list reflects
// the submission immediately.
func (t *Tracker) SubmitFeedback(ctx context.Context, in model.FeedbackCreate) error {
	if _, err := t.credential(); err != nil {
		return err
	}

	unlock := t.locks.lock(myFeedbackKey)
	defer unlock()
	t.cache.CancelInflight(myFeedbackKey)

	category := in.Category
	if category == "" {
		category = "general"
	}
	var userID string
	if u := t.session.User(); u != nil {
		userID = u.ID
	}
	temp := model.Feedback{
		ID:        t.tempID(),
		UserID:    userID,
		Message:   in.Message,
		Category:  category,
		Status:    "pending",
		CreatedAt: t.clock.Now().UTC().Format(time.RFC3339),
	}
	prev, had := t.cache.Swap(myFeedbackKey, func(old any, ok bool) (any, bool) {
		var entries []model.Feedback
		if ok {
			entries = old.([]model.Feedback)
		}
		next := make([]model.Feedback, 0, len(entries)+1)
		next = append(next, temp)
		next = append(next, entries...)
		return next, true
	})

	defer t.cache.MarkStale(feedbackPrefix)

	if _, err := t.api.SubmitFeedback(ctx, t.session.Credential(), in); err != nil {
		t.rollback(myFeedbackKey, prev, had)
		return err
	}
	return nil
}
