package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/snapcal/snapcal-cli/internal/model"
)

func (c *Client) SubmitFeedback(ctx context.Context, credential string, in model.FeedbackCreate) (model.Feedback, error) {
	var out model.Feedback
	if err := c.post(ctx, "/feedback", credential, in, &out); err != nil {
		return model.Feedback{}, err
	}
	return out, nil
}

func (c *Client) MyFeedback(ctx context.Context, credential string) ([]model.Feedback, error) {
	var out []model.Feedback
	if err := c.get(ctx, "/feedback/my", credential, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckAdmin never fails: any error reads as "not an admin".
func (c *Client) CheckAdmin(ctx context.Context, credential string) bool {
	var out struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.get(ctx, "/feedback/admin/check", credential, &out); err != nil {
		return false
	}
	return out.IsAdmin
}

func (c *Client) AllFeedback(ctx context.Context, credential string, page, pageSize int, status string) (model.FeedbackPage, error) {
	var out model.FeedbackPage
	path := fmt.Sprintf("/feedback?page=%d&page_size=%d", page, pageSize)
	if status != "" {
		path += "&status_filter=" + url.QueryEscape(status)
	}
	if err := c.get(ctx, path, credential, &out); err != nil {
		return model.FeedbackPage{}, err
	}
	return out, nil
}

func (c *Client) FeedbackStats(ctx context.Context, credential string) (model.FeedbackStats, error) {
	var out model.FeedbackStats
	if err := c.get(ctx, "/feedback/stats", credential, &out); err != nil {
		return model.FeedbackStats{}, err
	}
	return out, nil
}

type ReplyResult struct {
	Success      bool   `json:"success"`
	TelegramSent bool   `json:"telegram_sent"`
	Message      string `json:"message"`
}

func (c *Client) ReplyFeedback(ctx context.Context, credential, feedbackID, response, status string) (ReplyResult, error) {
	var out ReplyResult
	body := map[string]string{"admin_response": response, "status": status}
	if err := c.post(ctx, "/feedback/"+url.PathEscape(feedbackID)+"/reply-telegram", credential, body, &out); err != nil {
		return ReplyResult{}, err
	}
	return out, nil
}

func (c *Client) SendUserMessage(ctx context.Context, credential, userID, message string) error {
	body := map[string]string{"user_id": userID, "message": message}
	return c.post(ctx, "/feedback/send-message", credential, body, nil)
}

func (c *Client) TelegramUsers(ctx context.Context, credential string) ([]model.FeedbackUser, error) {
	var out []model.FeedbackUser
	if err := c.get(ctx, "/feedback/admin/users", credential, &out); err != nil {
		return nil, err
	}
	return out, nil
}
