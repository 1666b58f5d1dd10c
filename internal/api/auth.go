package api

import (
	"context"

	"github.com/snapcal/snapcal-cli/internal/model"
)

// CreateAnonymous provisions a device-local identity with no credentials
// for recovery. The server still assigns it a durable id.
func (c *Client) CreateAnonymous(ctx context.Context) (model.AuthSession, error) {
	var out model.AuthSession
	if err := c.post(ctx, "/auth/anonymous", "", map[string]any{}, &out); err != nil {
		return model.AuthSession{}, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (model.AuthSession, error) {
	var out model.AuthSession
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", "", body, &out); err != nil {
		return model.AuthSession{}, err
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (model.AuthSession, error) {
	var out model.AuthSession
	body := map[string]string{"email": email, "password": password}
	if name != "" {
		body["name"] = name
	}
	if err := c.post(ctx, "/auth/register", "", body, &out); err != nil {
		return model.AuthSession{}, err
	}
	return out, nil
}

// ConvertAnonymous upgrades the current anonymous identity to a registered
// one. The server keeps the user's row and logged history.
func (c *Client) ConvertAnonymous(ctx context.Context, credential, email, password, name string) (model.AuthSession, error) {
	var out model.AuthSession
	body := map[string]string{"email": email, "password": password}
	if name != "" {
		body["name"] = name
	}
	if err := c.post(ctx, "/auth/convert", credential, body, &out); err != nil {
		return model.AuthSession{}, err
	}
	return out, nil
}

func (c *Client) CurrentUser(ctx context.Context, credential string) (model.User, error) {
	var out model.User
	if err := c.get(ctx, "/auth/me", credential, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// UpdateSettings sends a partial settings object using the server's field
// names and returns the authoritative user.
func (c *Client) UpdateSettings(ctx context.Context, credential string, fields map[string]any) (model.User, error) {
	var out model.User
	if err := c.put(ctx, "/auth/me", credential, fields, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

func (c *Client) Refresh(ctx context.Context, credential string) (model.AuthSession, error) {
	var out model.AuthSession
	if err := c.post(ctx, "/auth/refresh", credential, map[string]any{}, &out); err != nil {
		return model.AuthSession{}, err
	}
	return out, nil
}

// TelegramAuth exchanges a host-signed init-data payload for a session.
func (c *Client) TelegramAuth(ctx context.Context, initData string) (model.AuthSession, error) {
	var out model.AuthSession
	if err := c.post(ctx, "/auth/telegram", "", map[string]string{"init_data": initData}, &out); err != nil {
		return model.AuthSession{}, err
	}
	return out, nil
}

func (c *Client) LinkTelegram(ctx context.Context, credential, initData string) (model.AuthSession, error) {
	var out model.AuthSession
	if err := c.post(ctx, "/auth/telegram/link", credential, map[string]string{"init_data": initData}, &out); err != nil {
		return model.AuthSession{}, err
	}
	return out, nil
}
