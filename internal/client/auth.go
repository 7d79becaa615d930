package client

import (
	"context"
	"net/http"
	"net/url"

	"subscription_console/internal/dto"
)

// Login - POST /api/auth/login (form-encoded email/password)
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, request{
		op:          "login",
		method:      http.MethodPost,
		path:        "/api/auth/login",
		form:        url.Values{"email": {email}, "password": {password}},
		credentials: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register - POST /api/auth/register. Роль не отправляется: её назначает сервер.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := c.do(ctx, request{
		op:     "registration",
		method: http.MethodPost,
		path:   "/api/auth/register",
		form: url.Values{
			"email":    {req.Email},
			"username": {req.Username},
			"password": {req.Password},
		},
		credentials: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
