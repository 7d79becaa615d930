package dto

import "subscription_console/internal/models"

// LoginResponse - ответ /api/auth/login и /api/auth/register
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

// RegisterRequest - поля формы регистрации, уходящие на сервер.
// Роль не передаётся: её назначает сервер.
type RegisterRequest struct {
	Email    string
	Username string
	Password string
}
