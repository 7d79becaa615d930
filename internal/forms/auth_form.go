package forms

import (
	"strings"

	"subscription_console/internal/dto"
	"subscription_console/internal/validator"
)

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (f LoginForm) Validate(v *validator.Validator) (LoginForm, error) {
	cleaned := LoginForm{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
	}
	if err := v.Validate(cleaned); err != nil {
		return LoginForm{}, validator.ToAppError(err)
	}
	return cleaned, nil
}

// RegisterForm - подтверждение пароля проверяется до отправки
type RegisterForm struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func (f RegisterForm) ToRequest(v *validator.Validator) (dto.RegisterRequest, error) {
	cleaned := f
	cleaned.Email = strings.TrimSpace(f.Email)
	cleaned.Username = Clean(f.Username)
	if err := v.Validate(cleaned); err != nil {
		return dto.RegisterRequest{}, validator.ToAppError(err)
	}
	return dto.RegisterRequest{
		Email:    cleaned.Email,
		Username: cleaned.Username,
		Password: cleaned.Password,
	}, nil
}
