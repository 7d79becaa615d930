package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscription_console/pkg/apperrors"
)

type sample struct {
	Type     string `json:"type" validate:"required,is-plan-type"`
	Duration string `json:"duration" validate:"omitempty,is-plan-duration"`
	Role     string `json:"role" validate:"omitempty,is-user-role"`
	Price    string `json:"price" validate:"omitempty,is-price"`
}

func TestValidator_CustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sample{Type: "Basic", Duration: "1 Year", Role: "admin", Price: "10.50"}))

	err := v.Validate(sample{Type: "Gold", Duration: "2 Weeks", Role: "root", Price: "1.234"})
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)

	// имена полей - из json-тегов
	assert.Equal(t, "Must be one of: Basic, Standard, Premium", vErr.Errors["type"])
	assert.Contains(t, vErr.Errors, "duration")
	assert.Contains(t, vErr.Errors, "role")
	assert.Contains(t, vErr.Errors, "price")
}

func TestValidator_Required(t *testing.T) {
	err := New().Validate(sample{})
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["type"])
	assert.Equal(t, "Validation failed: field 'type': This field is required", vErr.Error())
}

func TestToAppError(t *testing.T) {
	assert.NoError(t, ToAppError(nil))

	err := ToAppError(&ValidationError{Errors: map[string]string{"name": "This field is required"}})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	assert.Equal(t, apperrors.KindValidationFailure, apperrors.KindOf(err))
	assert.Equal(t, map[string]string{"name": "This field is required"}, appErr.Details)
}
