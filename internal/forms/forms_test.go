package forms

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subscription_console/internal/models"
	"subscription_console/internal/validator"
	"subscription_console/pkg/apperrors"
)

func validForm() PlanForm {
	return PlanForm{
		Type:        "Standard",
		Name:        "Team",
		Price:       "499.50",
		Duration:    "3 Months",
		Description: "Shared workspace",
	}
}

func validationDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "ожидалась AppError, получено %v", err)
	require.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	return details
}

func TestPlanForm_ToRequest(t *testing.T) {
	v := validator.New()

	req, err := validForm().ToRequest(v)
	require.NoError(t, err)
	assert.Equal(t, models.PlanTypeStandard, req.Type)
	assert.Equal(t, models.PlanDurationThreeMonths, req.Duration)
	assert.True(t, req.Price.Equal(decimal.RequireFromString("499.5")))
}

func TestPlanForm_Invalid(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name  string
		edit  func(f *PlanForm)
		field string
	}{
		{name: "пустое имя", edit: func(f *PlanForm) { f.Name = "   " }, field: "name"},
		{name: "имя только из разметки", edit: func(f *PlanForm) { f.Name = "<b></b>" }, field: "name"},
		{name: "неизвестный тип", edit: func(f *PlanForm) { f.Type = "Gold" }, field: "type"},
		{name: "неизвестный срок", edit: func(f *PlanForm) { f.Duration = "2 Weeks" }, field: "duration"},
		{name: "цена не число", edit: func(f *PlanForm) { f.Price = "abc" }, field: "price"},
		{name: "отрицательная цена", edit: func(f *PlanForm) { f.Price = "-1" }, field: "price"},
		{name: "три знака после запятой", edit: func(f *PlanForm) { f.Price = "9.999" }, field: "price"},
		{name: "пустое описание", edit: func(f *PlanForm) { f.Description = "" }, field: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.edit(&f)
			_, err := f.ToRequest(v)
			assert.Contains(t, validationDetails(t, err), tt.field)
		})
	}
}

func TestPlanForm_SanitizesText(t *testing.T) {
	f := validForm()
	f.Name = "  <b>Team</b> & Co  "
	f.Description = `<a href="javascript:alert(1)">Shared</a> workspace`

	req, err := f.ToRequest(validator.New())
	require.NoError(t, err)
	assert.Equal(t, "Team & Co", req.Name)
	assert.Equal(t, "Shared workspace", req.Description)
}

func TestPlanForm_SetResetAndPrefill(t *testing.T) {
	var f PlanForm
	assert.True(t, f.IsEmpty())
	assert.True(t, f.Set("name", "Team"))
	assert.False(t, f.Set("color", "red"))
	assert.False(t, f.IsEmpty())

	f.Reset()
	assert.True(t, f.IsEmpty())

	prefilled := PlanFormFrom(models.Plan{
		ID:       2,
		Type:     models.PlanTypePremium,
		Name:     "Enterprise",
		Price:    decimal.NewFromInt(1999),
		Duration: models.PlanDurationYear,
	})
	assert.Equal(t, "1999.00", prefilled.Price)
	assert.Equal(t, "Premium", prefilled.Type)
}

func TestRegisterForm_PasswordMismatch(t *testing.T) {
	f := RegisterForm{
		Email:           "new@example.com",
		Username:        "newbie",
		Password:        "password123",
		ConfirmPassword: "password321",
	}
	_, err := f.ToRequest(validator.New())
	details := validationDetails(t, err)
	assert.Equal(t, "Passwords do not match", details["confirm_password"])
}

func TestRegisterForm_OK(t *testing.T) {
	f := RegisterForm{
		Email:           " new@example.com ",
		Username:        "<i>newbie</i>",
		Password:        "password123",
		ConfirmPassword: "password123",
	}
	req, err := f.ToRequest(validator.New())
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", req.Email)
	assert.Equal(t, "newbie", req.Username)
}

func TestLoginForm_Validate(t *testing.T) {
	v := validator.New()

	_, err := LoginForm{Email: "not-an-email", Password: "x"}.Validate(v)
	assert.Contains(t, validationDetails(t, err), "email")

	cleaned, err := LoginForm{Email: " admin@example.com ", Password: "x"}.Validate(v)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", cleaned.Email)
}
