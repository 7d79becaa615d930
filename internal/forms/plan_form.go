package forms

import (
	"strings"

	"github.com/shopspring/decimal"

	"subscription_console/internal/dto"
	"subscription_console/internal/models"
	"subscription_console/internal/validator"
)

// PlanForm - состояние формы тарифа. Поля хранятся как введены (строками).
type PlanForm struct {
	Type        string `json:"type" validate:"required,is-plan-type"`
	Name        string `json:"name" validate:"required,max=100"`
	Price       string `json:"price" validate:"required,is-price"`
	Duration    string `json:"duration" validate:"required,is-plan-duration"`
	Description string `json:"description" validate:"required,max=1000"`
}

// Set меняет одно поле по его json-имени. Неизвестное поле - false.
func (f *PlanForm) Set(field, value string) bool {
	switch field {
	case "type":
		f.Type = value
	case "name":
		f.Name = value
	case "price":
		f.Price = value
	case "duration":
		f.Duration = value
	case "description":
		f.Description = value
	default:
		return false
	}
	return true
}

// Reset - все поля пустые
func (f *PlanForm) Reset() {
	*f = PlanForm{}
}

// IsEmpty - true, если ни одно поле не заполнено
func (f PlanForm) IsEmpty() bool {
	return f == PlanForm{}
}

// PlanFormFrom заполняет форму из существующего тарифа (редактирование)
func PlanFormFrom(p models.Plan) PlanForm {
	return PlanForm{
		Type:        string(p.Type),
		Name:        p.Name,
		Price:       p.Price.StringFixed(2),
		Duration:    string(p.Duration),
		Description: p.Description,
	}
}

// ToRequest проверяет форму и собирает тело запроса.
// Ошибка всегда *apperrors.AppError с кодом VALIDATION_FAILED.
func (f PlanForm) ToRequest(v *validator.Validator) (dto.PlanRequest, error) {
	cleaned := PlanForm{
		Type:        strings.TrimSpace(f.Type),
		Name:        Clean(f.Name),
		Price:       strings.TrimSpace(f.Price),
		Duration:    strings.TrimSpace(f.Duration),
		Description: Clean(f.Description),
	}
	if err := v.Validate(cleaned); err != nil {
		return dto.PlanRequest{}, validator.ToAppError(err)
	}

	price, err := decimal.NewFromString(cleaned.Price)
	if err != nil {
		return dto.PlanRequest{}, validator.ToAppError(&validator.ValidationError{
			Errors: map[string]string{"price": "Must be a number"},
		})
	}

	return dto.PlanRequest{
		Type:        models.PlanType(cleaned.Type),
		Name:        cleaned.Name,
		Price:       price,
		Duration:    models.PlanDuration(cleaned.Duration),
		Description: cleaned.Description,
	}, nil
}
