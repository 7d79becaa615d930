package validator

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"subscription_console/internal/models"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Правило не зарегистрировалось - это ошибка сборки, не пользователя
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// -----------------------------------------------------------------
	// ➡️ Правила, основанные на 'statuses.go'
	// -----------------------------------------------------------------

	// 'is-plan-type': Basic | Standard | Premium
	mustRegister("is-plan-type", validatePlanType)

	// 'is-plan-duration': "1 Month" | "3 Months" | "6 Months" | "1 Year"
	mustRegister("is-plan-duration", validatePlanDuration)

	// 'is-user-role': admin | user
	mustRegister("is-user-role", validateUserRole)

	// -----------------------------------------------------------------
	// ➡️ Правила для полей формы
	// -----------------------------------------------------------------

	// 'is-price': строка из формы -> неотрицательная сумма, не больше 2 знаков
	mustRegister("is-price", validatePrice)
}

// --- Функции валидации ---

func validatePlanType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}
	return models.PlanType(value).IsValid()
}

func validatePlanDuration(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.PlanDuration(value).IsValid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.UserRole(value).IsValid()
}

func validatePrice(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	price, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	if price.IsNegative() {
		return false
	}
	return price.Equal(price.Round(2))
}
